// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package stakepoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	addr := BytesToAddress([]byte("acc1"))

	parsed, err := ParseAddress(addr.String())
	assert.NoError(t, err)
	assert.Equal(t, addr, *parsed)

	_, err = ParseAddress("0x1234")
	assert.Error(t, err)

	_, err = ParseAddress("zz" + addr.String()[2:])
	assert.Error(t, err)
}

func TestAddressText(t *testing.T) {
	addr := BytesToAddress([]byte("acc1"))

	text, err := addr.MarshalText()
	assert.NoError(t, err)

	var decoded Address
	assert.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, addr, decoded)
}
