// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

// StorageEncoder defines the encoder of a structured storage value.
// Encoding to nil means the value is at its zero state and the key is
// erased on commit.
type StorageEncoder interface {
	Encode() ([]byte, error)
}

// StorageDecoder defines the decoder of a structured storage value.
// It must accept empty data as the zero state.
type StorageDecoder interface {
	Decode([]byte) error
}
