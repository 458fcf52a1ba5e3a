// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakepoint/stakepoint/stakepoint"
	"github.com/stakepoint/stakepoint/state"
)

// CounterIssuer is the plain reward variant: claimed units are recorded
// as a cumulative per-owner counter in state, nothing is minted.
type CounterIssuer struct {
	state *state.State
}

// NewCounterIssuer creates a counter-recording issuer over st.
func NewCounterIssuer(st *state.State) *CounterIssuer {
	return &CounterIssuer{st}
}

func claimedKey(owner stakepoint.Address) stakepoint.Bytes32 {
	return stakepoint.Keccak256([]byte("claimed-counter"), owner.Bytes())
}

type claimedCounter uint64

var (
	_ state.StorageEncoder = (*claimedCounter)(nil)
	_ state.StorageDecoder = (*claimedCounter)(nil)
)

func (c *claimedCounter) Encode() ([]byte, error) {
	if *c == 0 {
		return nil, nil
	}
	return rlp.EncodeToBytes(uint64(*c))
}

func (c *claimedCounter) Decode(data []byte) error {
	if len(data) == 0 {
		*c = 0
		return nil
	}
	var v uint64
	if err := rlp.DecodeBytes(data, &v); err != nil {
		return err
	}
	*c = claimedCounter(v)
	return nil
}

// Issue implements RewardIssuer.
func (c *CounterIssuer) Issue(owner stakepoint.Address, units uint64) error {
	var counter claimedCounter
	if err := c.state.DecodeStorage(claimedKey(owner), &counter); err != nil {
		return err
	}
	total, ok := checkedAdd(uint64(counter), units)
	if !ok {
		return ErrOverflow
	}
	counter = claimedCounter(total)
	return c.state.EncodeStorage(claimedKey(owner), &counter)
}

// Claimed returns the cumulative units issued to owner.
func (c *CounterIssuer) Claimed(owner stakepoint.Address) (uint64, error) {
	var counter claimedCounter
	if err := c.state.DecodeStorage(claimedKey(owner), &counter); err != nil {
		return 0, err
	}
	return uint64(counter), nil
}
