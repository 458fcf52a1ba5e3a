// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakepoint/stakepoint/state"
	"github.com/stakepoint/stakepoint/stakepoint"
)

// StakeAccount is the per-owner ledger record. One exists per owner,
// stored at the address derived from (owner, StakeAccountLabel).
type StakeAccount struct {
	// Owner is the sole authorized controller, immutable after creation.
	Owner stakepoint.Address

	// StakedAmount is the principal held, in smallest asset units.
	StakedAmount uint64

	// TotalPoints is accrued unclaimed points at fixed-point scale
	// stakepoint.PointsRate.
	TotalPoints uint64

	// LastUpdateTime is the watermark: all accrual before this instant
	// has been folded into TotalPoints. Monotonically non-decreasing.
	LastUpdateTime int64

	// Nonce reproduces the account's derived address from Owner, and is
	// presented as authorization proof for outbound transfers.
	Nonce uint8
}

// IsEmpty returns whether the record is uncreated.
func (a *StakeAccount) IsEmpty() bool {
	return a.Owner.IsZero()
}

var (
	_ state.StorageEncoder = (*StakeAccount)(nil)
	_ state.StorageDecoder = (*StakeAccount)(nil)
)

// rlp has no signed integer support, so the watermark crosses the wire
// as uint64.
type stakeAccountWire struct {
	Owner          stakepoint.Address
	StakedAmount   uint64
	TotalPoints    uint64
	LastUpdateTime uint64
	Nonce          uint8
}

// Encode implements state.StorageEncoder.
func (a *StakeAccount) Encode() ([]byte, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(&stakeAccountWire{
		a.Owner,
		a.StakedAmount,
		a.TotalPoints,
		uint64(a.LastUpdateTime),
		a.Nonce,
	})
}

// Decode implements state.StorageDecoder.
func (a *StakeAccount) Decode(data []byte) error {
	if len(data) == 0 {
		*a = StakeAccount{}
		return nil
	}
	var wire stakeAccountWire
	if err := rlp.DecodeBytes(data, &wire); err != nil {
		return err
	}
	*a = StakeAccount{
		wire.Owner,
		wire.StakedAmount,
		wire.TotalPoints,
		int64(wire.LastUpdateTime),
		wire.Nonce,
	}
	return nil
}

func accountKey(addr stakepoint.Address) stakepoint.Bytes32 {
	return stakepoint.BytesToBytes32(append([]byte("a"), addr.Bytes()...))
}
