// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/stakepoint/stakepoint/eventdb"
	"github.com/stakepoint/stakepoint/ledger"
	"github.com/stakepoint/stakepoint/stakepoint"
)

// CreateRequest is the body of POST /stakes.
type CreateRequest struct {
	Owner     stakepoint.Address `json:"owner"`
	Timestamp int64              `json:"timestamp"`
	Signature hexutil.Bytes      `json:"signature"`
}

// OpRequest is the body of the mutating per-account endpoints.
type OpRequest struct {
	Amount    uint64        `json:"amount"`
	Timestamp int64         `json:"timestamp"`
	Signature hexutil.Bytes `json:"signature"`
}

// Account is the projected view of a stake account.
type Account struct {
	Owner          stakepoint.Address `json:"owner"`
	Account        stakepoint.Address `json:"account"`
	StakedAmount   uint64             `json:"stakedAmount"`
	TotalPoints    uint64             `json:"totalPoints"`
	Claimable      uint64             `json:"claimable"`
	LastUpdateTime int64              `json:"lastUpdateTime"`
}

func convertProjection(owner stakepoint.Address, p *ledger.Projection) *Account {
	return &Account{
		Owner:          owner,
		Account:        p.Account,
		StakedAmount:   p.StakedAmount,
		TotalPoints:    p.TotalPoints,
		Claimable:      p.Claimable,
		LastUpdateTime: p.LastUpdateTime,
	}
}

// ClaimResult reports the outcome of a claim.
type ClaimResult struct {
	Claimed uint64 `json:"claimed"`
}

// Event is one history entry.
type Event struct {
	Seq    int64              `json:"seq"`
	Time   int64              `json:"time"`
	Kind   string             `json:"kind"`
	Owner  stakepoint.Address `json:"owner"`
	Amount uint64             `json:"amount"`
	Points uint64             `json:"points"`
}

func convertEvent(ev *eventdb.Event) *Event {
	return &Event{
		Seq:    ev.Seq,
		Time:   ev.Time,
		Kind:   ev.Kind,
		Owner:  ev.Owner,
		Amount: ev.Amount,
		Points: ev.Points,
	}
}
