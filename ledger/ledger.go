// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the staking points ledger: per-owner stake
// accounts, the time-weighted points accrual engine, and the operation
// dispatcher. The host keeps operations on one account serialized; each
// operation commits all of its effects or none of them.
package ledger

import (
	"log/slog"
	"sync"

	"github.com/stakepoint/stakepoint/metrics"
	"github.com/stakepoint/stakepoint/stakepoint"
	"github.com/stakepoint/stakepoint/state"
	"github.com/stakepoint/stakepoint/vault"
)

// logger resolves lazily so the handler installed at startup is used.
func logger() *slog.Logger {
	return slog.Default().With("pkg", "ledger")
}

// RewardIssuer issues claimed reward units to an owner. Two variants
// exist: the state-recorded counter (NewCounterIssuer) and the external
// token mint (token.Issuer).
type RewardIssuer interface {
	Issue(owner stakepoint.Address, units uint64) error
}

// Ledger dispatches stake operations against the state. Operations are
// serialized by mu: the journal underneath is single-writer, and the
// checkpoint-commit cycle of one operation must never interleave with
// another's.
type Ledger struct {
	mu     sync.Mutex
	state  *state.State
	vault  *vault.Vault
	reward RewardIssuer
}

// New creates a ledger over the given state, moving funds through vlt
// and issuing claimed rewards through reward.
func New(st *state.State, vlt *vault.Vault, reward RewardIssuer) *Ledger {
	return &Ledger{state: st, vault: vlt, reward: reward}
}

// Projection is the read-only snapshot reported by GetPoints.
type Projection struct {
	Account        stakepoint.Address
	StakedAmount   uint64
	TotalPoints    uint64
	Claimable      uint64
	LastUpdateTime int64
}

// run wraps a mutating operation in checkpoint-apply-commit under the
// operation lock. Any error reverts every staged change, so no partial
// mutation is ever visible or persisted.
func (l *Ledger) run(kind string, fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := l.state.NewCheckpoint()
	if err := fn(); err != nil {
		l.state.RevertTo(cp)
		metrics.CountOp(kind, err)
		return err
	}
	if err := l.state.Commit(); err != nil {
		l.state.RevertTo(cp)
		metrics.CountOp(kind, err)
		return err
	}
	metrics.CountOp(kind, nil)
	return nil
}

func (l *Ledger) getAccount(addr stakepoint.Address) (*StakeAccount, error) {
	var acc StakeAccount
	if err := l.state.DecodeStorage(accountKey(addr), &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (l *Ledger) setAccount(addr stakepoint.Address, acc *StakeAccount) error {
	return l.state.EncodeStorage(accountKey(addr), acc)
}

// loadOwned loads the stake account of owner and authorizes caller
// against it.
func (l *Ledger) loadOwned(caller, owner stakepoint.Address) (stakepoint.Address, *StakeAccount, error) {
	addr, _ := stakepoint.DeriveAccount(owner, stakepoint.StakeAccountLabel)
	acc, err := l.getAccount(addr)
	if err != nil {
		return stakepoint.Address{}, nil, err
	}
	if acc.IsEmpty() {
		return stakepoint.Address{}, nil, ErrAccountNotFound
	}
	if acc.Owner != caller {
		return stakepoint.Address{}, nil, ErrUnauthorized
	}
	return addr, acc, nil
}

// Create allocates the stake account of owner with zero balances and
// the watermark set to now. It fails with ErrAccountExists when the
// derived slot is already occupied.
func (l *Ledger) Create(owner stakepoint.Address, now int64) error {
	return l.run("create", func() error {
		addr, nonce := stakepoint.DeriveAccount(owner, stakepoint.StakeAccountLabel)
		existing, err := l.getAccount(addr)
		if err != nil {
			return err
		}
		if !existing.IsEmpty() {
			return ErrAccountExists
		}
		acc := &StakeAccount{
			Owner:          owner,
			LastUpdateTime: now,
			Nonce:          nonce,
		}
		if err := l.setAccount(addr, acc); err != nil {
			return err
		}
		logger().Info("stake account created", "owner", owner, "account", addr)
		return nil
	})
}

// Stake rolls accrual forward, moves amount of principal from caller
// into the stake account and credits StakedAmount.
func (l *Ledger) Stake(caller, owner stakepoint.Address, amount uint64, now int64) error {
	return l.run("stake", func() error {
		if amount == 0 {
			return ErrInvalidAmount
		}
		addr, acc, err := l.loadOwned(caller, owner)
		if err != nil {
			return err
		}
		if err := rollForward(acc, now); err != nil {
			return err
		}
		if err := l.vault.Deposit(caller, addr, amount); err != nil {
			return err
		}
		staked, ok := checkedAdd(acc.StakedAmount, amount)
		if !ok {
			return ErrOverflow
		}
		acc.StakedAmount = staked
		return l.setAccount(addr, acc)
	})
}

// Unstake rolls accrual forward, moves amount of principal back to
// caller and debits StakedAmount. The stake account authorizes the
// outbound transfer with its derivation proof.
func (l *Ledger) Unstake(caller, owner stakepoint.Address, amount uint64, now int64) error {
	return l.run("unstake", func() error {
		if amount == 0 {
			return ErrInvalidAmount
		}
		addr, acc, err := l.loadOwned(caller, owner)
		if err != nil {
			return err
		}
		if amount > acc.StakedAmount {
			return ErrInsufficientStake
		}
		if err := rollForward(acc, now); err != nil {
			return err
		}
		proof := vault.Proof{
			Owner: acc.Owner,
			Label: stakepoint.StakeAccountLabel,
			Nonce: acc.Nonce,
		}
		if err := l.vault.Withdraw(addr, caller, amount, proof); err != nil {
			return err
		}
		staked, ok := checkedSub(acc.StakedAmount, amount)
		if !ok {
			// unreachable given the precondition above
			return ErrUnderflow
		}
		acc.StakedAmount = staked
		return l.setAccount(addr, acc)
	})
}

// ClaimPoints rolls accrual forward, converts whole points into reward
// units through the issuer and resets TotalPoints. Fractional points
// below one whole point are forfeited. A failed issuance leaves
// TotalPoints untouched.
func (l *Ledger) ClaimPoints(caller, owner stakepoint.Address, now int64) (uint64, error) {
	var claimed uint64
	err := l.run("claim", func() error {
		addr, acc, err := l.loadOwned(caller, owner)
		if err != nil {
			return err
		}
		if err := rollForward(acc, now); err != nil {
			return err
		}
		claimable := acc.TotalPoints / stakepoint.PointsRate
		if err := l.reward.Issue(caller, claimable); err != nil {
			return err
		}
		acc.TotalPoints = 0
		if err := l.setAccount(addr, acc); err != nil {
			return err
		}
		logger().Info("points claimed", "owner", owner, "units", claimable)
		claimed = claimable
		return nil
	})
	if err != nil {
		return 0, err
	}
	return claimed, nil
}

// GetPoints reports the projected current points of the account without
// mutating anything; the watermark and TotalPoints stay untouched. It
// takes the operation lock so the read never observes a half-staged
// mutation.
func (l *Ledger) GetPoints(caller, owner stakepoint.Address, now int64) (*Projection, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	addr, acc, err := l.loadOwned(caller, owner)
	if err != nil {
		metrics.CountOp("get_points", err)
		return nil, err
	}
	if now < acc.LastUpdateTime {
		metrics.CountOp("get_points", ErrInvalidTimestamp)
		return nil, ErrInvalidTimestamp
	}
	earned, err := PointsEarned(acc.StakedAmount, uint64(now-acc.LastUpdateTime))
	if err != nil {
		metrics.CountOp("get_points", err)
		return nil, err
	}
	projected, ok := checkedAdd(acc.TotalPoints, earned)
	if !ok {
		metrics.CountOp("get_points", ErrOverflow)
		return nil, ErrOverflow
	}
	metrics.CountOp("get_points", nil)
	return &Projection{
		Account:        addr,
		StakedAmount:   acc.StakedAmount,
		TotalPoints:    projected,
		Claimable:      projected / stakepoint.PointsRate,
		LastUpdateTime: acc.LastUpdateTime,
	}, nil
}
