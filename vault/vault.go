// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vault is the fund-transfer collaborator: it moves the staked
// asset between addressable holders against state balances. Inbound
// deposits are authorized by the proven caller identity upstream;
// outbound transfers from a derived account require the account's
// derivation proof.
package vault

import (
	"errors"
	"math"

	"github.com/stakepoint/stakepoint/stakepoint"
	"github.com/stakepoint/stakepoint/state"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrProofMismatch     = errors.New("derivation proof mismatch")
	ErrBalanceOverflow   = errors.New("balance overflow")
)

// Proof authorizes a transfer out of a derived account: the holder
// address must re-derive from (Owner, Label, Nonce).
type Proof struct {
	Owner stakepoint.Address
	Label []byte
	Nonce uint8
}

// Vault moves the staked asset between holders.
type Vault struct {
	state *state.State
}

// New creates a vault over st.
func New(st *state.State) *Vault {
	return &Vault{st}
}

// Balance returns the held balance of addr.
func (v *Vault) Balance(addr stakepoint.Address) (uint64, error) {
	return v.state.GetBalance(addr)
}

// Deposit moves amount from the caller's balance into to.
func (v *Vault) Deposit(from, to stakepoint.Address, amount uint64) error {
	return v.move(from, to, amount)
}

// Withdraw moves amount out of a derived holding account. The holding
// account authorizes the transfer by presenting its derivation proof.
func (v *Vault) Withdraw(from, to stakepoint.Address, amount uint64, proof Proof) error {
	if !stakepoint.VerifyDerived(from, proof.Owner, proof.Label, proof.Nonce) {
		return ErrProofMismatch
	}
	return v.move(from, to, amount)
}

func (v *Vault) move(from, to stakepoint.Address, amount uint64) error {
	fromBal, err := v.state.GetBalance(from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return ErrInsufficientFunds
	}
	toBal, err := v.state.GetBalance(to)
	if err != nil {
		return err
	}
	if toBal > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	v.state.SetBalance(from, fromBal-amount)
	v.state.SetBalance(to, toBal+amount)
	return nil
}
