// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token is the reward-issuance collaborator of the extended
// variant: a state-backed token whose units represent claimed points.
// Minting is authorized by a single program-level authority derived
// from stakepoint.MintAuthorityLabel, never by the user.
package token

import (
	"errors"
	"math"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakepoint/stakepoint/stakepoint"
	"github.com/stakepoint/stakepoint/state"
)

var (
	ErrInvalidMintAuthority = errors.New("invalid mint authority")
	ErrInvalidTokenAccount  = errors.New("invalid token account")
	ErrMetadataExists       = errors.New("metadata already registered")
	ErrSupplyOverflow       = errors.New("supply overflow")
)

var (
	supplyKey   = stakepoint.Keccak256([]byte("reward-token-supply"))
	metadataKey = stakepoint.Keccak256([]byte("reward-token-metadata"))
)

func holdingKey(addr stakepoint.Address) stakepoint.Bytes32 {
	return stakepoint.BytesToBytes32(append([]byte("h"), addr.Bytes()...))
}

// Metadata describes the reward token. Registered once, independent of
// the per-user ledger.
type Metadata struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
	URI    string `yaml:"uri"`
}

// Token is the reward token mint.
type Token struct {
	state     *state.State
	authority stakepoint.Address
}

// New creates the token over st. The mint authority address is fixed by
// derivation and independent of any owner.
func New(st *state.State) *Token {
	authority, _ := stakepoint.DeriveAccount(stakepoint.Address{}, stakepoint.MintAuthorityLabel)
	return &Token{st, authority}
}

// MintAuthority returns the program-level minting authority address.
func (t *Token) MintAuthority() stakepoint.Address {
	return t.authority
}

// RegisterMetadata registers the token's descriptive metadata. It is a
// one-time setup action; a second registration fails.
func (t *Token) RegisterMetadata(meta Metadata) error {
	existing, err := t.Metadata()
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrMetadataExists
	}
	raw, err := rlp.EncodeToBytes([]string{meta.Name, meta.Symbol, meta.URI})
	if err != nil {
		return err
	}
	t.state.SetRawStorage(metadataKey, raw)
	return nil
}

// Metadata returns the registered metadata, or nil if none registered.
func (t *Token) Metadata() (*Metadata, error) {
	raw, err := t.state.GetRawStorage(metadataKey)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var fields []string
	if err := rlp.DecodeBytes(raw, &fields); err != nil {
		return nil, err
	}
	if len(fields) != 3 {
		return nil, errors.New("malformed token metadata")
	}
	return &Metadata{fields[0], fields[1], fields[2]}, nil
}

// Mint mints amount units into the holding account of owner. authority
// must be the derived mint authority, and holding must be the canonical
// reward-holding account of owner.
func (t *Token) Mint(authority, owner, holding stakepoint.Address, amount uint64) error {
	if authority != t.authority {
		return ErrInvalidMintAuthority
	}
	if expected, _ := stakepoint.DeriveAccount(owner, stakepoint.RewardHoldingLabel); expected != holding {
		return ErrInvalidTokenAccount
	}

	bal, err := t.balanceAt(holdingKey(holding))
	if err != nil {
		return err
	}
	supply, err := t.balanceAt(supplyKey)
	if err != nil {
		return err
	}
	if bal > math.MaxUint64-amount || supply > math.MaxUint64-amount {
		return ErrSupplyOverflow
	}
	if err := t.setBalanceAt(holdingKey(holding), bal+amount); err != nil {
		return err
	}
	return t.setBalanceAt(supplyKey, supply+amount)
}

// BalanceOf returns the reward balance held by owner's canonical
// holding account.
func (t *Token) BalanceOf(owner stakepoint.Address) (uint64, error) {
	holding, _ := stakepoint.DeriveAccount(owner, stakepoint.RewardHoldingLabel)
	return t.balanceAt(holdingKey(holding))
}

// TotalSupply returns the total minted supply.
func (t *Token) TotalSupply() (uint64, error) {
	return t.balanceAt(supplyKey)
}

func (t *Token) balanceAt(key stakepoint.Bytes32) (uint64, error) {
	raw, err := t.state.GetRawStorage(key)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	var v uint64
	if err := rlp.DecodeBytes(raw, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func (t *Token) setBalanceAt(key stakepoint.Bytes32, v uint64) error {
	if v == 0 {
		t.state.SetRawStorage(key, nil)
		return nil
	}
	raw, err := rlp.EncodeToBytes(v)
	if err != nil {
		return err
	}
	t.state.SetRawStorage(key, raw)
	return nil
}
