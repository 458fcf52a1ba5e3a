// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"github.com/stakepoint/stakepoint/stakepoint"
)

// Issuer adapts the token mint to the ledger's reward issuance
// interface: claimed units are minted into the owner's canonical
// reward-holding account, authorized by the program-level authority.
type Issuer struct {
	tok *Token
}

// NewIssuer creates a minting issuer over tok.
func NewIssuer(tok *Token) *Issuer {
	return &Issuer{tok}
}

// Issue mints units to owner's reward-holding account.
func (i *Issuer) Issue(owner stakepoint.Address, units uint64) error {
	holding, _ := stakepoint.DeriveAccount(owner, stakepoint.RewardHoldingLabel)
	return i.tok.Mint(i.tok.MintAuthority(), owner, holding, units)
}
