// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakepoint

// Constants of the points accrual formula. A holder of one whole asset
// unit earns PointsRate points (at fixed-point scale PointsRate) per day
// staked. All three are part of the audited formula and must not change
// for a live ledger.
const (
	// PointsRate points per whole asset unit per day, also the
	// fixed-point scale of StakeAccount.TotalPoints.
	PointsRate uint64 = 1_000_000

	// UnitsPerAsset smallest units per whole asset unit.
	UnitsPerAsset uint64 = 1_000_000_000

	// SecondsPerDay length of the accrual day.
	SecondsPerDay uint64 = 86_400
)

// Derivation labels for deterministic per-owner accounts.
var (
	// StakeAccountLabel scopes the derivation of per-owner stake accounts.
	StakeAccountLabel = []byte("stake-account")

	// MintAuthorityLabel scopes the derivation of the program-level
	// reward mint authority. The owner part of the derivation is the
	// zero address, there is exactly one such authority.
	MintAuthorityLabel = []byte("mint-authority")

	// RewardHoldingLabel scopes the derivation of per-owner reward
	// token holding accounts.
	RewardHoldingLabel = []byte("reward-holding")
)
