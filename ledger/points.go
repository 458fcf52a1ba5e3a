// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/stakepoint/stakepoint/stakepoint"
)

// PointsEarned returns the points accrued by stakedAmount held for
// elapsed seconds:
//
//	floor(stakedAmount * elapsed * PointsRate / (UnitsPerAsset * SecondsPerDay))
//
// Exact integer arithmetic over a wide intermediate. The only rounding
// is the final floor division; any overflow of the intermediate or of
// the narrowing back to uint64 fails with ErrOverflow.
func PointsEarned(stakedAmount, elapsed uint64) (uint64, error) {
	x := new(uint256.Int).SetUint64(stakedAmount)
	if _, overflow := x.MulOverflow(x, new(uint256.Int).SetUint64(elapsed)); overflow {
		return 0, ErrOverflow
	}
	if _, overflow := x.MulOverflow(x, new(uint256.Int).SetUint64(stakepoint.PointsRate)); overflow {
		return 0, ErrOverflow
	}
	x.Div(x, new(uint256.Int).SetUint64(stakepoint.UnitsPerAsset))
	x.Div(x, new(uint256.Int).SetUint64(stakepoint.SecondsPerDay))
	if !x.IsUint64() {
		return 0, ErrOverflow
	}
	return x.Uint64(), nil
}

// rollForward folds accrual up to now into the account and advances the
// watermark. Every state-advancing operation passes through here before
// applying its own effect, so accrual is never skipped.
//
// The watermark advances even when nothing accrued (zero stake or zero
// elapsed), so a gap with zero stake can never be double counted later.
func rollForward(acc *StakeAccount, now int64) error {
	if now < acc.LastUpdateTime {
		// clock moved backward
		return ErrInvalidTimestamp
	}
	elapsed := uint64(now - acc.LastUpdateTime)
	if elapsed > 0 && acc.StakedAmount > 0 {
		earned, err := PointsEarned(acc.StakedAmount, elapsed)
		if err != nil {
			return err
		}
		total, ok := checkedAdd(acc.TotalPoints, earned)
		if !ok {
			return ErrOverflow
		}
		acc.TotalPoints = total
	}
	acc.LastUpdateTime = now
	return nil
}

func checkedAdd(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

func checkedSub(a, b uint64) (uint64, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}
