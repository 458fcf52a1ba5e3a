// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stakepoint/stakepoint/stakepoint"
)

func TestPointsEarned(t *testing.T) {
	tests := []struct {
		name   string
		staked uint64
		sec    uint64
		want   uint64
	}{
		{"one asset for one day", stakepoint.UnitsPerAsset, stakepoint.SecondsPerDay, stakepoint.PointsRate},
		{"one asset for half a day", stakepoint.UnitsPerAsset, stakepoint.SecondsPerDay / 2, stakepoint.PointsRate / 2},
		{"five assets for one day", 5 * stakepoint.UnitsPerAsset, stakepoint.SecondsPerDay, 5 * stakepoint.PointsRate},
		{"zero stake", 0, stakepoint.SecondsPerDay, 0},
		{"zero elapsed", stakepoint.UnitsPerAsset, 0, 0},
		{"sub-point dust floors to zero", 1, 1, 0},
		{"half asset for one day", stakepoint.UnitsPerAsset / 2, stakepoint.SecondsPerDay, stakepoint.PointsRate / 2},
	}
	for _, tt := range tests {
		got, err := PointsEarned(tt.staked, tt.sec)
		assert.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestPointsEarnedLinearity(t *testing.T) {
	// doubling either factor doubles the accrual when division is exact
	base, err := PointsEarned(3*stakepoint.UnitsPerAsset, stakepoint.SecondsPerDay)
	assert.NoError(t, err)

	byStake, err := PointsEarned(6*stakepoint.UnitsPerAsset, stakepoint.SecondsPerDay)
	assert.NoError(t, err)
	assert.Equal(t, 2*base, byStake)

	byTime, err := PointsEarned(3*stakepoint.UnitsPerAsset, 2*stakepoint.SecondsPerDay)
	assert.NoError(t, err)
	assert.Equal(t, 2*base, byTime)
}

func TestPointsEarnedWideIntermediate(t *testing.T) {
	// staked*elapsed overflows uint64 but the quotient fits
	got, err := PointsEarned(math.MaxUint64, 1000*stakepoint.SecondsPerDay)
	assert.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got)

	// the quotient itself no longer fits
	_, err = PointsEarned(math.MaxUint64, math.MaxUint64)
	assert.Equal(t, ErrOverflow, err)
}

func TestRollForward(t *testing.T) {
	owner := stakepoint.BytesToAddress([]byte("owner"))

	t.Run("accrues and advances", func(t *testing.T) {
		acc := &StakeAccount{Owner: owner, StakedAmount: stakepoint.UnitsPerAsset, LastUpdateTime: 100}
		assert.NoError(t, rollForward(acc, 100+int64(stakepoint.SecondsPerDay)))
		assert.Equal(t, stakepoint.PointsRate, acc.TotalPoints)
		assert.Equal(t, 100+int64(stakepoint.SecondsPerDay), acc.LastUpdateTime)
	})

	t.Run("advances watermark with zero stake", func(t *testing.T) {
		acc := &StakeAccount{Owner: owner, LastUpdateTime: 100}
		assert.NoError(t, rollForward(acc, 500))
		assert.Equal(t, uint64(0), acc.TotalPoints)
		assert.Equal(t, int64(500), acc.LastUpdateTime)
	})

	t.Run("zero gap is a no-op on points", func(t *testing.T) {
		acc := &StakeAccount{Owner: owner, StakedAmount: stakepoint.UnitsPerAsset, TotalPoints: 7, LastUpdateTime: 100}
		assert.NoError(t, rollForward(acc, 100))
		assert.Equal(t, uint64(7), acc.TotalPoints)
		assert.Equal(t, int64(100), acc.LastUpdateTime)
	})

	t.Run("rejects clock regression", func(t *testing.T) {
		acc := &StakeAccount{Owner: owner, LastUpdateTime: 100}
		assert.Equal(t, ErrInvalidTimestamp, rollForward(acc, 99))
		assert.Equal(t, int64(100), acc.LastUpdateTime)
	})

	t.Run("rejects points overflow", func(t *testing.T) {
		acc := &StakeAccount{Owner: owner, StakedAmount: stakepoint.UnitsPerAsset, TotalPoints: math.MaxUint64, LastUpdateTime: 100}
		assert.Equal(t, ErrOverflow, rollForward(acc, 100+int64(stakepoint.SecondsPerDay)))
		// nothing applied on failure
		assert.Equal(t, uint64(math.MaxUint64), acc.TotalPoints)
		assert.Equal(t, int64(100), acc.LastUpdateTime)
	})
}
