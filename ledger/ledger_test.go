// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stakepoint/stakepoint/lvldb"
	"github.com/stakepoint/stakepoint/stakepoint"
	"github.com/stakepoint/stakepoint/state"
	"github.com/stakepoint/stakepoint/vault"
)

func newTestLedger(t *testing.T) (*Ledger, *state.State, *CounterIssuer) {
	db, err := lvldb.NewMem()
	assert.NoError(t, err)
	st := state.New(db)
	issuer := NewCounterIssuer(st)
	return New(st, vault.New(st), issuer), st, issuer
}

func fund(t *testing.T, st *state.State, addr stakepoint.Address, amount uint64) {
	st.SetBalance(addr, amount)
	assert.NoError(t, st.Commit())
}

func TestStakeLifecycle(t *testing.T) {
	l, st, issuer := newTestLedger(t)
	alice := stakepoint.BytesToAddress([]byte("alice"))
	fund(t, st, alice, 10*stakepoint.UnitsPerAsset)

	t0 := int64(1_700_000_000)
	assert.NoError(t, l.Create(alice, t0))
	assert.NoError(t, l.Stake(alice, alice, stakepoint.UnitsPerAsset, t0))

	bal, err := st.GetBalance(alice)
	assert.NoError(t, err)
	assert.Equal(t, 9*stakepoint.UnitsPerAsset, bal)

	// one asset held for one day earns exactly one whole point
	t1 := t0 + int64(stakepoint.SecondsPerDay)
	proj, err := l.GetPoints(alice, alice, t1)
	assert.NoError(t, err)
	assert.Equal(t, stakepoint.UnitsPerAsset, proj.StakedAmount)
	assert.Equal(t, stakepoint.PointsRate, proj.TotalPoints)
	assert.Equal(t, uint64(1), proj.Claimable)
	assert.Equal(t, t0, proj.LastUpdateTime)

	// inspection is pure, repeating it changes nothing
	again, err := l.GetPoints(alice, alice, t1)
	assert.NoError(t, err)
	assert.Equal(t, proj, again)

	claimed, err := l.ClaimPoints(alice, alice, t1)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), claimed)

	total, err := issuer.Claimed(alice)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), total)

	proj, err = l.GetPoints(alice, alice, t1)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), proj.TotalPoints)
	assert.Equal(t, t1, proj.LastUpdateTime)

	assert.NoError(t, l.Unstake(alice, alice, stakepoint.UnitsPerAsset, t1))
	bal, err = st.GetBalance(alice)
	assert.NoError(t, err)
	assert.Equal(t, 10*stakepoint.UnitsPerAsset, bal)

	assert.Equal(t, ErrInsufficientStake, l.Unstake(alice, alice, 1, t1))
}

func TestClaimForfeitsFraction(t *testing.T) {
	l, st, issuer := newTestLedger(t)
	alice := stakepoint.BytesToAddress([]byte("alice"))
	fund(t, st, alice, stakepoint.UnitsPerAsset)

	t0 := int64(1_700_000_000)
	assert.NoError(t, l.Create(alice, t0))
	assert.NoError(t, l.Stake(alice, alice, stakepoint.UnitsPerAsset, t0))

	// 2.5 days accrues 2_500_000 raw points, worth 2 whole units
	t1 := t0 + int64(stakepoint.SecondsPerDay)*5/2
	claimed, err := l.ClaimPoints(alice, alice, t1)
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), claimed)

	total, err := issuer.Claimed(alice)
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), total)

	// the half point below one unit is forfeited, not carried over
	proj, err := l.GetPoints(alice, alice, t1)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), proj.TotalPoints)
}

func TestAccrualSurvivesStakeChanges(t *testing.T) {
	l, st, _ := newTestLedger(t)
	alice := stakepoint.BytesToAddress([]byte("alice"))
	fund(t, st, alice, 10*stakepoint.UnitsPerAsset)

	t0 := int64(1_700_000_000)
	assert.NoError(t, l.Create(alice, t0))
	assert.NoError(t, l.Stake(alice, alice, stakepoint.UnitsPerAsset, t0))

	// a later top-up rolls the first day's accrual forward before the
	// stake changes, so it stays priced at the old stake
	t1 := t0 + int64(stakepoint.SecondsPerDay)
	assert.NoError(t, l.Stake(alice, alice, stakepoint.UnitsPerAsset, t1))

	t2 := t1 + int64(stakepoint.SecondsPerDay)
	proj, err := l.GetPoints(alice, alice, t2)
	assert.NoError(t, err)
	assert.Equal(t, 3*stakepoint.PointsRate, proj.TotalPoints)

	// unstaking everything keeps the earned points claimable
	assert.NoError(t, l.Unstake(alice, alice, 2*stakepoint.UnitsPerAsset, t2))
	proj, err = l.GetPoints(alice, alice, t2)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), proj.StakedAmount)
	assert.Equal(t, 3*stakepoint.PointsRate, proj.TotalPoints)
}

func TestCreateErrors(t *testing.T) {
	l, _, _ := newTestLedger(t)
	alice := stakepoint.BytesToAddress([]byte("alice"))

	assert.NoError(t, l.Create(alice, 100))
	assert.Equal(t, ErrAccountExists, l.Create(alice, 200))
}

func TestOperationsRequireAccount(t *testing.T) {
	l, _, _ := newTestLedger(t)
	alice := stakepoint.BytesToAddress([]byte("alice"))

	assert.Equal(t, ErrAccountNotFound, l.Stake(alice, alice, 1, 100))
	assert.Equal(t, ErrAccountNotFound, l.Unstake(alice, alice, 1, 100))
	_, err := l.ClaimPoints(alice, alice, 100)
	assert.Equal(t, ErrAccountNotFound, err)
	_, err = l.GetPoints(alice, alice, 100)
	assert.Equal(t, ErrAccountNotFound, err)
}

func TestUnauthorizedCaller(t *testing.T) {
	l, st, _ := newTestLedger(t)
	alice := stakepoint.BytesToAddress([]byte("alice"))
	bob := stakepoint.BytesToAddress([]byte("bob"))
	fund(t, st, bob, stakepoint.UnitsPerAsset)

	assert.NoError(t, l.Create(alice, 100))

	assert.Equal(t, ErrUnauthorized, l.Stake(bob, alice, 1, 100))
	assert.Equal(t, ErrUnauthorized, l.Unstake(bob, alice, 1, 100))
	_, err := l.ClaimPoints(bob, alice, 100)
	assert.Equal(t, ErrUnauthorized, err)
	_, err = l.GetPoints(bob, alice, 100)
	assert.Equal(t, ErrUnauthorized, err)
}

func TestZeroAmountRejected(t *testing.T) {
	l, _, _ := newTestLedger(t)
	alice := stakepoint.BytesToAddress([]byte("alice"))
	assert.NoError(t, l.Create(alice, 100))

	assert.Equal(t, ErrInvalidAmount, l.Stake(alice, alice, 0, 100))
	assert.Equal(t, ErrInvalidAmount, l.Unstake(alice, alice, 0, 100))
}

func TestClockRegressionRejected(t *testing.T) {
	l, st, _ := newTestLedger(t)
	alice := stakepoint.BytesToAddress([]byte("alice"))
	fund(t, st, alice, stakepoint.UnitsPerAsset)

	assert.NoError(t, l.Create(alice, 100))
	assert.Equal(t, ErrInvalidTimestamp, l.Stake(alice, alice, 1, 99))
	_, err := l.ClaimPoints(alice, alice, 99)
	assert.Equal(t, ErrInvalidTimestamp, err)
	_, err = l.GetPoints(alice, alice, 99)
	assert.Equal(t, ErrInvalidTimestamp, err)
}

func TestFailedStakeLeavesNoTrace(t *testing.T) {
	l, st, _ := newTestLedger(t)
	alice := stakepoint.BytesToAddress([]byte("alice"))
	fund(t, st, alice, 5)

	t0 := int64(1_700_000_000)
	assert.NoError(t, l.Create(alice, t0))

	// deposit exceeds the funded balance, the whole operation reverts
	err := l.Stake(alice, alice, 100, t0+int64(stakepoint.SecondsPerDay))
	assert.Equal(t, vault.ErrInsufficientFunds, err)

	bal, err := st.GetBalance(alice)
	assert.NoError(t, err)
	assert.Equal(t, uint64(5), bal)

	// even the accrual roll-forward was undone
	proj, err := l.GetPoints(alice, alice, t0+int64(stakepoint.SecondsPerDay))
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), proj.StakedAmount)
	assert.Equal(t, t0, proj.LastUpdateTime)
}

func TestUnstakeChecksBalanceBeforeAccrual(t *testing.T) {
	l, st, _ := newTestLedger(t)
	alice := stakepoint.BytesToAddress([]byte("alice"))
	fund(t, st, alice, stakepoint.UnitsPerAsset)

	t0 := int64(1_700_000_000)
	assert.NoError(t, l.Create(alice, t0))
	assert.NoError(t, l.Stake(alice, alice, stakepoint.UnitsPerAsset, t0))

	// the stake check fires before any accrual is folded in, so the
	// watermark stays put on failure
	t1 := t0 + int64(stakepoint.SecondsPerDay)
	assert.Equal(t, ErrInsufficientStake, l.Unstake(alice, alice, 2*stakepoint.UnitsPerAsset, t1))

	proj, err := l.GetPoints(alice, alice, t1)
	assert.NoError(t, err)
	assert.Equal(t, t0, proj.LastUpdateTime)
	assert.Equal(t, stakepoint.PointsRate, proj.TotalPoints)
}

func TestStakeOverflowGuard(t *testing.T) {
	l, st, _ := newTestLedger(t)
	alice := stakepoint.BytesToAddress([]byte("alice"))
	fund(t, st, alice, math.MaxUint64)

	t0 := int64(1_700_000_000)
	assert.NoError(t, l.Create(alice, t0))
	assert.NoError(t, l.Stake(alice, alice, math.MaxUint64, t0))
	fund(t, st, alice, 10)

	// the held balance is already at the numeric ceiling, one more unit
	// must fail with a stable overflow kind and change nothing
	err := l.Stake(alice, alice, 1, t0+1)
	assert.Equal(t, vault.ErrBalanceOverflow, err)

	bal, err := st.GetBalance(alice)
	assert.NoError(t, err)
	assert.Equal(t, uint64(10), bal)

	proj, err := l.GetPoints(alice, alice, t0+1)
	assert.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), proj.StakedAmount)
	assert.Equal(t, t0, proj.LastUpdateTime)
}

func TestConcurrentOperations(t *testing.T) {
	l, st, _ := newTestLedger(t)

	owners := make([]stakepoint.Address, 8)
	for i := range owners {
		owners[i] = stakepoint.BytesToAddress([]byte{'o', byte(i + 1)})
		fund(t, st, owners[i], 10*stakepoint.UnitsPerAsset)
		assert.NoError(t, l.Create(owners[i], 100))
	}

	var wg sync.WaitGroup
	for _, owner := range owners {
		owner := owner
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := int64(1); i <= 10; i++ {
				assert.NoError(t, l.Stake(owner, owner, stakepoint.UnitsPerAsset, 100+i))
			}
			assert.NoError(t, l.Unstake(owner, owner, 4*stakepoint.UnitsPerAsset, 200))
			_, err := l.GetPoints(owner, owner, 200)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	for _, owner := range owners {
		proj, err := l.GetPoints(owner, owner, 300)
		assert.NoError(t, err)
		assert.Equal(t, 6*stakepoint.UnitsPerAsset, proj.StakedAmount)
		assert.Equal(t, int64(200), proj.LastUpdateTime)

		bal, err := st.GetBalance(owner)
		assert.NoError(t, err)
		assert.Equal(t, 4*stakepoint.UnitsPerAsset, bal)
	}
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	db, err := lvldb.NewMem()
	assert.NoError(t, err)
	st := state.New(db)
	l := New(st, vault.New(st), NewCounterIssuer(st))

	alice := stakepoint.BytesToAddress([]byte("alice"))
	fund(t, st, alice, stakepoint.UnitsPerAsset)

	t0 := int64(1_700_000_000)
	assert.NoError(t, l.Create(alice, t0))
	assert.NoError(t, l.Stake(alice, alice, stakepoint.UnitsPerAsset, t0))

	// a fresh state over the same store sees the committed account
	st2 := state.New(db)
	l2 := New(st2, vault.New(st2), NewCounterIssuer(st2))
	proj, err := l2.GetPoints(alice, alice, t0+int64(stakepoint.SecondsPerDay))
	assert.NoError(t, err)
	assert.Equal(t, stakepoint.UnitsPerAsset, proj.StakedAmount)
	assert.Equal(t, stakepoint.PointsRate, proj.TotalPoints)
}
