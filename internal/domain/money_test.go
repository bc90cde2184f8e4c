package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedAdd_Basic(t *testing.T) {
	sum, err := CheckedAdd(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), sum)
}

func TestCheckedAdd_Overflow(t *testing.T) {
	_, err := CheckedAdd(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestCheckedSub_Underflow(t *testing.T) {
	_, err := CheckedSub(1, 2)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestCheckedMul_Overflow(t *testing.T) {
	_, err := CheckedMul(math.MaxUint64, 2)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestCheckedAddU32_Overflow(t *testing.T) {
	_, err := CheckedAddU32(math.MaxUint32, 1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	n, err := CheckedAddU32(41, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), n)
}

func TestSplitFee_MinStake(t *testing.T) {
	fee, net, err := SplitFee(MinStake, FeeBps)
	require.NoError(t, err)
	assert.Equal(t, uint64(50_000), fee) // 0.5% of 10_000_000
	assert.Equal(t, uint64(9_950_000), net)
}

func TestSplitFee_Exact(t *testing.T) {
	// fee + net must reconstruct the gross amount for any stake, including
	// amounts where the fee division truncates.
	for _, amount := range []uint64{MinStake, MinStake + 1, 33_333_333, MaxStake} {
		fee, net, err := SplitFee(amount, FeeBps)
		require.NoError(t, err)
		assert.Equal(t, amount, fee+net, "amount %d", amount)
		assert.Equal(t, amount*FeeBps/10_000, fee, "amount %d", amount)
	}
}

func TestSplitFee_Overflow(t *testing.T) {
	_, _, err := SplitFee(math.MaxUint64, FeeBps)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestPayoutAdditive_Basic(t *testing.T) {
	// stake 100 in a 1000-vs-500 market: 100 + 100*500/1000 = 150
	payout, err := PayoutAdditive(100, 1000, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), payout)
}

func TestPayoutAdditive_EmptyWinningPool(t *testing.T) {
	_, err := PayoutAdditive(100, 0, 500)
	assert.ErrorIs(t, err, ErrNoWinningBets)
}

func TestPayoutAdditive_ProductOverflow(t *testing.T) {
	_, err := PayoutAdditive(math.MaxUint64/2, 1000, 1000)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestPayoutRatio_Basic(t *testing.T) {
	// stake 100 of winning 1000 against losing 500: 100*1500/1000 = 150
	payout, err := PayoutRatio(100, 1000, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), payout)
}

func TestPayoutRatio_EmptyWinningPool(t *testing.T) {
	_, err := PayoutRatio(100, 0, 500)
	assert.ErrorIs(t, err, ErrNoWinningBets)
}

func TestPayoutRatio_SoleWinnerTakesAll(t *testing.T) {
	payout, err := PayoutRatio(1_000_000, 1_000_000, 9_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), payout)
}

func TestPayoutRatio_LargePoolsNoOverflow(t *testing.T) {
	// The additive form overflows on its intermediate product here; the
	// ratio form must still settle it.
	stake := uint64(90_000_000_000)
	winning := uint64(90_000_000_000)
	losing := uint64(100_000_000_000_000)

	_, err := PayoutAdditive(stake, winning, losing)
	require.ErrorIs(t, err, ErrArithmeticOverflow)

	payout, err := PayoutRatio(stake, winning, losing)
	require.NoError(t, err)
	assert.Equal(t, winning+losing, payout)
}

func TestPayoutRatio_AgreesWithAdditive(t *testing.T) {
	cases := []struct{ stake, winning, losing uint64 }{
		{10_000_000, 50_000_000, 30_000_000},
		{9_950_000, 9_950_000, 19_900_000},
		{1, 3, 10},
		{123_456, 777_777, 333_333},
	}
	for _, tc := range cases {
		add, err := PayoutAdditive(tc.stake, tc.winning, tc.losing)
		require.NoError(t, err)
		ratio, err := PayoutRatio(tc.stake, tc.winning, tc.losing)
		require.NoError(t, err)
		// floor(stake + share) == stake + floor(share) for integer stakes,
		// so the two forms agree exactly wherever both succeed.
		assert.Equal(t, add, ratio, "stake %d", tc.stake)
	}
}

func TestPayoutRatio_StakeExceedingPoolOverflows(t *testing.T) {
	// A stake larger than the winning pool can push the 128-bit quotient
	// past 64 bits; the ledger never produces this, so it must error rather
	// than wrap.
	_, err := PayoutRatio(math.MaxUint64, 1, math.MaxUint64-1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}
