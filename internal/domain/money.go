package domain

import "math/bits"

// Checked unsigned arithmetic for pool accounting. Every overflow surfaces
// as ErrArithmeticOverflow; nothing ever wraps silently.

// CheckedAdd returns a+b or ErrArithmeticOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrArithmeticOverflow on underflow.
func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrArithmeticOverflow
	}
	return diff, nil
}

// CheckedMul returns a*b or ErrArithmeticOverflow.
func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return lo, nil
}

// CheckedAddU32 returns a+b or ErrArithmeticOverflow.
func CheckedAddU32(a, b uint32) (uint32, error) {
	sum := a + b
	if sum < a {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

// SplitFee splits a gross stake into the platform fee and the net stake.
// The fee is amount*feeBps/10_000 with integer division rounding down, so
// fee+net == amount exactly.
func SplitFee(amount, feeBps uint64) (fee, net uint64, err error) {
	scaled, err := CheckedMul(amount, feeBps)
	if err != nil {
		return 0, 0, err
	}
	fee = scaled / 10_000
	net, err = CheckedSub(amount, fee)
	if err != nil {
		return 0, 0, err
	}
	return fee, net, nil
}

// PayoutAdditive computes the parimutuel payout as
//
//	stake + stake*losingPool/winningPool
//
// using checked 64-bit arithmetic. The intermediate product can overflow for
// large stakes against large losing pools; PayoutRatio is the authoritative
// form at claim time.
func PayoutAdditive(stake, winningPool, losingPool uint64) (uint64, error) {
	if winningPool == 0 {
		return 0, ErrNoWinningBets
	}
	product, err := CheckedMul(stake, losingPool)
	if err != nil {
		return 0, err
	}
	return CheckedAdd(stake, product/winningPool)
}

// PayoutRatio computes the parimutuel payout as
//
//	stake * (winningPool + losingPool) / winningPool
//
// with a 128-bit intermediate, so it cannot overflow for any pools that fit
// in 64 bits. It agrees with PayoutAdditive up to rounding wherever both
// succeed; any stake actually contained in the winning pool yields a
// quotient that fits in 64 bits.
func PayoutRatio(stake, winningPool, losingPool uint64) (uint64, error) {
	if winningPool == 0 {
		return 0, ErrNoWinningBets
	}
	total, err := CheckedAdd(winningPool, losingPool)
	if err != nil {
		return 0, err
	}
	hi, lo := bits.Mul64(stake, total)
	if hi >= winningPool {
		// Quotient would not fit in 64 bits; only possible when the
		// stake exceeds the winning pool, which the ledger never allows.
		return 0, ErrArithmeticOverflow
	}
	quo, _ := bits.Div64(hi, lo, winningPool)
	return quo, nil
}
