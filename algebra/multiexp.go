package algebra

import "math/big"

// NaiveMultiExp computes sum(scalars[i] * points[i]) one term at a time.
// It is the reference implementation for VartimeMultiExp.
func NaiveMultiExp(grp Group, scalars []*big.Int, points []Element) Element {
	r := grp.Identity()
	for i, s := range scalars {
		term := grp.Element().Scale(points[i], s)
		r = grp.Element().Add(r, term)
	}
	return r
}

// VartimeMultiExp computes sum(scalars[i] * points[i]) with a windowed
// Pippenger bucket method. The running time depends on the scalar values;
// the routine is reserved for verifier paths.
func VartimeMultiExp(grp Group, scalars []*big.Int, points []Element) Element {
	size := len(scalars)
	if size == 0 {
		return grp.Identity()
	}

	var w uint
	switch {
	case size < 500:
		w = 6
	case size < 800:
		w = 7
	default:
		w = 8
	}

	digitsVec := make([][]int16, size)
	digitsCount := 0
	for i, s := range scalars {
		digitsVec[i] = scalarToRadixPow2(new(big.Int).Mod(s, grp.N()), w)
		if len(digitsVec[i]) > digitsCount {
			digitsCount = len(digitsVec[i])
		}
	}

	buckets := make([]Element, 1<<(w-1))
	twoPowW := new(big.Int).Lsh(big.NewInt(1), w)

	var total Element
	for index := digitsCount - 1; index >= 0; index-- {
		for i := range buckets {
			buckets[i] = grp.Identity()
		}
		for i, digits := range digitsVec {
			if index >= len(digits) {
				continue
			}
			digit := digits[index]
			if digit > 0 {
				bIndex := int(digit) - 1
				buckets[bIndex] = buckets[bIndex].Add(buckets[bIndex], points[i])
			}
			if digit < 0 {
				bIndex := int(-digit) - 1
				buckets[bIndex] = buckets[bIndex].Subtract(buckets[bIndex], points[i])
			}
		}

		// Classical two-running-sums bucket fold.
		intermediate := grp.Element().Set(buckets[len(buckets)-1])
		col := grp.Element().Set(buckets[len(buckets)-1])
		for i := len(buckets) - 2; i >= 0; i-- {
			intermediate = intermediate.Add(intermediate, buckets[i])
			col = col.Add(col, intermediate)
		}

		if total == nil {
			total = col
		} else {
			total = grp.Element().Scale(total, twoPowW)
			total = total.Add(total, col)
		}
	}
	return total
}

// scalarToRadixPow2 decomposes a non-negative scalar into signed radix-2^w
// digits in [-2^(w-1), 2^(w-1)].
func scalarToRadixPow2(s *big.Int, w uint) []int16 {
	radix := int64(1) << w
	half := radix >> 1
	mask := new(big.Int).SetInt64(radix - 1)

	v := new(big.Int).Set(s)
	var digits []int16
	for v.Sign() > 0 {
		rem := new(big.Int).And(v, mask).Int64()
		digit := rem
		if rem > half {
			digit = rem - radix
		}
		digits = append(digits, int16(digit))
		v.Sub(v, big.NewInt(digit))
		v.Rsh(v, w)
	}
	if len(digits) == 0 {
		digits = []int16{0}
	}
	return digits
}
