package secretcustody

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"time"
)

// SplitKey implements split_key: Shamir's Secret Sharing over GF(2^8),
// applied independently per byte of key. Requires 2 ≤ k ≤ n ≤ 255.
func SplitKey(key Key, n, k uint8) ([]Share, error) {
	if k < 2 || n < k || n > 255 {
		return nil, ErrInvalidShareParams
	}

	// One random polynomial of degree k-1 per byte position, with the
	// secret byte as the constant term.
	coeffs := make([][]byte, KeySize)
	for i := 0; i < KeySize; i++ {
		coeffs[i] = make([]byte, k)
		coeffs[i][0] = key[i]
		if _, err := rand.Read(coeffs[i][1:]); err != nil {
			return nil, fmt.Errorf("secretcustody: share randomness: %w", err)
		}
	}

	now := time.Now()
	shares := make([]Share, n)
	for shareIdx := 0; shareIdx < int(n); shareIdx++ {
		x := byte(shareIdx + 1)
		bytes := make([]byte, KeySize)
		for b := 0; b < KeySize; b++ {
			bytes[b] = evalPoly(coeffs[b], x)
		}
		shares[shareIdx] = Share{
			Index:     x,
			Bytes:     bytes,
			K:         k,
			N:         n,
			Timestamp: now,
			Checksum:  sha256.Sum256(bytes),
		}
	}
	return shares, nil
}

// evalPoly evaluates the polynomial with the given coefficients (lowest
// degree first) at x, in GF(2^8), via Horner's method.
func evalPoly(coeffs []byte, x byte) byte {
	result := byte(0)
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = gfAdd(gfMul(result, x), coeffs[i])
	}
	return result
}

// CombineShares implements combine_shares: Lagrange interpolation at x=0
// over any k of the supplied shares, after verifying each share's checksum.
func CombineShares(shares []Share) (Key, error) {
	if len(shares) == 0 {
		return Key{}, ErrInsufficientShares
	}
	k := shares[0].K
	for _, s := range shares {
		if s.Checksum != sha256.Sum256(s.Bytes) {
			return Key{}, ErrChecksumMismatch
		}
	}
	// Shares repeating an earlier index add nothing to the interpolation
	// and are dropped before counting.
	seen := make(map[uint8]struct{}, len(shares))
	distinct := make([]Share, 0, len(shares))
	for _, s := range shares {
		if _, dup := seen[s.Index]; dup {
			continue
		}
		seen[s.Index] = struct{}{}
		distinct = append(distinct, s)
	}
	if len(distinct) < int(k) {
		return Key{}, ErrInsufficientShares
	}
	// Use exactly k shares — any k reconstruct identically, so extra
	// shares beyond k are simply ignored.
	shares = distinct[:k]

	var key Key
	for b := 0; b < KeySize; b++ {
		xs := make([]byte, len(shares))
		ys := make([]byte, len(shares))
		for i, s := range shares {
			if len(s.Bytes) != KeySize {
				return Key{}, ErrChecksumMismatch
			}
			xs[i] = s.Index
			ys[i] = s.Bytes[b]
		}
		key[b] = lagrangeAtZero(xs, ys)
	}
	return key, nil
}

// lagrangeAtZero evaluates the unique interpolating polynomial through
// (xs[i], ys[i]) at x=0, in GF(2^8).
func lagrangeAtZero(xs, ys []byte) byte {
	var result byte
	for i := range xs {
		term := ys[i]
		for j := range xs {
			if i == j {
				continue
			}
			// numerator contributes (0 - xs[j]) = xs[j] (GF subtraction
			// is XOR, so -x == x); denominator is (xs[i] - xs[j]).
			num := xs[j]
			den := gfAdd(xs[i], xs[j])
			term = gfMul(term, gfDiv(num, den))
		}
		result = gfAdd(result, term)
	}
	return result
}
