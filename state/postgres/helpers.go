package postgres

import (
	"math/big"
	"time"
)

func timeDuration(ns int64) time.Duration {
	return time.Duration(ns)
}

// encodeBig renders v as a decimal string, treating nil as zero.
func encodeBig(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// decodeBig parses a decimal string produced by encodeBig. An empty string
// decodes to zero, matching columns left unused by a given asset class.
func decodeBig(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errInvalidBigInt(s)
	}
	return v, nil
}

type errInvalidBigInt string

func (e errInvalidBigInt) Error() string {
	return "postgres: invalid decimal integer: " + string(e)
}
