package dataset

import (
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// NumericRat returns the exact value of a NUMERIC. ok is false for NULL,
// NaN and the infinities.
func NumericRat(n pgtype.Numeric) (*big.Rat, bool) {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite {
		return nil, false
	}
	r := new(big.Rat)
	if n.Int != nil {
		r.SetInt(n.Int)
	}
	if n.Exp == 0 {
		return r, true
	}

	exp := int64(n.Exp)
	if exp < 0 {
		exp = -exp
	}
	scale := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil))
	if n.Exp > 0 {
		return r.Mul(r, scale), true
	}
	return r.Quo(r, scale), true
}

// FormatNumeric renders a NUMERIC the way psql prints it: plain decimal
// notation keeping the stored scale. NULL renders as the empty string.
func FormatNumeric(n pgtype.Numeric) string {
	switch {
	case !n.Valid:
		return ""
	case n.NaN:
		return "NaN"
	case n.InfinityModifier == pgtype.Infinity:
		return "Infinity"
	case n.InfinityModifier == pgtype.NegativeInfinity:
		return "-Infinity"
	}

	r, _ := NumericRat(n)
	if n.Exp < 0 {
		return r.FloatString(int(-n.Exp))
	}
	return r.FloatString(0)
}
