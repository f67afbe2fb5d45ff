package infra

import (
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// NumericToInt64 converts a numeric(15,0) cents column to int64.
// NULL, NaN and values outside int64 are errors; fractional digits are truncated.
func NumericToInt64(n pgtype.Numeric) (int64, error) {
	if !n.Valid {
		return 0, fmt.Errorf("numeric value is NULL")
	}
	if n.NaN {
		return 0, fmt.Errorf("numeric value is NaN")
	}

	// pgtype.Numeric stores Int * 10^Exp.
	bi := new(big.Int).Set(n.Int)
	switch {
	case n.Exp > 0:
		bi.Mul(bi, pow10(n.Exp))
	case n.Exp < 0:
		bi.Quo(bi, pow10(-n.Exp))
	}

	if !bi.IsInt64() {
		return 0, fmt.Errorf("numeric value %s overflows int64", bi.String())
	}
	return bi.Int64(), nil
}

// NumericToInt64Ptr converts a nullable numeric column; NULL becomes nil.
func NumericToInt64Ptr(n pgtype.Numeric) (*int64, error) {
	if !n.Valid {
		return nil, nil
	}
	v, err := NumericToInt64(n)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Int64ToNumeric converts cents to a pgtype.Numeric for a numeric(15,0) column.
func Int64ToNumeric(v int64) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              big.NewInt(v),
		Exp:              0,
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}

// Int64PtrToNumeric converts optional cents; nil becomes SQL NULL.
func Int64PtrToNumeric(v *int64) pgtype.Numeric {
	if v == nil {
		return pgtype.Numeric{}
	}
	return Int64ToNumeric(*v)
}

func pow10(exp int32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}
