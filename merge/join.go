package merge

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ridoystarlord/reportmerge/dataset"
)

// LeftJoin joins right onto left where left.leftOn equals right.rightOn.
//
// Every left row is kept, once per matching right row (in right order) or
// once with nil right values when nothing matches. Right columns whose names
// are already taken get suffix appended until they are unique. The result
// carries the left dataset's name.
func LeftJoin(left, right *dataset.Dataset, leftOn, rightOn, suffix string) (*dataset.Dataset, error) {
	ds, _, err := leftJoin(left, right, leftOn, rightOn, suffix)
	return ds, err
}

func leftJoin(left, right *dataset.Dataset, leftOn, rightOn, suffix string) (*dataset.Dataset, int, error) {
	li := left.ColumnIndex(leftOn)
	if li < 0 {
		return nil, 0, fmt.Errorf("%w: %s.%s", dataset.ErrColumnNotFound, left.Name, leftOn)
	}
	ri := right.ColumnIndex(rightOn)
	if ri < 0 {
		return nil, 0, fmt.Errorf("%w: %s.%s", dataset.ErrColumnNotFound, right.Name, rightOn)
	}

	columns := mergedColumns(left.Columns, right.Columns, suffix)
	index := buildJoinIndex(right, ri)

	width := len(columns)
	rows := make([][]any, 0, left.Len())
	unmatched := 0

	for _, leftRow := range left.Rows {
		var matches []int
		if key, ok := joinKey(leftRow[li]); ok {
			matches = index[key]
		}

		if len(matches) == 0 {
			unmatched++
			row := make([]any, width)
			copy(row, leftRow)
			rows = append(rows, row)
			continue
		}

		for _, pos := range matches {
			row := make([]any, 0, width)
			row = append(row, leftRow...)
			row = append(row, right.Rows[pos]...)
			rows = append(rows, row)
		}
	}

	merged, err := dataset.New(left.Name, columns, rows)
	if err != nil {
		return nil, 0, err
	}
	return merged, unmatched, nil
}

// mergedColumns keeps the left names and suffixes colliding right names.
func mergedColumns(left, right []string, suffix string) []string {
	taken := make(map[string]bool, len(left)+len(right))
	columns := make([]string, 0, len(left)+len(right))
	for _, c := range left {
		taken[c] = true
		columns = append(columns, c)
	}
	for _, c := range right {
		name := c
		for taken[name] {
			name += suffix
		}
		taken[name] = true
		columns = append(columns, name)
	}
	return columns
}

// buildJoinIndex maps each non-nil key of the column to its row positions.
func buildJoinIndex(ds *dataset.Dataset, col int) map[any][]int {
	index := make(map[any][]int, ds.Len())
	for i, row := range ds.Rows {
		key, ok := joinKey(row[col])
		if !ok {
			continue
		}
		index[key] = append(index[key], i)
	}
	return index
}

// joinKey normalizes a value so that equal values loaded with different Go
// types land on the same map key. nil and NaN never match.
func joinKey(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return unsignedKey(uint64(x)), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return unsignedKey(x), true
	case float32:
		return floatKey(float64(x))
	case float64:
		return floatKey(x)
	case []byte:
		return string(x), true
	case time.Time:
		return x.UTC(), true
	case pgtype.Numeric:
		return numericKey(x)
	case driver.Valuer:
		if dv, err := x.Value(); err == nil {
			if _, again := dv.(driver.Valuer); !again {
				return joinKey(dv)
			}
		}
	}
	if reflect.TypeOf(v).Comparable() {
		return v, true
	}
	return fmt.Sprint(v), true
}

// numericKey maps a NUMERIC onto the key its value would have as a Go
// number, so 34, 34.00 and int64(34) all match. Decimals with no exact
// float64 form keep an exact rational key.
func numericKey(n pgtype.Numeric) (any, bool) {
	if !n.Valid || n.NaN {
		return nil, false
	}
	switch n.InfinityModifier {
	case pgtype.Infinity:
		return math.Inf(1), true
	case pgtype.NegativeInfinity:
		return math.Inf(-1), true
	}

	r, _ := dataset.NumericRat(n)
	if r.IsInt() {
		switch num := r.Num(); {
		case num.IsInt64():
			return num.Int64(), true
		case num.IsUint64():
			return num.Uint64(), true
		default:
			return "numeric:" + num.String(), true
		}
	}
	if f, exact := r.Float64(); exact {
		return f, true
	}
	return "numeric:" + r.RatString(), true
}

func unsignedKey(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}

func floatKey(f float64) (any, bool) {
	if math.IsNaN(f) {
		return nil, false
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f), true
	}
	return f, true
}
