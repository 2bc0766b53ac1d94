package record

import (
	"database/sql"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	timeType    = reflect.TypeFor[time.Time]()
	scannerType = reflect.TypeFor[sql.Scanner]()
)

// timeLayouts are tried in order when a time arrives as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	"2006-01-02 15:04:05.999999999-07:00",
	time.DateOnly,
}

// setField stores v into dst, converting between the scalar shapes that
// drivers and callers produce: []byte text, int64 for every integer, float64,
// bool, time.Time and their string forms. A nil v resets dst to its zero value.
func setField(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	src := reflect.ValueOf(v)
	if src.Kind() == reflect.Pointer {
		if src.IsNil() {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		if dst.Kind() != reflect.Pointer || !src.Type().AssignableTo(dst.Type()) {
			return setField(dst, src.Elem().Interface())
		}
	}

	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	if reflect.PointerTo(dst.Type()).Implements(scannerType) {
		scanner, _ := dst.Addr().Interface().(sql.Scanner) //nolint:errcheck // checked by Implements
		return scanner.Scan(v)
	}

	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := setField(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	if dst.Type() == timeType {
		t, err := toTime(src)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
		return nil
	}

	switch k := dst.Kind(); {
	case k == reflect.String:
		s, ok := toString(src)
		if !ok {
			return mismatch(v, dst)
		}
		dst.SetString(s)

	case isSigned(k):
		n, err := toInt64(src)
		if err != nil {
			return err
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)

	case isUnsigned(k):
		n, err := toInt64(src)
		if err != nil {
			return err
		}
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetUint(uint64(n))

	case k == reflect.Float32 || k == reflect.Float64:
		f, err := toFloat64(src)
		if err != nil {
			return err
		}
		dst.SetFloat(f)

	case k == reflect.Bool:
		b, err := toBool(src)
		if err != nil {
			return err
		}
		dst.SetBool(b)

	case k == reflect.Slice && dst.Type().Elem().Kind() == reflect.Uint8:
		s, ok := toString(src)
		if !ok {
			return mismatch(v, dst)
		}
		dst.SetBytes([]byte(s))

	default:
		if src.Kind() == k && src.Type().ConvertibleTo(dst.Type()) {
			dst.Set(src.Convert(dst.Type()))
			return nil
		}
		return mismatch(v, dst)
	}
	return nil
}

func mismatch(v any, dst reflect.Value) error {
	return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isInteger(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k)
}

// toString accepts strings and byte slices (MySQL returns text as []byte).
func toString(src reflect.Value) (string, bool) {
	switch {
	case src.Kind() == reflect.String:
		return src.String(), true
	case src.Kind() == reflect.Slice && src.Type().Elem().Kind() == reflect.Uint8:
		return string(src.Bytes()), true
	default:
		return "", false
	}
}

// toInt64 also accepts time.Time as Unix seconds: SQLite hands back integer
// values in DATETIME columns as times.
func toInt64(src reflect.Value) (int64, error) {
	if t, ok := src.Interface().(time.Time); ok {
		return t.Unix(), nil
	}
	switch k := src.Kind(); {
	case isSigned(k):
		return src.Int(), nil
	case isUnsigned(k):
		u := src.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", u)
		}
		return int64(u), nil
	case k == reflect.Float32 || k == reflect.Float64:
		f := src.Float()
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("value %v is not integral", f)
		}
		return int64(f), nil
	case k == reflect.Bool:
		if src.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	if s, ok := toString(src); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing integer: %w", err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("cannot convert %s to integer", src.Type())
}

func toFloat64(src reflect.Value) (float64, error) {
	switch k := src.Kind(); {
	case k == reflect.Float32 || k == reflect.Float64:
		return src.Float(), nil
	case isSigned(k):
		return float64(src.Int()), nil
	case isUnsigned(k):
		return float64(src.Uint()), nil
	}
	if s, ok := toString(src); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("parsing float: %w", err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("cannot convert %s to float", src.Type())
}

func toBool(src reflect.Value) (bool, error) {
	switch k := src.Kind(); {
	case k == reflect.Bool:
		return src.Bool(), nil
	case isSigned(k):
		return src.Int() != 0, nil
	case isUnsigned(k):
		return src.Uint() != 0, nil
	}
	if s, ok := toString(src); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return false, fmt.Errorf("parsing bool: %w", err)
		}
		return b, nil
	}
	return false, fmt.Errorf("cannot convert %s to bool", src.Type())
}

// toTime accepts time.Time, text in the common SQL layouts, and Unix seconds.
func toTime(src reflect.Value) (time.Time, error) {
	if t, ok := src.Interface().(time.Time); ok {
		return t, nil
	}
	if isInteger(src.Kind()) {
		n, err := toInt64(src)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(n, 0).UTC(), nil
	}
	s, ok := toString(src)
	if !ok {
		return time.Time{}, fmt.Errorf("cannot convert %s to time", src.Type())
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}
