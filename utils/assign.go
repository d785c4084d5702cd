package utils

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// ErrUnsupportedConversion is returned when a value cannot be assigned to a
// destination of another type.
var ErrUnsupportedConversion = errors.New("unsupported conversion")

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
	bytesType   = reflect.TypeOf([]byte(nil))
)

// timeLayouts are tried in order when a time arrives as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Assign stores src into dst, widening between numeric kinds, unwrapping
// pointers and nullable wrappers, and parsing text where the destination is
// numeric, boolean or a time. A nil src zeroes dst. Destinations implementing
// sql.Scanner through their address are handed src unchanged.
func Assign(dst reflect.Value, src any) error {
	if !dst.CanSet() {
		return fmt.Errorf("utils: destination of type %s is not settable", dst.Type())
	}

	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	if dst.Kind() != reflect.Ptr && reflect.PointerTo(dst.Type()).Implements(scannerType) {
		return dst.Addr().Interface().(sql.Scanner).Scan(src)
	}

	sv := reflect.ValueOf(src)
	for sv.Kind() == reflect.Ptr {
		if sv.IsNil() {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		sv = sv.Elem()
	}

	if dst.Kind() == reflect.Ptr {
		elem := reflect.New(dst.Type().Elem())
		if err := Assign(elem.Elem(), sv.Interface()); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}

	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(sv)
		if err != nil {
			return mismatch(sv, dst, err)
		}
		if dst.OverflowInt(n) {
			return mismatch(sv, dst, fmt.Errorf("value %d overflows", n))
		}
		dst.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt64(sv)
		if err != nil {
			return mismatch(sv, dst, err)
		}
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return mismatch(sv, dst, fmt.Errorf("value %d overflows", n))
		}
		dst.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(sv)
		if err != nil {
			return mismatch(sv, dst, err)
		}
		dst.SetFloat(f)
		return nil
	case reflect.Bool:
		b, err := toBool(sv)
		if err != nil {
			return mismatch(sv, dst, err)
		}
		dst.SetBool(b)
		return nil
	case reflect.String:
		if sv.Type() == bytesType {
			dst.SetString(string(sv.Bytes()))
			return nil
		}
		if isNumeric(sv.Kind()) || sv.Kind() == reflect.Bool {
			dst.SetString(fmt.Sprint(sv.Interface()))
			return nil
		}
		if s, ok := sv.Interface().(fmt.Stringer); ok {
			dst.SetString(s.String())
			return nil
		}
	case reflect.Slice:
		if dst.Type() == bytesType && sv.Kind() == reflect.String {
			dst.SetBytes([]byte(sv.String()))
			return nil
		}
	case reflect.Struct:
		if dst.Type() == timeType {
			t, err := toTime(sv)
			if err != nil {
				return mismatch(sv, dst, err)
			}
			dst.Set(reflect.ValueOf(t))
			return nil
		}
	}

	if sv.Type().ConvertibleTo(dst.Type()) && sv.Kind() != reflect.String {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}

	return mismatch(sv, dst, ErrUnsupportedConversion)
}

func mismatch(sv, dst reflect.Value, err error) error {
	return fmt.Errorf("utils: cannot assign %s to %s: %w", sv.Type(), dst.Type(), err)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func text(sv reflect.Value) (string, bool) {
	switch {
	case sv.Kind() == reflect.String:
		return sv.String(), true
	case sv.Type() == bytesType:
		return string(sv.Bytes()), true
	}
	return "", false
}

func toInt64(sv reflect.Value) (int64, error) {
	switch sv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return sv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := sv.Uint()
		if u > 1<<63-1 {
			return 0, fmt.Errorf("value %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := sv.Float()
		if f != float64(int64(f)) {
			return 0, fmt.Errorf("value %v is not integral", f)
		}
		return int64(f), nil
	case reflect.Bool:
		if sv.Bool() {
			return 1, nil
		}
		return 0, nil
	}
	if s, ok := text(sv); ok {
		return strconv.ParseInt(s, 10, 64)
	}
	return 0, ErrUnsupportedConversion
}

func toFloat64(sv reflect.Value) (float64, error) {
	switch sv.Kind() {
	case reflect.Float32, reflect.Float64:
		return sv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(sv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(sv.Uint()), nil
	}
	if s, ok := text(sv); ok {
		return strconv.ParseFloat(s, 64)
	}
	return 0, ErrUnsupportedConversion
}

func toBool(sv reflect.Value) (bool, error) {
	if s, ok := text(sv); ok {
		return strconv.ParseBool(s)
	}
	n, err := toInt64(sv)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

func toTime(sv reflect.Value) (time.Time, error) {
	s, ok := text(sv)
	if !ok {
		return time.Time{}, ErrUnsupportedConversion
	}
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
