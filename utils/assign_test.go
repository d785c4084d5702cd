package utils

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type target struct {
	Int      int
	Int32    int32
	Uint8    uint8
	Float    float64
	Bool     bool
	Str      string
	Bytes    []byte
	When     time.Time
	Ptr      *int64
	Nullable sql.NullString
}

func field(t *testing.T, v *target, name string) reflect.Value {
	t.Helper()
	f := reflect.ValueOf(v).Elem().FieldByName(name)
	require.True(t, f.IsValid(), name)
	return f
}

func TestAssign_Widening(t *testing.T) {
	tests := []struct {
		name  string
		field string
		src   any
		check func(*testing.T, *target)
	}{
		{"int64 to int", "Int", int64(42), func(t *testing.T, v *target) { assert.Equal(t, 42, v.Int) }},
		{"int8 to int32", "Int32", int8(-3), func(t *testing.T, v *target) { assert.Equal(t, int32(-3), v.Int32) }},
		{"uint to uint8", "Uint8", uint(200), func(t *testing.T, v *target) { assert.Equal(t, uint8(200), v.Uint8) }},
		{"integral float to int", "Int", float64(7), func(t *testing.T, v *target) { assert.Equal(t, 7, v.Int) }},
		{"int to float", "Float", int32(5), func(t *testing.T, v *target) { assert.Equal(t, 5.0, v.Float) }},
		{"text to float", "Float", []byte("12.5"), func(t *testing.T, v *target) { assert.Equal(t, 12.5, v.Float) }},
		{"text to int", "Int", "19", func(t *testing.T, v *target) { assert.Equal(t, 19, v.Int) }},
		{"int to bool", "Bool", int64(1), func(t *testing.T, v *target) { assert.True(t, v.Bool) }},
		{"text to bool", "Bool", "true", func(t *testing.T, v *target) { assert.True(t, v.Bool) }},
		{"bytes to string", "Str", []byte("hello"), func(t *testing.T, v *target) { assert.Equal(t, "hello", v.Str) }},
		{"int to string", "Str", int64(9), func(t *testing.T, v *target) { assert.Equal(t, "9", v.Str) }},
		{"stringer to string", "Str", time.Duration(90) * time.Second, func(t *testing.T, v *target) { assert.Equal(t, "1m30s", v.Str) }},
		{"string to bytes", "Bytes", "raw", func(t *testing.T, v *target) { assert.Equal(t, []byte("raw"), v.Bytes) }},
		{"text to time", "When", "2024-03-01 10:20:30", func(t *testing.T, v *target) {
			assert.Equal(t, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC), v.When)
		}},
		{"value to pointer", "Ptr", int32(11), func(t *testing.T, v *target) {
			require.NotNil(t, v.Ptr)
			assert.Equal(t, int64(11), *v.Ptr)
		}},
		{"scanner", "Nullable", "x", func(t *testing.T, v *target) {
			assert.Equal(t, sql.NullString{String: "x", Valid: true}, v.Nullable)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v target
			require.NoError(t, Assign(field(t, &v, tt.field), tt.src))
			tt.check(t, &v)
		})
	}
}

func TestAssign_NilZeroes(t *testing.T) {
	n := int64(3)
	v := target{Int: 5, Str: "s", Ptr: &n}

	require.NoError(t, Assign(field(t, &v, "Int"), nil))
	require.NoError(t, Assign(field(t, &v, "Str"), nil))
	require.NoError(t, Assign(field(t, &v, "Ptr"), nil))
	require.NoError(t, Assign(field(t, &v, "Nullable"), nil))

	assert.Zero(t, v.Int)
	assert.Zero(t, v.Str)
	assert.Nil(t, v.Ptr)
	assert.False(t, v.Nullable.Valid)
}

func TestAssign_Errors(t *testing.T) {
	var v target

	err := Assign(field(t, &v, "Uint8"), int64(300))
	assert.Error(t, err)

	err = Assign(field(t, &v, "Int"), 1.5)
	assert.Error(t, err)

	err = Assign(field(t, &v, "Int"), "abc")
	assert.Error(t, err)

	err = Assign(field(t, &v, "When"), struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedConversion)

	err = Assign(reflect.ValueOf(v.Int), 1)
	assert.Error(t, err)
}
