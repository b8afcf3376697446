package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Value_Coercions(t *testing.T) {
	testCases := []struct {
		name        string
		input       Value
		expectInt   int64
		expectFloat float64
		expectBool  bool
	}{
		{
			name:        "int",
			input:       IntValue(7),
			expectInt:   7,
			expectFloat: 7,
			expectBool:  true,
		},
		{
			name:        "zero int is false",
			input:       IntValue(0),
			expectInt:   0,
			expectFloat: 0,
			expectBool:  false,
		},
		{
			name:        "float truncates to int",
			input:       FloatValue(3.9),
			expectInt:   3,
			expectFloat: 3.9,
			expectBool:  true,
		},
		{
			name:        "bool true",
			input:       BoolValue(true),
			expectInt:   1,
			expectFloat: 1,
			expectBool:  true,
		},
		{
			name:        "enum carries ordinal",
			input:       EnumValue("Color", "Red", 2),
			expectInt:   2,
			expectFloat: 2,
			expectBool:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tc.expectInt, tc.input.AsInt())
			assert.Equal(tc.expectFloat, tc.input.AsFloat())
			assert.Equal(tc.expectBool, tc.input.AsBool())
		})
	}
}

func Test_Value_StringIsNotNumericCoercible(t *testing.T) {
	assert := assert.New(t)
	v := StringValue("hello")
	assert.Panics(func() { v.AsInt() })
}

func Test_Value_ArrayString(t *testing.T) {
	assert := assert.New(t)
	v := ArrayValue([]Value{IntValue(1), IntValue(2), IntValue(3)})
	assert.Equal("[1, 2, 3]", v.String())
}

func Test_Value_EnumString(t *testing.T) {
	assert := assert.New(t)
	v := EnumValue("Color", "Red", 0)
	assert.Equal("Color.Red", v.String())
}
