package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperator_Query(t *testing.T) {
	tests := []struct {
		name string
		op   Operator
		a, b any
		want bool
	}{
		{"int lower", Lower, int64(3), int64(5), true},
		{"int lower equal", Lower, int64(5), int64(5), false},
		{"int lower or equal", LowerOrEqual, int64(5), int64(5), true},
		{"int equal", Equal, int64(5), int64(5), true},
		{"int greater or equal", GreaterOrEqual, int64(4), int64(5), false},
		{"int greater", Greater, int64(6), int64(5), true},
		{"float lower", Lower, 0.1, 0.2, true},
		{"mixed numeric", Greater, 0.5, int64(0), true},
		{"mixed numeric reversed", Equal, int64(2), 2.0, true},
		{"text equals ignores case", TextEqual, "PASS", "pass", true},
		{"text not equals", TextNotEqual, "PASS", "LowQual", true},
		{"text not equals same", TextNotEqual, "pass", "PASS", false},
		{"text contains", TextContains, "missense_variant", "SENSE", true},
		{"text contains miss", TextContains, "synonymous", "stop", false},
		{"flag present", Present, true, nil, true},
		{"flag present absent", Present, false, nil, false},
		{"flag not present", NotPresent, false, nil, true},
		{"nil left", Equal, nil, int64(1), false},
		{"nil left text", TextNotEqual, nil, "x", false},
		{"text vs number", Lower, "abc", int64(1), false},
		{"number vs text", TextEqual, int64(1), "1", false},
		{"flag on text", Present, "yes", nil, false},
		{"unknown operator", Operator(99), int64(1), int64(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.Query(tt.a, tt.b))
		})
	}
}

func TestParseOperator(t *testing.T) {
	for _, op := range []Operator{Lower, LowerOrEqual, Equal, GreaterOrEqual, Greater, TextEqual, TextNotEqual, TextContains, Present, NotPresent} {
		got, err := ParseOperator(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}

	got, err := ParseOperator("==")
	require.NoError(t, err)
	assert.Equal(t, Equal, got)

	got, err = ParseOperator("EQUALS")
	require.NoError(t, err)
	assert.Equal(t, TextEqual, got)

	_, err = ParseOperator("~=")
	assert.Error(t, err)
}

func TestType_Operators(t *testing.T) {
	assert.True(t, Integer.Supports(Greater))
	assert.True(t, Float.Supports(LowerOrEqual))
	assert.False(t, Text.Supports(Greater))
	assert.True(t, Text.Supports(TextContains))
	assert.True(t, Flag.Supports(NotPresent))
	assert.False(t, Flag.Supports(Equal))
	assert.False(t, Present.NeedsValue())
	assert.True(t, TextEqual.NeedsValue())
}
