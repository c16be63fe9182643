package calculator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in   string
		want Operation
	}{
		{in: "1", want: OperationAdd},
		{in: "4", want: OperationDivide},
		{in: "0", want: OperationUnspecified},
		{in: "OPERATION_SUBTRACT", want: OperationSubtract},
		{in: "multiply", want: OperationMultiply},
		{in: " Divide ", want: OperationDivide},
		{in: "+", want: OperationAdd},
		{in: "-", want: OperationSubtract},
		{in: "*", want: OperationMultiply},
		{in: "×", want: OperationMultiply},
		{in: "/", want: OperationDivide},
		{in: "÷", want: OperationDivide},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseOperation(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseOperationRejectsValuesOutsideTheSet(t *testing.T) {
	for _, in := range []string{"", "5", "-1", "modulo", "OPERATION_POW", "%", "1.5"} {
		t.Run(in, func(t *testing.T) {
			got, err := ParseOperation(in)
			assert.Error(t, err)
			assert.Equal(t, OperationUnspecified, got)
		})
	}
}

func TestOperationValidStringSymbol(t *testing.T) {
	assert.True(t, OperationUnspecified.Valid())
	assert.True(t, OperationDivide.Valid())
	assert.False(t, Operation(5).Valid())
	assert.False(t, Operation(-1).Valid())

	assert.Equal(t, "OPERATION_ADD", OperationAdd.String())
	assert.Equal(t, "OPERATION(9)", Operation(9).String())

	assert.Equal(t, "+", OperationAdd.Symbol())
	assert.Equal(t, "×", OperationMultiply.Symbol())
	assert.Equal(t, "", OperationUnspecified.Symbol())
}

func TestOperationJSON(t *testing.T) {
	var v struct {
		Op Operation `json:"op"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"op":3}`), &v))
	assert.Equal(t, OperationMultiply, v.Op)

	require.NoError(t, json.Unmarshal([]byte(`{"op":"OPERATION_DIVIDE"}`), &v))
	assert.Equal(t, OperationDivide, v.Op)

	require.NoError(t, json.Unmarshal([]byte(`{"op":42}`), &v))
	assert.Equal(t, Operation(42), v.Op)
	assert.False(t, v.Op.Valid())

	assert.Error(t, json.Unmarshal([]byte(`{"op":"pow"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"op":true}`), &v))

	out, err := json.Marshal(struct {
		Op Operation `json:"op"`
	}{OperationSubtract})
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":2}`, string(out))
}
