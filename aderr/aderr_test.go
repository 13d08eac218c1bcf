package aderr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestError_KindAndMessage(t *testing.T) {
	err := New(DimensionMismatch, "shapes %s and %s differ", "(2,2)", "(2,3)")
	assert.Equal(t, DimensionMismatch, err.Kind)
	assert.Contains(t, err.Error(), "dimension_mismatch")
	assert.Contains(t, err.Error(), "(2,2)")
}

func TestError_Wrap_Unwraps(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Internal, cause, "unexpected state")

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}

func TestError_Is_MatchesByKind(t *testing.T) {
	a := New(TapeSpent, "first")
	b := New(TapeSpent, "second")
	c := New(Internal, "third")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestError_GRPCStatus(t *testing.T) {
	err := New(MissingId, "value has no id")

	st := status.Convert(err)
	assert.Equal(t, codes.NotFound, st.Code())
}

func TestKind_String(t *testing.T) {
	cases := map[Kind]string{
		DimensionMismatch:    "dimension_mismatch",
		UnsupportedOperation: "unsupported_operation",
		MissingId:            "missing_id",
		TapeSpent:            "tape_spent",
		Internal:             "internal",
	}

	for k, want := range cases {
		assert.Equal(t, want, k.String())
	}
}
