package symbolic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOps_Rendering(t *testing.T) {
	var ops Ops

	sum, err := ops.Add("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "(a+b)", sum)

	diff, err := ops.Sub("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "(a-b)", diff)

	prod, err := ops.Mul("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "ab", prod)

	quot, err := ops.Div("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", quot)

	neg, err := ops.Neg("a")
	require.NoError(t, err)
	assert.Equal(t, "-a", neg)
}
