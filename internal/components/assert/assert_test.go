package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssert(t *testing.T) {
	require.Panics(t, func() { NotNil(nil) })
	require.NotPanics(t, func() { NotNil(1) })

	require.Panics(t, func() { NotEmptyStr("") })
	require.NotPanics(t, func() { NotEmptyStr("ua") })

	require.Panics(t, func() { Positive(0) })
	require.Panics(t, func() { Positive(-1) })
	require.NotPanics(t, func() { Positive(8) })
}
