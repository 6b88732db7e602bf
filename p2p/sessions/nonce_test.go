package sessions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateNoncesAreRecordedAndUnique(t *testing.T) {
	tr := NewNonceTracker()
	a := tr.Generate()
	b := tr.Generate()
	require.NotEqual(t, a, b)
	require.True(t, tr.IsSelfConnect(a))
	require.True(t, tr.IsSelfConnect(b))
}

func TestIsSelfConnectFalseForUnknownNonce(t *testing.T) {
	tr := NewNonceTracker()
	tr.Generate()
	require.False(t, tr.IsSelfConnect(999999))
}
