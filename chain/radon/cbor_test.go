package radon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, v Value) Value {
	t.Helper()
	encoded := Encode(v)
	decoded, n, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, len(encoded), n)
	return decoded
}

func TestCBORRoundTripScalars(t *testing.T) {
	require.True(t, Integer(42).Equal(roundTrip(t, Integer(42))))
	require.True(t, Integer(-42).Equal(roundTrip(t, Integer(-42))))
	require.True(t, Float(3.25).Equal(roundTrip(t, Float(3.25))))
	require.True(t, String("hello").Equal(roundTrip(t, String("hello"))))
	require.True(t, Bytes([]byte{1, 2, 3}).Equal(roundTrip(t, Bytes([]byte{1, 2, 3}))))
	require.True(t, Boolean(true).Equal(roundTrip(t, Boolean(true))))
	require.True(t, Boolean(false).Equal(roundTrip(t, Boolean(false))))
}

func TestCBORRoundTripArray(t *testing.T) {
	v := Arr(Integer(1), String("x"), Boolean(true))
	require.True(t, v.Equal(roundTrip(t, v)))
}

func TestCBORRoundTripLargeInteger(t *testing.T) {
	v := Integer(1 << 40)
	require.True(t, v.Equal(roundTrip(t, v)))
}

func TestCBORRoundTripRadonError(t *testing.T) {
	v := FromError(NewError(ErrHTTPStatus, Integer(404)))
	got := roundTrip(t, v)
	require.True(t, got.IsError())
	require.Equal(t, ErrHTTPStatus, got.Error.Kind)
	require.True(t, v.Equal(got))
}
