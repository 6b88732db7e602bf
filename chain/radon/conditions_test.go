package radon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTallyPreconditionZeroCommits(t *testing.T) {
	res := TallyPrecondition(nil, 0, 0.51)
	require.Equal(t, PreconditionInsufficientCommits, res.Kind)
}

func TestTallyPreconditionZeroReveals(t *testing.T) {
	res := TallyPrecondition(nil, 4, 0.51)
	require.Equal(t, PreconditionNoReveals, res.Kind)
}

// S1: majority values with one liar.
func TestTallyPreconditionS1MajorityOfValues(t *testing.T) {
	reveals := []Value{Integer(1), Integer(1), Integer(1), Float(1.0)}
	res := TallyPrecondition(reveals, 4, 0.70)
	require.Equal(t, PreconditionMajorityOfValues, res.Kind)
	require.Equal(t, []Value{Integer(1), Integer(1), Integer(1)}, res.Values)
	require.Equal(t, []bool{false, false, false, true}, res.Liars)
	require.Equal(t, []bool{false, false, false, false}, res.Errors)
}

// S2: majority of errors, same kind.
func TestTallyPreconditionS2MajorityOfErrors(t *testing.T) {
	reveals := []Value{
		FromError(NewError(ErrHTTPStatus, Integer(0))),
		FromError(NewError(ErrHTTPStatus, Integer(0))),
		FromError(NewError(ErrHTTPStatus, Integer(0))),
		Integer(1),
	}
	res := TallyPrecondition(reveals, 4, 0.70)
	require.Equal(t, PreconditionMajorityOfErrors, res.Kind)
	require.Equal(t, ErrHTTPStatus, res.ErrorsMode.Kind)
}

// S3: tie between Integer and Float buckets.
func TestTallyPreconditionS3ModeTie(t *testing.T) {
	reveals := []Value{Integer(1), Integer(1), Float(1.0), Float(1.0)}
	res := TallyPrecondition(reveals, 4, 0.49)
	require.Equal(t, PreconditionModeTie, res.Kind)
	require.Equal(t, 2, res.MaxCount)
	require.Equal(t, reveals, res.AllValues)
}

// P7 third bullet: 50% split with min_consensus=0.51.
func TestTallyPreconditionInsufficientConsensusOnFiftyFifty(t *testing.T) {
	reveals := []Value{Integer(1), Integer(1), Float(2.0), Float(2.0)}
	res := TallyPrecondition(reveals, 4, 0.51)
	require.Equal(t, PreconditionInsufficientConsensus, res.Kind)
	require.InDelta(t, 0.5, res.Achieved, 1e-9)
	require.InDelta(t, 0.51, res.Required, 1e-9)
}

func TestPostconditionRecountFallsBackToInsufficientConsensus(t *testing.T) {
	liars := []bool{false, false, true, true} // 50% agree
	ok, achieved := PostconditionRecount(liars, 4, 0.70)
	require.False(t, ok)
	require.InDelta(t, 0.5, achieved, 1e-9)

	allLiars, allErrs := AllLiarsAndErrors(4)
	for i := range allLiars {
		require.True(t, allLiars[i])
		require.True(t, allErrs[i])
	}
}
