package radon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModeTieIsError(t *testing.T) {
	_, err := Mode([]Value{Integer(1), Integer(2)})
	require.Error(t, err)
}

func TestModeMajority(t *testing.T) {
	v, err := Mode([]Value{Integer(1), Integer(1), Integer(2)})
	require.NoError(t, err)
	require.True(t, Integer(1).Equal(v))
}

func TestModeEmpty(t *testing.T) {
	_, err := Mode(nil)
	require.Error(t, err)
}

// P8: mean([1,2], RoundToInteger) == Integer(2)
func TestAverageMeanRoundsToInteger(t *testing.T) {
	v, err := AverageMean([]Value{Integer(1), Integer(2)}, RoundToInteger)
	require.NoError(t, err)
	require.True(t, Integer(2).Equal(v))
}

// P8: mean([1,2], ReturnFloat) == Float(1.5)
func TestAverageMeanReturnsFloat(t *testing.T) {
	v, err := AverageMean([]Value{Integer(1), Integer(2)}, ReturnFloat)
	require.NoError(t, err)
	require.True(t, Float(1.5).Equal(v))
}

// P8: median([]) == Err(ModeEmpty)
func TestAverageMedianEmpty(t *testing.T) {
	_, err := AverageMedian(nil, ReturnFloat)
	require.Error(t, err)
}

// P8: median([1,2,2]) == 2
func TestAverageMedianOdd(t *testing.T) {
	v, err := AverageMedian([]Value{Integer(1), Integer(2), Integer(2)}, RoundToInteger)
	require.NoError(t, err)
	require.True(t, Integer(2).Equal(v))
}

// P8: median([1,2]) == 1.5 (float) or 2 (integer, rounded)
func TestAverageMedianEvenFloat(t *testing.T) {
	v, err := AverageMedian([]Value{Integer(1), Integer(2)}, ReturnFloat)
	require.NoError(t, err)
	require.True(t, Float(1.5).Equal(v))
}

func TestAverageMedianEvenIntegerRounds(t *testing.T) {
	v, err := AverageMedian([]Value{Integer(1), Integer(2)}, RoundToInteger)
	require.NoError(t, err)
	require.True(t, Integer(2).Equal(v))
}

// P8: stddev([1,2]) == 0.5
func TestDeviationStandard(t *testing.T) {
	v, err := DeviationStandard([]Value{Integer(1), Integer(2)})
	require.NoError(t, err)
	require.InDelta(t, 0.5, v.Float, 1e-9)
}

func TestAverageMeanTransposesArrayOfArrays(t *testing.T) {
	arr := []Value{
		Arr(Integer(1), Integer(3)),
		Arr(Integer(3), Integer(5)),
	}
	v, err := AverageMean(arr, RoundToInteger)
	require.NoError(t, err)
	require.True(t, Arr(Integer(2), Integer(4)).Equal(v))
}

func TestAverageMeanDifferentSizeArraysFails(t *testing.T) {
	arr := []Value{
		Arr(Integer(1), Integer(2)),
		Arr(Integer(1)),
	}
	_, err := AverageMean(arr, RoundToInteger)
	require.Error(t, err)
}
