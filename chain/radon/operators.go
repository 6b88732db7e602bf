package radon

import "github.com/pkg/errors"

// OpCode identifies a single script operator. The concrete opcode space a
// full RAD interpreter supports is large (string/array/map/integer/float
// operators); this implementation carries the subset exercised by the
// reducer and tally-precondition machinery plus the stage-legality check
// spec.md §4.3 calls out as consensus-critical.
type OpCode uint8

// OpCode values.
const (
	OpIdentity OpCode = iota
	OpArrayMap
	OpArrayReduce
	OpArrayFilter
	OpArrayCount
	OpStringParseJSON
	OpMapGet
	OpIntegerAbsolute
	OpFloatRound
)

// ReducerCode identifies a reducer, used as an argument to OpArrayReduce.
type ReducerCode uint8

// ReducerCode values.
const (
	ReducerMode ReducerCode = iota
	ReducerAverageMean
	ReducerAverageMedian
	ReducerDeviationStandard
)

// tallyStageAllowed lists the operators that are legal inside a tally
// script. Everything else — in particular any operator that performs
// network I/O or non-deterministic RNG — is rejected, matching spec.md
// §4.3 "Must never call a non-tally operator".
var tallyStageAllowed = map[OpCode]bool{
	OpIdentity:        true,
	OpArrayMap:        true,
	OpArrayReduce:     true,
	OpArrayFilter:     true,
	OpArrayCount:      true,
	OpMapGet:          true,
	OpIntegerAbsolute: true,
	OpFloatRound:      true,
}

// CheckValidOperatorForTallyStage enforces that op may run during the tally
// stage (spec.md §4.3, §9 "Radon error discipline"). Retrieval-only
// operators (HTTP, RNG, JSON parsing of a freshly fetched document) are
// rejected outright rather than silently tolerated.
func CheckValidOperatorForTallyStage(op OpCode) error {
	if tallyStageAllowed[op] {
		return nil
	}
	return errors.Errorf("radon: operator %d is not valid in the tally stage", op)
}

// ApplyReducer runs the named reducer over arr.
func ApplyReducer(code ReducerCode, arr []Value, policy MeanReturnPolicy) (Value, error) {
	switch code {
	case ReducerMode:
		return Mode(arr)
	case ReducerAverageMean:
		return AverageMean(arr, policy)
	case ReducerAverageMedian:
		return AverageMedian(arr, policy)
	case ReducerDeviationStandard:
		return DeviationStandard(arr)
	default:
		return Value{}, errors.Errorf("radon: unsupported reducer %d (UnsupportedReducer)", code)
	}
}
