package radon

import "time"

// Stage identifies which of the three script stages produced a report
// (spec.md §4.3 "Stages").
type Stage uint8

// Stage values.
const (
	StageRetrieval Stage = iota
	StageAggregation
	StageTally
)

// CallInfo records one operator invocation for diagnostics, carried in
// ReportContext.
type CallInfo struct {
	ScriptIndex int
	CallIndex   int
	Operator    OpCode
	Args        []Value
}

// ReportContext carries the execution metadata spec.md §4.3 requires
// alongside a report's value: "start/completion time, stage, script index,
// call index, call operator, call args".
type ReportContext struct {
	Stage       Stage
	StartTime   time.Time
	CompleteTime time.Time
	Calls       []CallInfo
}

// RadonReport is the result of running a script: the final value, optional
// per-operator partial values, the execution context, and total running
// time (spec.md §4.3).
type RadonReport struct {
	Result        Value
	PartialResults []Value
	Context       ReportContext
}

// Duration returns the total running time recorded in the context.
func (r RadonReport) Duration() time.Duration {
	return r.Context.CompleteTime.Sub(r.Context.StartTime)
}
