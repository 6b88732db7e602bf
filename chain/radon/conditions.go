package radon

// PreconditionKind enumerates the possible outcomes of the tally
// precondition clause (spec.md §4.3 "Tally precondition clause").
type PreconditionKind uint8

// PreconditionKind values.
const (
	PreconditionInsufficientCommits PreconditionKind = iota
	PreconditionNoReveals
	PreconditionInsufficientConsensus
	PreconditionModeTie
	PreconditionMajorityOfErrors
	PreconditionMajorityOfValues
)

// PreconditionResult is the outcome of TallyPrecondition, carrying exactly
// the fields relevant to its Kind.
type PreconditionResult struct {
	Kind PreconditionKind

	// PreconditionInsufficientConsensus
	Achieved float64
	Required float64

	// PreconditionModeTie
	AllValues []Value
	MaxCount  int

	// PreconditionMajorityOfErrors
	ErrorsMode *Error

	// PreconditionMajorityOfValues
	Values []Value // reveals whose type matches the dominant bucket
	Liars  []bool  // per original reveal index
	Errors []bool  // per original reveal index
}

// TallyPrecondition implements spec.md §4.3's tally precondition clause and
// §8 P7/S1-S3.
func TallyPrecondition(reveals []Value, numCommits int, minConsensus float64) PreconditionResult {
	if numCommits == 0 {
		return PreconditionResult{Kind: PreconditionInsufficientCommits}
	}
	if len(reveals) == 0 {
		return PreconditionResult{Kind: PreconditionNoReveals}
	}

	type bucket struct {
		kind  Kind
		count int
	}
	counts := make(map[Kind]int)
	for _, r := range reveals {
		counts[r.Kind]++
	}

	maxFreq := 0
	for _, c := range counts {
		if c > maxFreq {
			maxFreq = c
		}
	}
	achieved := float64(maxFreq) / float64(numCommits)
	if achieved < minConsensus {
		return PreconditionResult{Kind: PreconditionInsufficientConsensus, Achieved: achieved, Required: minConsensus}
	}

	var dominant []bucket
	for k, c := range counts {
		if c == maxFreq {
			dominant = append(dominant, bucket{kind: k, count: c})
		}
	}
	if len(dominant) != 1 {
		return PreconditionResult{
			Kind:      PreconditionModeTie,
			AllValues: append([]Value{}, reveals...),
			MaxCount:  maxFreq,
		}
	}

	dominantKind := dominant[0].kind
	liars := make([]bool, len(reveals))
	errs := make([]bool, len(reveals))
	var dominantValues []Value
	for i, r := range reveals {
		liars[i] = r.Kind != dominantKind
		errs[i] = r.IsError()
		if r.Kind == dominantKind {
			dominantValues = append(dominantValues, r)
		}
	}

	if dominantKind == KindError {
		return errorModeResult(reveals, numCommits, minConsensus)
	}

	return PreconditionResult{
		Kind:   PreconditionMajorityOfValues,
		Values: dominantValues,
		Liars:  liars,
		Errors: errs,
	}
}

// errorModeResult runs the mode filter within the error bucket (spec.md
// §4.3 step 5), re-checking consensus at the precise-error-value level.
func errorModeResult(reveals []Value, numCommits int, minConsensus float64) PreconditionResult {
	var errorValues []Value
	for _, r := range reveals {
		if r.IsError() {
			errorValues = append(errorValues, r)
		}
	}

	type count struct {
		value Value
		n     int
	}
	var counts []count
	for _, ev := range errorValues {
		found := false
		for i := range counts {
			if counts[i].value.Error.Equal(ev.Error) {
				counts[i].n++
				found = true
				break
			}
		}
		if !found {
			counts = append(counts, count{value: ev, n: 1})
		}
	}

	best := counts[0]
	for _, c := range counts[1:] {
		if c.n > best.n {
			best = c
		}
	}

	achieved := float64(best.n) / float64(numCommits)
	if achieved < minConsensus {
		return PreconditionResult{Kind: PreconditionInsufficientConsensus, Achieved: achieved, Required: minConsensus}
	}
	return PreconditionResult{Kind: PreconditionMajorityOfErrors, ErrorsMode: best.value.Error}
}

// PostconditionRecount re-evaluates the consensus ratio after the tally
// script has executed, per spec.md §4.3 "Post-condition": it reports
// ok=false when fewer than minConsensus of numCommits agree with the tally's
// own notion of the winning value (tracked via liars). It only computes the
// ratio; the collapse to InsufficientConsensus with every revealer marked
// both liar and error (AllLiarsAndErrors) is not performed here.
func PostconditionRecount(liars []bool, numCommits int, minConsensus float64) (ok bool, achieved float64) {
	agree := 0
	for _, liar := range liars {
		if !liar {
			agree++
		}
	}
	achieved = float64(agree) / float64(numCommits)
	return achieved >= minConsensus, achieved
}

// AllLiarsAndErrors returns liars/errors slices of length n with every
// element set to true, the post-condition's "mark all revealers as both
// error and liar" fallback.
func AllLiarsAndErrors(n int) (liars, errs []bool) {
	liars = make([]bool, n)
	errs = make([]bool, n)
	for i := range liars {
		liars[i] = true
		errs[i] = true
	}
	return liars, errs
}
