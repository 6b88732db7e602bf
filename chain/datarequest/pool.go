package datarequest

import (
	"bytes"
	"crypto/sha256"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/witnet-go/witnet/chain/primitives"
	"github.com/witnet-go/witnet/chain/radon"
	"github.com/witnet-go/witnet/chain/txn"
)

// CollateralChecker resolves the current value of a not-yet-spent output,
// used to validate that a commit's collateral inputs are unspent *at
// proposal time* against the candidate block's UTXO diff, not just the last
// consolidated UTXO set (SPEC_FULL §4.4, grounded in
// `data_structures/src/validations.rs`'s `current_active_wit` resolution).
type CollateralChecker interface {
	UnspentValue(op primitives.OutputPointer) (value uint64, ok bool)
}

// EligibilityChecker verifies that a VRF proof clears the RepPoE threshold
// for a commit (spec.md §4.4 commit validity rule (i), spec.md §4.5).
type EligibilityChecker interface {
	CheckCommitEligibility(pkh primitives.PublicKeyHash, vrfProof []byte, vrfInput []byte) bool
}

// Pool tracks every in-flight DataRequestState, keyed by the DataRequest
// transaction's id (spec.md §4.4 "DataRequestPool").
type Pool struct {
	mu    sync.Mutex
	byID  map[primitives.Hash]*DataRequestState
}

// New returns an empty Pool.
func New() *Pool {
	return &Pool{byID: make(map[primitives.Hash]*DataRequestState)}
}

// AddDataRequest admits a freshly-consolidated DataRequest transaction into
// the pool. It starts directly in StageCommit (spec.md §4.4 "New. Just
// accepted into a block. Next block advances to Commit"). originator is the
// PKH the DR's funding change (and any unclaimed witness_reward share) is
// returned to at tally time (spec.md §3 DataRequestState's "pkh" field);
// the caller resolves it from the DataRequest transaction's own funding
// input before admission.
func (p *Pool) AddDataRequest(id primitives.Hash, dr txn.DataRequestOutput, originator primitives.PublicKeyHash, epoch primitives.Epoch, backupWitnesses uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.byID[id]; exists {
		return errors.Errorf("datarequest: %s already in pool", id)
	}
	p.byID[id] = &DataRequestState{
		DRPointer:       id,
		DR:              dr,
		OriginatorPKH:   originator,
		Epoch:           epoch,
		Stage:           StageCommit,
		BackupWitnesses: backupWitnesses,
	}
	return nil
}

// Get returns the state for id, or ok=false if it is not tracked.
func (p *Pool) Get(id primitives.Hash) (DataRequestState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.byID[id]
	if !ok {
		return DataRequestState{}, false
	}
	return *s, true
}

// AddCommit validates and records a commit transaction against dr, applying
// the three commit validity rules of spec.md §4.4: (i) VRF eligibility,
// (ii) collateral equals DR.Collateral and is unspent at proposal time,
// (iii) no duplicate commit from the same PKH. Commit-hash/reveal matching
// (rule (iii) in spec.md's numbering) is checked later, in AddReveal, since
// the reveal is what it is checked against.
func (p *Pool) AddCommit(id primitives.Hash, entry CommitEntry, vrfInput []byte, elig EligibilityChecker, collat CollateralChecker) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.byID[id]
	if !ok {
		return errors.Errorf("datarequest: %s not in pool", id)
	}
	if s.Stage != StageCommit {
		return errors.Errorf("datarequest: %s is not in the commit stage", id)
	}
	for _, c := range s.Info.Commits {
		if c.PKH == entry.PKH {
			return errors.Errorf("datarequest: %s already committed to %s", entry.PKH, id)
		}
	}
	if elig != nil && !elig.CheckCommitEligibility(entry.PKH, entry.VRFProof, vrfInput) {
		return errors.Errorf("datarequest: commit from %s fails RepPoE eligibility", entry.PKH)
	}
	if collat != nil {
		var total uint64
		for _, op := range entry.CollateralIns {
			v, unspent := collat.UnspentValue(op)
			if !unspent {
				return errors.Errorf("datarequest: collateral input %s is not unspent at proposal time", op)
			}
			total += v
		}
		if total != s.DR.Collateral {
			return errors.Errorf("datarequest: collateral sum %d does not match required %d", total, s.DR.Collateral)
		}
	}
	s.Info.Commits = append(s.Info.Commits, entry)
	return nil
}

// CloseCommitRound advances the commit round counter and transitions to
// StageReveal once enough commits have accumulated, or to StageTally with
// FailureInsufficientCommits once the round budget is exhausted with zero
// commits (spec.md §4.4, §4.4 "Failure semantics").
//
// When more than Witnesses commits arrive, only the first Witnesses in PKH
// order are kept; the rest are reported back to the caller so their
// collateral can be refunded (spec.md §4.4 "Tie-breaks").
func (p *Pool) CloseCommitRound(id primitives.Hash) (refunded []CommitEntry, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.byID[id]
	if !ok {
		return nil, errors.Errorf("datarequest: %s not in pool", id)
	}
	if s.Stage != StageCommit {
		return nil, errors.Errorf("datarequest: %s is not in the commit stage", id)
	}
	if len(s.Info.Commits) >= int(s.DR.Witnesses) {
		sort.Slice(s.Info.Commits, func(i, j int) bool {
			return s.Info.Commits[i].PKH.Less(s.Info.Commits[j].PKH)
		})
		kept := s.Info.Commits[:s.DR.Witnesses]
		refunded = append(refunded, s.Info.Commits[s.DR.Witnesses:]...)
		s.Info.Commits = kept
		s.Stage = StageReveal
		return refunded, nil
	}
	s.CommitRound++
	if s.CommitRound >= s.maxCommitRounds() {
		if len(s.Info.Commits) == 0 {
			s.Stage = StageTally
			s.Failure = FailureInsufficientCommits
			return nil, nil
		}
		sort.Slice(s.Info.Commits, func(i, j int) bool {
			return s.Info.Commits[i].PKH.Less(s.Info.Commits[j].PKH)
		})
		s.Stage = StageReveal
	}
	return nil, nil
}

// AddReveal validates and records a reveal transaction: the revealer must
// have an accepted commit, and CommitHash must equal SHA256(reveal||salt)
// (spec.md §4.4 commit validity rule (iii)).
func (p *Pool) AddReveal(id primitives.Hash, entry RevealEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.byID[id]
	if !ok {
		return errors.Errorf("datarequest: %s not in pool", id)
	}
	if s.Stage != StageReveal {
		return errors.Errorf("datarequest: %s is not in the reveal stage", id)
	}
	var commit *CommitEntry
	for i := range s.Info.Commits {
		if s.Info.Commits[i].PKH == entry.PKH {
			commit = &s.Info.Commits[i]
			break
		}
	}
	if commit == nil {
		return errors.Errorf("datarequest: %s has no commit from %s", id, entry.PKH)
	}
	for _, r := range s.Info.Reveals {
		if r.PKH == entry.PKH {
			return errors.Errorf("datarequest: %s already revealed for %s", entry.PKH, id)
		}
	}
	want := sha256.Sum256(append(append([]byte{}, entry.Reveal...), entry.Salt...))
	if !bytes.Equal(want[:], commit.CommitHash[:]) {
		return errors.Errorf("datarequest: reveal from %s does not match its commit hash", entry.PKH)
	}
	s.Info.Reveals = append(s.Info.Reveals, entry)
	return nil
}

// CloseRevealRound advances the reveal round counter and transitions to
// StageTally once every committer has revealed, once the round budget is
// exhausted, or immediately with FailureNoReveals if nobody ever revealed.
func (p *Pool) CloseRevealRound(id primitives.Hash) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.byID[id]
	if !ok {
		return errors.Errorf("datarequest: %s not in pool", id)
	}
	if s.Stage != StageReveal {
		return errors.Errorf("datarequest: %s is not in the reveal stage", id)
	}
	if len(s.Info.Reveals) >= len(s.Info.Commits) {
		s.Stage = StageTally
		if len(s.Info.Reveals) == 0 {
			s.Failure = FailureNoReveals
		}
		return nil
	}
	s.RevealRound++
	if s.RevealRound >= s.maxRevealRounds() {
		s.Stage = StageTally
		if len(s.Info.Reveals) == 0 {
			s.Failure = FailureNoReveals
		}
	}
	return nil
}

// TallyBuild is the outcome of building a tally for a DR that reached
// StageTally normally (not via FailureInsufficientCommits/FailureNoReveals).
type TallyBuild struct {
	Result        radon.Value
	Precondition  radon.PreconditionResult
	SortedReveals []RevealEntry // sorted by PKH, spec.md §4.4 "Tie-breaks"
	Liars         []bool        // aligned with SortedReveals
	Errors        []bool        // aligned with SortedReveals
}

// BuildTally runs the tally precondition clause (spec.md §4.3) over the
// DR's reveals, sorted by PKH for byte-identical cross-node execution
// (spec.md §4.4 "Tie-breaks"). The caller is responsible for running the
// DR's tally RAD script over precondition.Values when Kind is
// MajorityOfValues; this only implements the pool-side bookkeeping, not
// script execution.
func (p *Pool) BuildTally(id primitives.Hash) (*TallyBuild, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.byID[id]
	if !ok {
		return nil, errors.Errorf("datarequest: %s not in pool", id)
	}
	if s.Stage != StageTally {
		return nil, errors.Errorf("datarequest: %s has not reached the tally stage", id)
	}
	sorted := append([]RevealEntry{}, s.Info.Reveals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PKH.Less(sorted[j].PKH) })

	values := make([]radon.Value, len(sorted))
	for i, r := range sorted {
		v, _, err := radon.Decode(r.Reveal)
		if err != nil {
			values[i] = radon.FromError(radon.NewError(radon.ErrUnhandledIntercept))
			continue
		}
		values[i] = v
	}

	minConsensus := float64(s.DR.MinConsensusPercent) / 100.0
	pre := radon.TallyPrecondition(values, int(s.DR.Witnesses), minConsensus)

	liars := make([]bool, len(sorted))
	errs := make([]bool, len(sorted))
	switch pre.Kind {
	case radon.PreconditionMajorityOfValues:
		copy(liars, pre.Liars)
		copy(errs, pre.Errors)
	case radon.PreconditionMajorityOfErrors:
		for i, v := range values {
			errs[i] = v.IsError()
			liars[i] = !(v.IsError() && v.Error.Equal(pre.ErrorsMode))
		}
	default:
		for i := range liars {
			liars[i] = true
			errs[i] = true
		}
	}

	return &TallyBuild{
		Result:        dominantResult(pre),
		Precondition:  pre,
		SortedReveals: sorted,
		Liars:         liars,
		Errors:        errs,
	}, nil
}

// dominantResult derives the tally's committed-to-chain value directly from
// the precondition outcome. For MajorityOfValues it returns the mode of
// precondition.Values (a ModeTie error if that mode is tied); it does not
// run the DR's own tally RAD script.
func dominantResult(pre radon.PreconditionResult) radon.Value {
	switch pre.Kind {
	case radon.PreconditionMajorityOfValues:
		if mode, err := radon.Mode(pre.Values); err == nil {
			return mode
		}
		return radon.FromError(radon.NewError(radon.ErrModeTie))
	case radon.PreconditionMajorityOfErrors:
		return radon.FromError(pre.ErrorsMode)
	case radon.PreconditionModeTie:
		return radon.FromError(radon.NewError(radon.ErrModeTie))
	case radon.PreconditionInsufficientConsensus:
		return radon.FromError(radon.NewError(radon.ErrInsufficientConsensus,
			radon.Float(pre.Achieved), radon.Float(pre.Required)))
	case radon.PreconditionInsufficientCommits:
		return radon.FromError(radon.NewError(radon.ErrInsufficientCommits))
	case radon.PreconditionNoReveals:
		return radon.FromError(radon.NewError(radon.ErrNoReveals))
	default:
		return radon.FromError(radon.NewError(radon.ErrUnhandledIntercept))
	}
}

// ComputeTallyOutputs distributes the DR's funds once the tally result is
// known, implementing spec.md §4.4's reward distribution: each honest
// revealer recovers its collateral plus its witness reward net of
// CommitAndRevealFee ("value/witnesses − commit_fee − reveal_fee", grounded
// in `calculate_commit_reward`/`calculate_reveal_reward` in
// `data_structures/src/validations.rs` — our DataRequestOutput folds the
// two fees into one CommitAndRevealFee field); out-of-consensus revealers
// (liars) have their collateral burned rather than refunded (documented as
// an Open Question resolution: spec.md names "burned or redistributed per
// fork rules" without pinning one; this implementation burns, the simpler
// and more conservative of the two). Each witness slot without a reveal
// (Witnesses minus the number of reveals) returns one reward share, net of
// CommitAndRevealFee like an honest revealer's, to the DR-originator as
// change (grounded in `calculate_tally_change`, same file).
func (p *Pool) ComputeTallyOutputs(id primitives.Hash, build *TallyBuild) (outputs []txn.ValueTransferOutput, outOfConsensus, errored []primitives.PublicKeyHash, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.byID[id]
	if !ok {
		return nil, nil, nil, errors.Errorf("datarequest: %s not in pool", id)
	}
	if s.Stage != StageTally {
		return nil, nil, nil, errors.Errorf("datarequest: %s has not reached the tally stage", id)
	}
	if s.Failure != FailureNone {
		return nil, nil, nil, nil
	}

	reward := s.DR.WitnessReward - s.DR.CommitAndRevealFee
	for i, r := range build.SortedReveals {
		if build.Errors[i] {
			errored = append(errored, r.PKH)
		}
		if build.Liars[i] {
			outOfConsensus = append(outOfConsensus, r.PKH)
			continue
		}
		outputs = append(outputs, txn.ValueTransferOutput{
			PKH:   r.PKH,
			Value: s.DR.Collateral + reward,
		})
	}

	if missing := int(s.DR.Witnesses) - len(build.SortedReveals); missing > 0 {
		outputs = append(outputs, txn.ValueTransferOutput{
			PKH:   s.OriginatorPKH,
			Value: reward * uint64(missing),
		})
	}

	s.Info.Tally = &txn.TallyBody{
		DRPointer:      id,
		Result:         radon.Encode(build.Result),
		Outputs:        outputs,
		OutOfConsensus: outOfConsensus,
		Error:          errored,
	}
	return outputs, outOfConsensus, errored, nil
}
