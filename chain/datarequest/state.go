// Package datarequest implements the DataRequestPool and the per-DR
// New→Commit→Reveal→Tally state machine (spec.md §4.4, I5).
package datarequest

import (
	"github.com/witnet-go/witnet/chain/primitives"
	"github.com/witnet-go/witnet/chain/txn"
)

// Stage is the current phase of a DataRequestState. "New" is not a Stage
// value: a DR enters the pool already in StageCommit, since the next block
// after acceptance immediately begins collecting commits (spec.md §4.4).
type Stage uint8

// Stage values.
const (
	StageCommit Stage = iota
	StageReveal
	StageTally
)

func (s Stage) String() string {
	switch s {
	case StageCommit:
		return "Commit"
	case StageReveal:
		return "Reveal"
	case StageTally:
		return "Tally"
	default:
		return "Unknown"
	}
}

// FailureKind records why a DR's tally, if any, closed without a normal
// majority result (spec.md §4.4 "Failure semantics").
type FailureKind uint8

// FailureKind values. FailureNone means the DR reached tally normally.
const (
	FailureNone FailureKind = iota
	FailureInsufficientCommits
	FailureNoReveals
)

// CommitEntry is one accepted commit transaction for a DR.
type CommitEntry struct {
	PKH           primitives.PublicKeyHash
	CommitHash    primitives.Hash
	VRFProof      []byte
	CollateralIns []primitives.OutputPointer
}

// RevealEntry is one accepted reveal transaction for a DR.
type RevealEntry struct {
	PKH    primitives.PublicKeyHash
	Reveal []byte // CBOR-encoded RadonTypes value
	Salt   []byte
}

// DataRequestInfo accumulates the commits/reveals collected for a DR and,
// once built, its tally body (spec.md §3 "DataRequestState.info").
type DataRequestInfo struct {
	Commits []CommitEntry
	Reveals []RevealEntry
	Tally   *txn.TallyBody
}

// DataRequestState is the per-DR record tracked by Pool, mirroring spec.md
// §3's DataRequestState: "{data_request, pkh, epoch, stage, info,
// backup_witnesses, current_reveal_round}".
type DataRequestState struct {
	DRPointer       primitives.Hash
	DR              txn.DataRequestOutput
	OriginatorPKH   primitives.PublicKeyHash
	Epoch           primitives.Epoch
	Stage           Stage
	Info            DataRequestInfo
	BackupWitnesses uint16
	CommitRound     int
	RevealRound     int
	Failure         FailureKind
}

// maxCommitRounds is N = witnesses + backup_witnesses (spec.md §4.4).
func (s *DataRequestState) maxCommitRounds() int {
	return int(s.DR.Witnesses) + int(s.BackupWitnesses)
}

// maxRevealRounds bounds the reveal collection window. spec.md names "up to
// M reveal rounds" without pinning M; we use the same witnesses+backup bound
// as the commit stage, since a revealer set no larger than the commit
// round's admission bound ever needs more rounds to finish revealing
// (documented as an Open Question resolution in DESIGN.md).
func (s *DataRequestState) maxRevealRounds() int {
	return s.maxCommitRounds()
}
