// Package validators implements the consensus-critical block/transaction
// validation rules of spec.md §4.6: the per-role input→output legality
// matrix, the trailing-VTO-suffix rule, and mempool admission, including
// the REDESIGN FLAG fix that makes matrix checks a full pass over every
// row instead of a short-circuited take_while.
package validators

import "github.com/witnet-go/witnet/chain/txn"

// OutputRole classifies the kind of transaction that produced an output,
// used by the legality matrix to decide which transaction kinds may spend
// it (spec.md §4.6 "Per-role input→output legality matrix").
type OutputRole uint8

// OutputRole values.
const (
	RoleValueTransfer OutputRole = iota
	RoleDataRequest
	RoleCommit
	RoleReveal
	RoleTally
)

func (r OutputRole) String() string {
	switch r {
	case RoleValueTransfer:
		return "VT-out"
	case RoleDataRequest:
		return "DR-out"
	case RoleCommit:
		return "Commit-out"
	case RoleReveal:
		return "Reveal-out"
	case RoleTally:
		return "Tally-out"
	default:
		return "Unknown"
	}
}

// legalConsumers lists, for each output role, the transaction kinds legally
// allowed to spend it (spec.md §4.6):
//
//	VT-out     → any role
//	DR-out     → commit-out only (and only at matching indices)
//	Commit-out → reveal/tally
//	Reveal-out → VT-out only, and exactly one Tally output must exist in
//	             the same tx
//	Tally-out  → any role
//
// The map holds only the consumer kinds; CanConsume does not check the
// Tally-output clause of the Reveal-out row.
var legalConsumers = map[OutputRole]map[txn.Kind]bool{
	RoleValueTransfer: {
		txn.KindValueTransfer: true, txn.KindDataRequest: true, txn.KindCommit: true,
		txn.KindReveal: true, txn.KindTally: true, txn.KindMint: true,
	},
	RoleDataRequest: {
		txn.KindCommit: true,
	},
	RoleCommit: {
		txn.KindReveal: true, txn.KindTally: true,
	},
	RoleReveal: {
		txn.KindValueTransfer: true,
	},
	RoleTally: {
		txn.KindValueTransfer: true, txn.KindDataRequest: true, txn.KindCommit: true,
		txn.KindReveal: true, txn.KindTally: true, txn.KindMint: true,
	},
}

// DataRequestOutputIndex is the only output index of a DataRequest
// transaction that carries the DR-out role: a DataRequest transaction body
// embeds exactly one DataRequestOutput (spec.md §3 "Embedded in a
// DataRequest transaction body"), always at index 0, with any subsequent
// outputs being ordinary VT-out change. Spending output index 1+ of a
// DataRequest transaction as though it were the DR-out is illegal even
// though a Commit transaction is otherwise a legal DR-out consumer
// (spec.md §4.6 "DR-out → commit-out only (and only at matching indices)").
const DataRequestOutputIndex = 0

// CanConsume reports whether a transaction of kind consumer may legally
// spend, at outputIndex, an output of the given role (spec.md §4.6
// "Per-role input→output legality matrix"). outputIndex is the spent
// output's own index within its source transaction (the second half of its
// OutputPointer) — for RoleDataRequest it must equal
// DataRequestOutputIndex, the "(and only at matching indices)" clause of
// the DR-out row; every other role's legality is index-independent.
func CanConsume(role OutputRole, consumer txn.Kind, outputIndex uint32) bool {
	if !legalConsumers[role][consumer] {
		return false
	}
	if role == RoleDataRequest && outputIndex != DataRequestOutputIndex {
		return false
	}
	return true
}
