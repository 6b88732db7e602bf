package validators

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/witnet-go/witnet/chain/primitives"
	"github.com/witnet-go/witnet/chain/txn"
)

func TestCanConsumeMatrix(t *testing.T) {
	require.True(t, CanConsume(RoleValueTransfer, txn.KindCommit, 0))
	require.True(t, CanConsume(RoleValueTransfer, txn.KindTally, 0))
	require.True(t, CanConsume(RoleDataRequest, txn.KindCommit, 0))
	require.False(t, CanConsume(RoleDataRequest, txn.KindReveal, 0))
	require.True(t, CanConsume(RoleCommit, txn.KindReveal, 0))
	require.True(t, CanConsume(RoleCommit, txn.KindTally, 0))
	require.False(t, CanConsume(RoleCommit, txn.KindValueTransfer, 0))
	require.True(t, CanConsume(RoleReveal, txn.KindValueTransfer, 0))
	require.False(t, CanConsume(RoleReveal, txn.KindCommit, 0))
	require.True(t, CanConsume(RoleTally, txn.KindMint, 0))
}

// TestCanConsumeDataRequestOnlyAtMatchingIndex reproduces spec.md §4.6's
// "DR-out → commit-out only (and only at matching indices)": a Commit
// transaction may spend a DataRequest transaction's true DR-out (index 0)
// but not a later output of the same transaction, even though both carry
// RoleDataRequest classification-independent legality otherwise.
func TestCanConsumeDataRequestOnlyAtMatchingIndex(t *testing.T) {
	require.True(t, CanConsume(RoleDataRequest, txn.KindCommit, DataRequestOutputIndex))
	require.False(t, CanConsume(RoleDataRequest, txn.KindCommit, 1))
	require.False(t, CanConsume(RoleDataRequest, txn.KindCommit, 2))
}

func TestCountTallyOutputsFullPassCountsEveryRowEvenAfterFirstViolation(t *testing.T) {
	roles := []OutputRole{RoleValueTransfer, RoleTally, RoleValueTransfer, RoleTally, RoleValueTransfer}
	count, err := CountTallyOutputsFullPass(roles)
	require.Equal(t, 2, count)
	require.Error(t, err)
}

func TestCountTallyOutputsFullPassAllowsExactlyOne(t *testing.T) {
	roles := []OutputRole{RoleValueTransfer, RoleTally, RoleValueTransfer}
	count, err := CountTallyOutputsFullPass(roles)
	require.Equal(t, 1, count)
	require.NoError(t, err)
}

func TestValidateTrailingVTOSuffix(t *testing.T) {
	require.True(t, ValidateTrailingVTOSuffix([]OutputRole{RoleDataRequest, RoleValueTransfer, RoleValueTransfer}))
	require.True(t, ValidateTrailingVTOSuffix([]OutputRole{RoleValueTransfer, RoleValueTransfer}))
	require.True(t, ValidateTrailingVTOSuffix(nil))
	require.False(t, ValidateTrailingVTOSuffix([]OutputRole{RoleValueTransfer, RoleDataRequest}))
	require.False(t, ValidateTrailingVTOSuffix([]OutputRole{RoleValueTransfer, RoleDataRequest, RoleValueTransfer}))
}

type fakeResolver struct {
	outputs map[primitives.OutputPointer]txn.ValueTransferOutput
	roles   map[primitives.OutputPointer]OutputRole
}

func (f fakeResolver) Resolve(op primitives.OutputPointer) (txn.ValueTransferOutput, OutputRole, bool) {
	out, ok := f.outputs[op]
	if !ok {
		return txn.ValueTransferOutput{}, 0, false
	}
	return out, f.roles[op], true
}

func op(idx byte) primitives.OutputPointer {
	return primitives.OutputPointer{TransactionID: primitives.SHA256([]byte{idx}), OutputIndex: 0}
}

func opIndex(idx byte, outputIndex uint32) primitives.OutputPointer {
	return primitives.OutputPointer{TransactionID: primitives.SHA256([]byte{idx}), OutputIndex: outputIndex}
}

func TestAddTransactionRejectsUnknownInput(t *testing.T) {
	tx := txn.Transaction{
		Kind: txn.KindValueTransfer,
		ValueTransfer: &txn.ValueTransferBody{
			Inputs:  []primitives.OutputPointer{op(1)},
			Outputs: []txn.ValueTransferOutput{{Value: 10}},
		},
	}
	_, err := AddTransaction(tx, fakeResolver{}, 0)
	require.Error(t, err)
}

func TestAddTransactionRejectsIllegalRole(t *testing.T) {
	spent := op(1)
	resolver := fakeResolver{
		outputs: map[primitives.OutputPointer]txn.ValueTransferOutput{spent: {Value: 100}},
		roles:   map[primitives.OutputPointer]OutputRole{spent: RoleReveal},
	}
	tx := txn.Transaction{
		Kind: txn.KindCommit,
		Commit: &txn.CommitBody{
			CollateralIns: []primitives.OutputPointer{spent},
		},
	}
	_, err := AddTransaction(tx, resolver, 0)
	require.Error(t, err)
}

// TestAddTransactionRejectsDataRequestOutputAtWrongIndex covers spec.md
// §4.6's "DR-out → commit-out only (and only at matching indices)" at the
// AddTransaction level: a Commit transaction spending output index 1 of a
// DataRequest transaction (the trailing VT change, not the DR-out itself)
// must be rejected even though RoleDataRequest is otherwise a legal
// Commit-consumer.
func TestAddTransactionRejectsDataRequestOutputAtWrongIndex(t *testing.T) {
	spent := opIndex(1, 1)
	resolver := fakeResolver{
		outputs: map[primitives.OutputPointer]txn.ValueTransferOutput{spent: {Value: 100}},
		roles:   map[primitives.OutputPointer]OutputRole{spent: RoleDataRequest},
	}
	tx := txn.Transaction{
		Kind: txn.KindCommit,
		Commit: &txn.CommitBody{
			CollateralIns: []primitives.OutputPointer{spent},
		},
	}
	_, err := AddTransaction(tx, resolver, 0)
	require.Error(t, err)
}

// TestAddTransactionAcceptsDataRequestOutputAtMatchingIndex is the
// companion positive case: output index 0 (the true DR-out) is a legal
// Commit input.
func TestAddTransactionAcceptsDataRequestOutputAtMatchingIndex(t *testing.T) {
	spent := opIndex(1, 0)
	resolver := fakeResolver{
		outputs: map[primitives.OutputPointer]txn.ValueTransferOutput{spent: {Value: 100}},
		roles:   map[primitives.OutputPointer]OutputRole{spent: RoleDataRequest},
	}
	tx := txn.Transaction{
		Kind: txn.KindCommit,
		Commit: &txn.CommitBody{
			CollateralIns: []primitives.OutputPointer{spent},
		},
	}
	_, err := AddTransaction(tx, resolver, 0)
	require.NoError(t, err)
}

func TestAddTransactionComputesFee(t *testing.T) {
	spent := op(1)
	resolver := fakeResolver{
		outputs: map[primitives.OutputPointer]txn.ValueTransferOutput{spent: {Value: 100}},
		roles:   map[primitives.OutputPointer]OutputRole{spent: RoleValueTransfer},
	}
	tx := txn.Transaction{
		Kind: txn.KindValueTransfer,
		ValueTransfer: &txn.ValueTransferBody{
			Inputs:  []primitives.OutputPointer{spent},
			Outputs: []txn.ValueTransferOutput{{Value: 90}},
		},
	}
	fee, err := AddTransaction(tx, resolver, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(10), fee)
}

func TestAddTransactionRejectsInsufficientFee(t *testing.T) {
	spent := op(1)
	resolver := fakeResolver{
		outputs: map[primitives.OutputPointer]txn.ValueTransferOutput{spent: {Value: 100}},
		roles:   map[primitives.OutputPointer]OutputRole{spent: RoleValueTransfer},
	}
	tx := txn.Transaction{
		Kind: txn.KindValueTransfer,
		ValueTransfer: &txn.ValueTransferBody{
			Inputs:  []primitives.OutputPointer{spent},
			Outputs: []txn.ValueTransferOutput{{Value: 100}},
		},
	}
	_, err := AddTransaction(tx, resolver, 0)
	require.Error(t, err)
}

func TestAddTransactionRejectsTimeLockedInput(t *testing.T) {
	spent := op(1)
	resolver := fakeResolver{
		outputs: map[primitives.OutputPointer]txn.ValueTransferOutput{spent: {Value: 100, TimeLock: 1000}},
		roles:   map[primitives.OutputPointer]OutputRole{spent: RoleValueTransfer},
	}
	tx := txn.Transaction{
		Kind: txn.KindValueTransfer,
		ValueTransfer: &txn.ValueTransferBody{
			Inputs:  []primitives.OutputPointer{spent},
			Outputs: []txn.ValueTransferOutput{{Value: 10}},
		},
	}
	_, err := AddTransaction(tx, resolver, 500)
	require.Error(t, err)
}
