package utxo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/witnet-go/witnet/chain/primitives"
	"github.com/witnet-go/witnet/chain/txn"
)

func makeOP(seed byte, idx uint32) primitives.OutputPointer {
	return primitives.OutputPointer{TransactionID: primitives.SHA256([]byte{seed}), OutputIndex: idx}
}

func TestInsertRejectsDuplicate(t *testing.T) {
	p := New()
	op := makeOP(1, 0)
	entry := Entry{Output: txn.ValueTransferOutput{Value: 100}}
	require.NoError(t, p.Insert(op, entry))
	require.Error(t, p.Insert(op, entry))
}

func TestRemoveRejectsAbsent(t *testing.T) {
	p := New()
	require.Error(t, p.Remove(makeOP(1, 0)))
}

func TestIterateByPKHReturnsExactSet(t *testing.T) {
	p := New()
	var pkhA, pkhB primitives.PublicKeyHash
	pkhA[0] = 0xAA
	pkhB[0] = 0xBB

	opA1 := makeOP(1, 0)
	opA2 := makeOP(2, 0)
	opB1 := makeOP(3, 0)

	require.NoError(t, p.Insert(opA1, Entry{Output: txn.ValueTransferOutput{PKH: pkhA, Value: 1}}))
	require.NoError(t, p.Insert(opA2, Entry{Output: txn.ValueTransferOutput{PKH: pkhA, Value: 2}}))
	require.NoError(t, p.Insert(opB1, Entry{Output: txn.ValueTransferOutput{PKH: pkhB, Value: 3}}))

	gotA := p.IterateByPKH(pkhA)
	require.ElementsMatch(t, []primitives.OutputPointer{opA1, opA2}, gotA)

	require.NoError(t, p.Remove(opA1))
	gotA = p.IterateByPKH(pkhA)
	require.ElementsMatch(t, []primitives.OutputPointer{opA2}, gotA)

	gotB := p.IterateByPKH(pkhB)
	require.ElementsMatch(t, []primitives.OutputPointer{opB1}, gotB)
}

func TestTakeDiffResetsAccumulator(t *testing.T) {
	p := New()
	op := makeOP(9, 0)
	require.NoError(t, p.Insert(op, Entry{Output: txn.ValueTransferOutput{Value: 5}}))

	diff := p.TakeDiff()
	require.Len(t, diff.Inserted, 1)
	require.Empty(t, diff.Removed)

	diff2 := p.TakeDiff()
	require.Empty(t, diff2.Inserted)
	require.Empty(t, diff2.Removed)
}

func TestTotalValue(t *testing.T) {
	p := New()
	require.NoError(t, p.Insert(makeOP(1, 0), Entry{Output: txn.ValueTransferOutput{Value: 10}}))
	require.NoError(t, p.Insert(makeOP(2, 0), Entry{Output: txn.ValueTransferOutput{Value: 20}}))
	require.Equal(t, uint64(30), p.TotalValue())
}
