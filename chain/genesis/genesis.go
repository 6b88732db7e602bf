// Package genesis loads the genesis allocation file and turns it into the
// Mint-like transactions ChainManager bootstraps the chain with (spec.md
// §6 "Genesis block file").
package genesis

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/witnet-go/witnet/chain/primitives"
	"github.com/witnet-go/witnet/chain/txn"
)

// rawAllocation mirrors the genesis JSON file's inner allocation entries:
// {address: bech32, value: nanowits_string, timelock: u64_string}.
type rawAllocation struct {
	Address  string `json:"address"`
	Value    string `json:"value"`
	TimeLock string `json:"timelock"`
}

// rawFile mirrors {alloc: [[...], [...]]}: each inner array becomes one
// Mint-like transaction (spec.md §6).
type rawFile struct {
	Alloc [][]rawAllocation `json:"alloc"`
}

// Load parses a genesis file's JSON contents into one Mint transaction body
// per inner allocation array, each dated epoch 0.
func Load(data []byte) ([]txn.MintBody, error) {
	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "genesis: malformed JSON")
	}
	mints := make([]txn.MintBody, 0, len(raw.Alloc))
	for i, group := range raw.Alloc {
		outputs := make([]txn.ValueTransferOutput, 0, len(group))
		for j, a := range group {
			out, err := a.toOutput()
			if err != nil {
				return nil, errors.Wrapf(err, "genesis: alloc[%d][%d]", i, j)
			}
			outputs = append(outputs, out)
		}
		mints = append(mints, txn.MintBody{Epoch: 0, Outputs: outputs})
	}
	return mints, nil
}

func (a rawAllocation) toOutput() (txn.ValueTransferOutput, error) {
	pkh, _, err := primitives.PKHFromBech32(a.Address)
	if err != nil {
		return txn.ValueTransferOutput{}, errors.Wrap(err, "invalid address")
	}
	value, err := strconv.ParseUint(a.Value, 10, 64)
	if err != nil {
		return txn.ValueTransferOutput{}, errors.Wrap(err, "invalid value")
	}
	var timeLock uint64
	if a.TimeLock != "" {
		timeLock, err = strconv.ParseUint(a.TimeLock, 10, 64)
		if err != nil {
			return txn.ValueTransferOutput{}, errors.Wrap(err, "invalid timelock")
		}
	}
	return txn.ValueTransferOutput{PKH: pkh, Value: value, TimeLock: timeLock}, nil
}
