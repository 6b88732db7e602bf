package chainmanager

import (
	"encoding/binary"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/witnet-go/witnet/chain/utxo"
	"github.com/witnet-go/witnet/storage"
)

// encodeUTXOEntry JSON-encodes a UTXO entry for storage under
// storage.PrefixUTXO; json.Marshal's error is discarded, so a failed
// encoding yields nil bytes.
func encodeUTXOEntry(e utxo.Entry) []byte {
	body, _ := json.Marshal(e)
	return body
}

// encodeChainInfo serializes ci as a 4-byte little-endian db_version prefix
// (storage.CurrentDBVersion) followed by its JSON encoding, matching the
// versioned-blob layout storage.MigrateChainStateBytes expects.
func encodeChainInfo(ci ChainInfo) ([]byte, error) {
	body, err := json.Marshal(ci)
	if err != nil {
		return nil, errors.Wrap(err, "chainmanager: encoding chain_info")
	}
	out := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(out[:4], storage.CurrentDBVersion)
	copy(out[4:], body)
	return out, nil
}

// decodeChainInfo runs data through any pending db_version migration, then
// decodes the resulting payload's JSON body.
func decodeChainInfo(data []byte) (ChainInfo, error) {
	migrated, err := storage.MigrateChainStateBytes(data)
	if err != nil {
		return ChainInfo{}, errors.Wrap(err, "chainmanager: migrating chain_info")
	}
	var ci ChainInfo
	if err := json.Unmarshal(migrated[4:], &ci); err != nil {
		return ChainInfo{}, errors.Wrap(err, "chainmanager: decoding chain_info")
	}
	return ci, nil
}
