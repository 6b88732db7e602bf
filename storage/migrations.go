package storage

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// CurrentDBVersion is the db_version every value stored under
// PrefixChainInfo is expected to carry once Migrate has run (spec.md §9
// "migrations v0→v2→v3→v4→v5", grounded on
// original_source/node/src/storage_mngr/node_migrations.rs).
const CurrentDBVersion uint32 = 5

// readVersion reports the db_version a stored ChainInfo blob claims. Before
// versioning existed, the first byte was either 0 or 1 (an Option tag); that
// ambiguity is what pins v0 and v1 specifically to "no version prefix", per
// the original's check_chain_state_version.
func readVersion(data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, errors.New("storage: empty chain_info blob")
	}
	if data[0] == 0 || data[0] == 1 {
		return 0, nil
	}
	if len(data) < 4 {
		return 0, errors.New("storage: chain_info blob too short for a version prefix")
	}
	return binary.LittleEndian.Uint32(data[:4]), nil
}

func putVersion(data []byte, version uint32) {
	binary.LittleEndian.PutUint32(data[:4], version)
}

// migrateV0ToV2 prepends a version prefix and appends one placeholder byte
// standing in for the TAPI engine's default serialization the original adds
// in this step (original_source migrate_chain_state_v0_to_v2).
func migrateV0ToV2(data []byte) []byte {
	out := make([]byte, 4, 4+len(data)+1)
	putVersion(out, 2)
	out = append(out, data...)
	out = append(out, 0) // TapiEngine::default()
	return out
}

// migrateV2ToV3 only updates the version tag: v2 and v3 share the same byte
// layout, the difference (UTXOs moving out of ChainState into their own
// keys) is handled by ChainManager on bootstrap, not here
// (original_source migrate_chain_state_v2_to_v3).
func migrateV2ToV3(data []byte) []byte {
	out := append([]byte{}, data...)
	putVersion(out, 3)
	return out
}

// migrateV3ToV4 inserts a placeholder ProtocolInfo field after byte 4 and
// appends a placeholder StakesTracker field at the end
// (original_source migrate_chain_state_v3_to_v4).
func migrateV3ToV4(data []byte) []byte {
	if len(data) < 5 {
		out := make([]byte, 4)
		putVersion(out, 4)
		return out
	}
	out := make([]byte, 0, len(data)+2)
	out = append(out, data[:5]...)
	out = append(out, 0)            // ProtocolInfo::default()
	out = append(out, data[5:]...)
	out = append(out, 0)            // StakesTracker::default()
	putVersion(out, 4)
	return out
}

// migrateV4ToV5 removes the ProtocolInfo field v4 introduced
// (original_source migrate_chain_state_v4_to_v5).
func migrateV4ToV5(data []byte) []byte {
	if len(data) < 6 {
		out := make([]byte, 4)
		putVersion(out, 5)
		return out
	}
	out := make([]byte, 0, len(data)-1)
	out = append(out, data[:5]...)
	out = append(out, data[6:]...)
	putVersion(out, 5)
	return out
}

// MigrateChainStateBytes runs data through every migration step needed to
// reach CurrentDBVersion, erroring on an unrecognized or newer-than-known
// version (spec.md §9; P5 "storage migration monotonicity": db_version
// never decreases across a successful migration run).
func MigrateChainStateBytes(data []byte) ([]byte, error) {
	for {
		version, err := readVersion(data)
		if err != nil {
			return nil, err
		}
		switch version {
		case 0, 1:
			data = migrateV0ToV2(data)
		case 2:
			data = migrateV2ToV3(data)
		case 3:
			data = migrateV3ToV4(data)
		case 4:
			data = migrateV4ToV5(data)
		case CurrentDBVersion:
			return data, nil
		default:
			return nil, errors.Errorf("storage: chain_info db_version %d is not supported", version)
		}
	}
}

// Migrate reads the stored chain_info blob (if any), migrates it to
// CurrentDBVersion, and writes it back, run once at Open.
func Migrate(m Manager) error {
	data, err := m.Get(PrefixChainInfo)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	migrated, err := MigrateChainStateBytes(data)
	if err != nil {
		return err
	}
	return m.Put(PrefixChainInfo, migrated)
}
