// Package config loads node configuration from a TOML file with a flat
// WITNET_<SECTION>_<FIELD> environment overlay, per spec.md §6/§9. It is
// intentionally thin: config loading is an explicit external collaborator,
// not a core subsystem.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is the root configuration document consumed by the node's
// constructors (EpochManager, ChainManager, storage.Manager, p2p).
type Config struct {
	Environment string `toml:"environment"`

	Connections struct {
		ServerAddr          string `toml:"server_addr"`
		OutboundLimit       uint16 `toml:"outbound_limit"`
		InboundLimit        uint16 `toml:"inbound_limit"`
		HandshakeTimeoutSec uint32 `toml:"handshake_timeout_seconds"`
		IcePeriodSec        uint32 `toml:"ice_period_seconds"`
	} `toml:"connections"`

	Consensus struct {
		CheckpointZero      int64  `toml:"checkpoints_period_zero"`
		CheckpointsPeriod   uint32 `toml:"checkpoints_period"`
		SuperblockPeriod    uint32 `toml:"superblock_period"`
		MaxBlockWeight      uint32 `toml:"max_block_weight"`
		MinConsensusPercent uint8  `toml:"min_consensus_percentage"`
		MinDifficulty       uint32 `toml:"minimum_difficulty"`
		MiningReplication   uint32 `toml:"mining_replication_factor"`
		MiningBackupFactor  uint32 `toml:"mining_backup_factor"`
		MinStakeNanowits    uint64 `toml:"min_stake_nanowits"`
	} `toml:"consensus_constants"`

	Storage struct {
		DBPath string `toml:"db_path"`
	} `toml:"storage"`
}

// Load reads base from a TOML file at path and then applies any
// WITNET_<SECTION>_<FIELD> environment overrides found in the process
// environment, matching the flat-Envy convention described in spec.md §9.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.Wrapf(err, "decoding config file %q", path)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns the built-in defaults, used when no config file is given.
func Default() *Config {
	cfg := &Config{Environment: "mainnet"}
	cfg.Connections.OutboundLimit = 8
	cfg.Connections.InboundLimit = 128
	cfg.Connections.HandshakeTimeoutSec = 30
	cfg.Connections.IcePeriodSec = 600
	cfg.Consensus.CheckpointsPeriod = 45
	cfg.Consensus.SuperblockPeriod = 10
	cfg.Consensus.MaxBlockWeight = 1_000_000
	cfg.Consensus.MinConsensusPercent = 51
	cfg.Consensus.MinDifficulty = 2000
	cfg.Consensus.MiningReplication = 3
	cfg.Consensus.MiningBackupFactor = 4
	cfg.Consensus.MinStakeNanowits = 10_000_000_000
	cfg.Storage.DBPath = "witnet.db"
	return cfg
}

// applyEnvOverrides walks every WITNET_ prefixed environment variable and
// hands it to setByEnvPath, nested structs addressed as
// WITNET_<SECTION>_<FIELD> (case-insensitive).
func applyEnvOverrides(cfg *Config) {
	const prefix = "WITNET_"
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], prefix) {
			continue
		}
		key := strings.TrimPrefix(parts[0], prefix)
		setByEnvPath(cfg, strings.Split(key, "_"), parts[1])
	}
}

// setByEnvPath is a best-effort, reflection-free setter for six of the
// fields declared above: environment, connections server_addr,
// outbound_limit and inbound_limit, storage db_path and
// consensus_constants min_stake_nanowits. Every other path, including the
// remaining connections and consensus fields, is silently ignored (config
// loading is a collaborator boundary, not something the core validates
// strictly).
func setByEnvPath(cfg *Config, path []string, value string) {
	joined := strings.ToUpper(strings.Join(path, "_"))
	switch joined {
	case "ENVIRONMENT":
		cfg.Environment = value
	case "CONNECTIONS_SERVER_ADDR":
		cfg.Connections.ServerAddr = value
	case "CONNECTIONS_OUTBOUND_LIMIT":
		setUint16(&cfg.Connections.OutboundLimit, value)
	case "CONNECTIONS_INBOUND_LIMIT":
		setUint16(&cfg.Connections.InboundLimit, value)
	case "STORAGE_DB_PATH":
		cfg.Storage.DBPath = value
	case "CONSENSUS_CONSTANTS_MIN_STAKE_NANOWITS":
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			cfg.Consensus.MinStakeNanowits = v
		}
	}
}

func setUint16(dst *uint16, value string) {
	if v, err := strconv.ParseUint(value, 10, 16); err == nil {
		*dst = uint16(v)
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{environment=%s, db=%s}", c.Environment, c.Storage.DBPath)
}
