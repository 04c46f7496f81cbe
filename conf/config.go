// Copyright 2022-2026 The Kortana Authors
// This file is part of the Kortana library.
//
// The Kortana library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The Kortana library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the Kortana library. If not, see <http://www.gnu.org/licenses/>.

// Package conf holds the node's static configuration: identity, logging,
// consensus parameters, and the knobs for the in-process storage/gossip
// reference implementations.
package conf

import (
	"time"

	"gopkg.in/yaml.v2"

	"github.com/kortanachain/kortana/params"
)

// NodeConfig describes this process's identity and data directory.
type NodeConfig struct {
	DataDir string `json:"data_dir" yaml:"data_dir"`
	Name    string `json:"name" yaml:"name"`
}

// ChainConfig carries every spec-enumerated protocol parameter a node
// needs at startup, defaulted from the params package's constants but
// overridable per-deployment (a testnet with a faster block time, a
// lower min validator stake, and so on) without recompiling.
type ChainConfig struct {
	ChainID                   uint64 `json:"chain_id" yaml:"chain_id"`
	BlockTimeSeconds          uint64 `json:"block_time_seconds" yaml:"block_time_seconds"`
	BlocksPerEpoch            uint64 `json:"blocks_per_epoch" yaml:"blocks_per_epoch"`
	InitialBlockReward        uint64 `json:"initial_block_reward" yaml:"initial_block_reward"`
	HalvingIntervalBlocks     uint64 `json:"halving_interval" yaml:"halving_interval"`
	HalvingPercentage         uint64 `json:"halving_percentage" yaml:"halving_percentage"`
	MinValidatorStake         uint64 `json:"min_validator_stake" yaml:"min_validator_stake"`
	ActiveValidatorCount      uint64 `json:"active_validator_count" yaml:"active_validator_count"`
	MinGasPrice               uint64 `json:"min_gas_price" yaml:"min_gas_price"`
	GasLimitPerBlock          uint64 `json:"gas_limit_per_block" yaml:"gas_limit_per_block"`
	GasLimitPerTx             uint64 `json:"gas_limit_per_tx" yaml:"gas_limit_per_tx"`
	MinGasPerTx               uint64 `json:"min_gas_per_tx" yaml:"min_gas_per_tx"`
	MempoolMaxSize            int    `json:"mempool_max_size" yaml:"mempool_max_size"`
	UnbondingPeriodBlocks     uint64 `json:"unbonding_period_blocks" yaml:"unbonding_period_blocks"`
	JailDurationSlots         uint64 `json:"jail_duration_slots" yaml:"jail_duration_slots"`
	MaxMissedBlocksBeforeJail uint64 `json:"max_missed_blocks_before_jail" yaml:"max_missed_blocks_before_jail"`
	SlashDoubleProposalBps    uint64 `json:"slash_double_proposal_bps" yaml:"slash_double_proposal_bps"`
	SlashEquivocationBps      uint64 `json:"slash_equivocation_bps" yaml:"slash_equivocation_bps"`
	SlashDowntimeBps          uint64 `json:"slash_downtime_bps" yaml:"slash_downtime_bps"`
	SlashByzantineBps         uint64 `json:"slash_byzantine_bps" yaml:"slash_byzantine_bps"`
	StakingContractAddress    [20]byte `json:"-" yaml:"-"`
}

// DefaultChainConfig mirrors the params package's compiled-in constants,
// the mainnet profile every other profile is a variation of.
func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		ChainID:                   params.ChainID,
		BlockTimeSeconds:          2,
		BlocksPerEpoch:            params.BlocksPerEpoch,
		InitialBlockReward:        params.InitialBlockReward,
		HalvingIntervalBlocks:     params.HalvingIntervalBlocks,
		HalvingPercentage:         params.HalvingPercentage,
		MinValidatorStake:         params.MinValidatorStake.Uint64(),
		ActiveValidatorCount:      uint64(params.ActiveValidatorCount),
		MinGasPrice:               params.MinGasPrice,
		GasLimitPerBlock:          30_000_000,
		GasLimitPerTx:             30_000_000,
		MinGasPerTx:               params.TxGasCall,
		MempoolMaxSize:            5000,
		UnbondingPeriodBlocks:     params.UnbondingPeriodBlocks,
		JailDurationSlots:         params.JailDurationSlots,
		MaxMissedBlocksBeforeJail: params.MaxMissedBlocksBeforeJail,
		SlashDoubleProposalBps:    params.SlashDoubleProposalBps,
		SlashEquivocationBps:      params.SlashEquivocationBps,
		SlashDowntimeBps:          params.SlashDowntimeBps,
		SlashByzantineBps:         params.SlashByzantineBps,
		StakingContractAddress:    params.StakingContractAddress,
	}
}

// MetricsConfig controls the Prometheus exporter.
type MetricsConfig struct {
	Enable  bool   `json:"enable" yaml:"enable"`
	Address string `json:"address" yaml:"address"`
}

// ConsensusConfig carries the stake-weighted BFT engine's tunables.
type ConsensusConfig struct {
	SlotDuration      time.Duration `json:"slot_duration" yaml:"slot_duration"`
	EpochLengthSlots  uint64        `json:"epoch_length_slots" yaml:"epoch_length_slots"`
	MinValidatorStake uint64        `json:"min_validator_stake" yaml:"min_validator_stake"`
	MaxActiveSet      int           `json:"max_active_set" yaml:"max_active_set"`
	UnbondingBlocks   uint64        `json:"unbonding_blocks" yaml:"unbonding_blocks"`
}

// DefaultConsensusConfig mirrors the original_source defaults.
func DefaultConsensusConfig() ConsensusConfig {
	return ConsensusConfig{
		SlotDuration:      400 * time.Millisecond,
		EpochLengthSlots:  432000,
		MinValidatorStake: 1_000_000,
		MaxActiveSet:      128,
		UnbondingBlocks:   50400,
	}
}

// MempoolConfig bounds the priority-queue mempool.
type MempoolConfig struct {
	MaxSize int `json:"max_size" yaml:"max_size"`
}

// Config is the full node configuration, assembled from a YAML file on disk
// with DefaultConfig supplying every field a caller omits.
type Config struct {
	NodeCfg      NodeConfig      `yaml:"node"`
	LoggerCfg    LoggerConfig    `yaml:"logger"`
	MetricsCfg   MetricsConfig   `yaml:"metrics"`
	ConsensusCfg ConsensusConfig `yaml:"consensus"`
	MempoolCfg   MempoolConfig   `yaml:"mempool"`
	ChainCfg     ChainConfig     `yaml:"chain"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		NodeCfg: NodeConfig{
			DataDir: "./data",
			Name:    "kortana",
		},
		LoggerCfg:    DefaultLoggerConfig(),
		MetricsCfg:   MetricsConfig{Enable: false, Address: "127.0.0.1:9090"},
		ConsensusCfg: DefaultConsensusConfig(),
		MempoolCfg:   MempoolConfig{MaxSize: 5000},
		ChainCfg:     DefaultChainConfig(),
	}
}

// LoadConfig reads and merges a YAML config file on top of DefaultConfig.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.LoggerCfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
