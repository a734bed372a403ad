package config

// Package config provides a reusable loader for rollup-core configuration
// files and environment variables. It is versioned so that applications
// can depend on a stable API contract.
//
// Version: v0.1.0

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/synnergy-labs/rollup-core/core"
	"github.com/synnergy-labs/rollup-core/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config represents the unified configuration for a rollup-core node. It
// mirrors the structure of the YAML files under config/.
type Config struct {
	Batch struct {
		MaxAccountsPerBatch    int `mapstructure:"max_accounts_per_batch" json:"max_accounts_per_batch"`
		MaxInputNotesPerBatch  int `mapstructure:"max_input_notes_per_batch" json:"max_input_notes_per_batch"`
		MaxOutputNotesPerBatch int `mapstructure:"max_output_notes_per_batch" json:"max_output_notes_per_batch"`
		NoteTreeDepth          int `mapstructure:"note_tree_depth" json:"note_tree_depth"`
	} `mapstructure:"batch" json:"batch"`

	Block struct {
		MaxAccountsPerBlock    int `mapstructure:"max_accounts_per_block" json:"max_accounts_per_block"`
		MaxInputNotesPerBlock  int `mapstructure:"max_input_notes_per_block" json:"max_input_notes_per_block"`
		MaxOutputNotesPerBlock int `mapstructure:"max_output_notes_per_block" json:"max_output_notes_per_block"`
		NoteTreeDepth          int `mapstructure:"note_tree_depth" json:"note_tree_depth"`
	} `mapstructure:"block" json:"block"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig, applied
// to the core package's active limits via core.SetLimits, and returned.
//
// The function uses the provided environment name to merge additional
// config files. If env is empty, only the default configuration is
// loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("config")
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	// Binds already-set process env vars to viper keys; it does not itself
	// read a .env file. Callers that want .env support load one with
	// godotenv before calling Load (see cmd/rollupctl/main.go).
	viper.AutomaticEnv()

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}

	applyLimits(&AppConfig)
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the ROLLUP_ENV environment
// variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("ROLLUP_ENV", ""))
}

// applyLimits pushes the loaded batch/block bounds into core's active
// limit set. Zero fields (unset in the config file) fall back to core's
// own defaults rather than disabling the corresponding check.
func applyLimits(c *Config) {
	core.SetLimits(core.Limits{
		MaxAccountsPerBatch:    c.Batch.MaxAccountsPerBatch,
		MaxInputNotesPerBatch:  c.Batch.MaxInputNotesPerBatch,
		MaxOutputNotesPerBatch: c.Batch.MaxOutputNotesPerBatch,
		BatchNoteTreeDepth:     c.Batch.NoteTreeDepth,
		MaxAccountsPerBlock:    c.Block.MaxAccountsPerBlock,
		MaxInputNotesPerBlock:  c.Block.MaxInputNotesPerBlock,
		MaxOutputNotesPerBlock: c.Block.MaxOutputNotesPerBlock,
		BlockNoteTreeDepth:     c.Block.NoteTreeDepth,
	})
}
