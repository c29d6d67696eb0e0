package config

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"strings"
)

// Config - Root of the YAML configuration
type Config struct {
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Sort       SortConfig       `yaml:"sort"`
	Log        LogConfig        `yaml:"log"`
}

// DictionaryConfig - Layout and policy of a dictionary
type DictionaryConfig struct {
	KeyType       string `yaml:"key_type"`      // numeric_signed, numeric_unsigned, char_array or null_terminated_string
	KeySize       int64  `yaml:"key_size"`      // Bytes per key
	ValueSize     int64  `yaml:"value_size"`    // Bytes per value
	Capacity      int64  `yaml:"capacity"`      // Fixed number of buckets
	WriteConcern  string `yaml:"write_concern"` // insert_unique or upsert
	HashAlgorithm string `yaml:"hash"`          // crc32 or xxhash
	MemoryLimit   int64  `yaml:"memory_limit"`  // Max bytes of the bucket array, 0 means no limit
}

// SortConfig - Layout of external sort input and the memory it may use
type SortConfig struct {
	PageSize    int64 `yaml:"page_size"`
	ValueSize   int64 `yaml:"value_size"`
	BufferBytes int64 `yaml:"buffer_bytes"`
}

// LogConfig - Logging output
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	Format string `yaml:"format"` // text or json
}

// Default - Returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Dictionary: DictionaryConfig{
			KeyType:       "numeric_signed",
			KeySize:       4,
			ValueSize:     4,
			Capacity:      256,
			WriteConcern:  "insert_unique",
			HashAlgorithm: "crc32",
		},
		Sort: SortConfig{
			PageSize:    512,
			ValueSize:   4,
			BufferBytes: 512,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load - Reads the configuration from a YAML file on top of the defaults.
// An empty path looks for configs/flashkv.yaml and flashkv.yaml and falls back to the defaults if neither exists.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		for _, p := range []string{"configs/flashkv.yaml", "flashkv.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				return cfg, parse(data, cfg)
			}
		}
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	return cfg, parse(data, cfg)
}

// Parse - Reads the configuration from YAML bytes on top of the defaults
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	return cfg, parse(data, cfg)
}

func parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	applyDefaults(cfg)
	return cfg.Validate()
}

func applyDefaults(cfg *Config) {
	d := Default()
	if cfg.Dictionary.KeyType == "" {
		cfg.Dictionary.KeyType = d.Dictionary.KeyType
	}
	if cfg.Dictionary.KeySize <= 0 {
		cfg.Dictionary.KeySize = d.Dictionary.KeySize
	}
	if cfg.Dictionary.ValueSize <= 0 {
		cfg.Dictionary.ValueSize = d.Dictionary.ValueSize
	}
	if cfg.Dictionary.Capacity <= 0 {
		cfg.Dictionary.Capacity = d.Dictionary.Capacity
	}
	if cfg.Dictionary.WriteConcern == "" {
		cfg.Dictionary.WriteConcern = d.Dictionary.WriteConcern
	}
	if cfg.Dictionary.HashAlgorithm == "" {
		cfg.Dictionary.HashAlgorithm = d.Dictionary.HashAlgorithm
	}
	if cfg.Sort.PageSize <= 0 {
		cfg.Sort.PageSize = d.Sort.PageSize
	}
	if cfg.Sort.ValueSize <= 0 {
		cfg.Sort.ValueSize = d.Sort.ValueSize
	}
	if cfg.Sort.BufferBytes <= 0 {
		cfg.Sort.BufferBytes = d.Sort.BufferBytes
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = d.Log.Format
	}
}

// Validate - Checks the enumerated settings
func (c *Config) Validate() error {
	switch strings.ToLower(c.Dictionary.KeyType) {
	case "numeric_signed", "numeric_unsigned", "char_array", "null_terminated_string":
	default:
		return fmt.Errorf("unknown key type %q", c.Dictionary.KeyType)
	}
	switch strings.ToLower(c.Dictionary.WriteConcern) {
	case "insert_unique", "upsert":
	default:
		return fmt.Errorf("unknown write concern %q", c.Dictionary.WriteConcern)
	}
	switch strings.ToLower(c.Dictionary.HashAlgorithm) {
	case "crc32", "xxhash":
	default:
		return fmt.Errorf("unknown hash algorithm %q", c.Dictionary.HashAlgorithm)
	}
	if c.Dictionary.MemoryLimit < 0 {
		return fmt.Errorf("memory limit must not be negative")
	}
	return nil
}
