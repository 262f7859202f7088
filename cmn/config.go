// Package cmn provides common configuration and constants for all fgfs packages
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/NVIDIA/fgfs/cmn/cos"
	"github.com/NVIDIA/fgfs/cmn/nlog"
	"gopkg.in/yaml.v3"
)

const (
	// number of processes that a single file server is assumed to sustain
	// before it saturates
	DefaultThresholdToSaturate = 64

	// default signature algorithm (see package sig)
	DefaultSignature = "md5"

	AlgoBloomFilter = "bloomfilter"
	AlgoExact       = "exact"
	AlgoSampling    = "sampling"
	AlgoHierSplit   = "hier_commsplit"

	EnvVerbose = "FGFS_VERBOSE"
)

//
// CONFIGURATION
//

type (
	Config struct {
		Triage    TriageConf    `json:"triage" yaml:"triage"`
		Grouping  GroupingConf  `json:"grouping" yaml:"grouping"`
		Signature SignatureConf `json:"signature" yaml:"signature"`
		Log       LogConf       `json:"log" yaml:"log"`
		Tracing   TracingConf   `json:"tracing" yaml:"tracing"`
	}

	TriageConf struct {
		// hi/lo cutoff = nprocs / ThresholdToSaturate
		ThresholdToSaturate int `json:"threshold_to_saturate" yaml:"threshold_to_saturate"`
		// upper bound on the number of distinct servers the Bloom filter is sized for (0: nprocs)
		MaxDegreeDistribution int    `json:"max_degree_distribution" yaml:"max_degree_distribution"`
		Algorithm             string `json:"algorithm" yaml:"algorithm"`
	}

	GroupingConf struct {
		// merge URIs naming the same server by symbolic name and by address
		EliminateAlias bool `json:"eliminate_alias" yaml:"eliminate_alias"`
	}

	SignatureConf struct {
		Type string `json:"type" yaml:"type"`
	}

	LogConf struct {
		Level    int  `json:"level" yaml:"level"` // verbosity
		ToStderr bool `json:"to_stderr" yaml:"to_stderr"`
	}

	TracingConf struct {
		ExporterEndpoint   string  `json:"exporter_endpoint" yaml:"exporter_endpoint"`
		ServiceName        string  `json:"service_name" yaml:"service_name"`
		SamplerProbability float64 `json:"sampler_probability" yaml:"sampler_probability"`
		Enabled            bool    `json:"enabled" yaml:"enabled"`
		Insecure           bool    `json:"insecure" yaml:"insecure"`
	}
)

func DefaultConfig() *Config {
	return &Config{
		Triage: TriageConf{
			ThresholdToSaturate: DefaultThresholdToSaturate,
			Algorithm:           AlgoBloomFilter,
		},
		Grouping:  GroupingConf{EliminateAlias: true},
		Signature: SignatureConf{Type: DefaultSignature},
		Tracing:   TracingConf{ServiceName: "fgfs", SamplerProbability: 1},
	}
}

// LoadConfig reads JSON or (by extension) YAML; missing fields keep their defaults
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, config)
	default:
		err = cos.JSON.Unmarshal(b, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", path, err)
	}
	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	if val := os.Getenv(EnvVerbose); val != "" {
		lvl, err := strconv.Atoi(val)
		if err != nil || lvl < 0 {
			return fmt.Errorf("invalid %s=%q", EnvVerbose, val)
		}
		c.Log.Level = lvl
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Triage.Validate(); err != nil {
		return err
	}
	if c.Signature.Type == "" {
		c.Signature.Type = DefaultSignature
	}
	if c.Log.Level < 0 {
		return fmt.Errorf("invalid log level %d", c.Log.Level)
	}
	return c.Tracing.Validate()
}

// Apply pushes logging settings to nlog
func (c *Config) Apply() error {
	if err := nlog.SetVerbosity(c.Log.Level); err != nil {
		return err
	}
	return nlog.SetToStderr(c.Log.ToStderr)
}

func (c *TriageConf) Validate() error {
	if c.ThresholdToSaturate <= 0 {
		return fmt.Errorf("invalid threshold_to_saturate %d (expecting positive)", c.ThresholdToSaturate)
	}
	if c.MaxDegreeDistribution < 0 {
		return fmt.Errorf("invalid max_degree_distribution %d", c.MaxDegreeDistribution)
	}
	switch c.Algorithm {
	case "":
		c.Algorithm = AlgoBloomFilter
	case AlgoBloomFilter, AlgoExact, AlgoSampling, AlgoHierSplit:
	default:
		return fmt.Errorf("unknown triage algorithm %q", c.Algorithm)
	}
	return nil
}

func (c *TracingConf) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ExporterEndpoint == "" {
		return fmt.Errorf("tracing enabled but exporter_endpoint is empty")
	}
	if c.SamplerProbability < 0 || c.SamplerProbability > 1 {
		return fmt.Errorf("invalid sampler_probability %v (expecting [0, 1])", c.SamplerProbability)
	}
	return nil
}
