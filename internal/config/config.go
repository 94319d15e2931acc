// Package config loads masond's YAML configuration. Load starts from
// defaults, layers the file on top, applies MASON_* environment
// overrides for the secret-bearing fields, then normalizes and
// validates the result.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen   string       `yaml:"listen"`
	DataDir  string       `yaml:"data_dir"`
	RCON     RCONSpec     `yaml:"rcon"`
	Build    BuildSpec    `yaml:"build"`
	Analyzer AnalyzerSpec `yaml:"analyzer"`
	History  HistorySpec  `yaml:"history"`
	OpLog    OpLogSpec    `yaml:"oplog"`
	Archive  ArchiveSpec  `yaml:"archive"`
	Mirror   MirrorSpec   `yaml:"mirror"`
	Sites    SitesSpec    `yaml:"sites"`
	MCP      MCPSpec      `yaml:"mcp"`
}

type RCONSpec struct {
	Addr         string `yaml:"addr"`
	Password     string `yaml:"password"`
	OpsPerSecond int    `yaml:"ops_per_second"`
	DialTimeoutS int    `yaml:"dial_timeout_s"`
}

type BuildSpec struct {
	// Allocator origin and the gap kept between adjacent build sites.
	OriginX int `yaml:"origin_x"`
	OriginY int `yaml:"origin_y"`
	OriginZ int `yaml:"origin_z"`
	Spacing int `yaml:"spacing"`

	QueueDepth    int `yaml:"queue_depth"`
	MaxOps        int `yaml:"max_ops"`
	ProgressEvery int `yaml:"progress_every"`
}

type AnalyzerSpec struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	TimeoutS   int    `yaml:"timeout_s"`
	MaxRetries int    `yaml:"max_retries"`

	// Footprint hint sent with the description.
	Width int `yaml:"width"`
	Depth int `yaml:"depth"`
}

type HistorySpec struct {
	Path       string `yaml:"path"`
	Retain     int    `yaml:"retain"`
	QueueDepth int    `yaml:"queue_depth"`
}

type OpLogSpec struct {
	Dir string `yaml:"dir"`
}

type ArchiveSpec struct {
	Dir string `yaml:"dir"`
}

type MirrorSpec struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Prefix    string `yaml:"prefix"`
	Workers   int    `yaml:"workers"`
	Queue     int    `yaml:"queue"`
}

// Enabled reports whether the mirror subsystem should start at all.
func (m MirrorSpec) Enabled() bool {
	return m.Endpoint != "" && m.Bucket != ""
}

type SitesSpec struct {
	Path string `yaml:"path"`
}

type MCPSpec struct {
	Listen string `yaml:"listen"`
	Secret string `yaml:"secret"`
}

// envOverrides are the secret-bearing fields operators prefer to keep
// out of the config file. envconfig maps them under the MASON_ prefix.
type envOverrides struct {
	RconPassword    string `envconfig:"RCON_PASSWORD"`
	McpSecret       string `envconfig:"MCP_SECRET"`
	AnalyzerAPIKey  string `envconfig:"ANALYZER_API_KEY"`
	MirrorAccessKey string `envconfig:"MIRROR_ACCESS_KEY"`
	MirrorSecretKey string `envconfig:"MIRROR_SECRET_KEY"`
}

func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("masond.yaml: %w", err)
		}
	}
	var ov envOverrides
	if err := envconfig.Process("mason", &ov); err != nil {
		return cfg, fmt.Errorf("environment overrides: %w", err)
	}
	cfg.applyEnv(ov)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("masond.yaml: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Listen:  ":8775",
		DataDir: "data",
		RCON: RCONSpec{
			Addr:         "127.0.0.1:25575",
			OpsPerSecond: 20,
			DialTimeoutS: 5,
		},
		Build: BuildSpec{
			OriginX:       0,
			OriginY:       -60,
			OriginZ:       0,
			Spacing:       8,
			QueueDepth:    16,
			MaxOps:        20000,
			ProgressEvery: 25,
		},
		Analyzer: AnalyzerSpec{
			TimeoutS:   30,
			MaxRetries: 3,
			Width:      16,
			Depth:      16,
		},
		History: HistorySpec{
			Retain:     200,
			QueueDepth: 256,
		},
		Mirror: MirrorSpec{
			Region:  "auto",
			Workers: 2,
			Queue:   64,
		},
	}
}

func (c *Config) applyEnv(ov envOverrides) {
	if ov.RconPassword != "" {
		c.RCON.Password = ov.RconPassword
	}
	if ov.McpSecret != "" {
		c.MCP.Secret = ov.McpSecret
	}
	if ov.AnalyzerAPIKey != "" {
		c.Analyzer.APIKey = ov.AnalyzerAPIKey
	}
	if ov.MirrorAccessKey != "" {
		c.Mirror.AccessKey = ov.MirrorAccessKey
	}
	if ov.MirrorSecretKey != "" {
		c.Mirror.SecretKey = ov.MirrorSecretKey
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = ":8775"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "data"
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.DataDir, "mason.db")
	}
	if c.OpLog.Dir == "" {
		c.OpLog.Dir = filepath.Join(c.DataDir, "oplog")
	}
	if c.Archive.Dir == "" {
		c.Archive.Dir = filepath.Join(c.DataDir, "archive")
	}
	if c.Sites.Path == "" {
		c.Sites.Path = filepath.Join(c.DataDir, "sites.state")
	}

	c.RCON.OpsPerSecond = clamp(c.RCON.OpsPerSecond, 1, 100)
	if c.RCON.DialTimeoutS <= 0 {
		c.RCON.DialTimeoutS = 5
	}

	if c.Build.Spacing < 1 {
		c.Build.Spacing = 1
	}
	c.Build.QueueDepth = clamp(c.Build.QueueDepth, 1, 256)
	if c.Build.MaxOps <= 0 {
		c.Build.MaxOps = 20000
	}
	if c.Build.ProgressEvery < 1 {
		c.Build.ProgressEvery = 25
	}

	if c.Analyzer.TimeoutS <= 0 {
		c.Analyzer.TimeoutS = 30
	}
	c.Analyzer.MaxRetries = clamp(c.Analyzer.MaxRetries, 0, 10)
	if c.Analyzer.Width < 8 {
		c.Analyzer.Width = 16
	}
	if c.Analyzer.Depth < 8 {
		c.Analyzer.Depth = 16
	}

	if c.History.Retain < 10 {
		c.History.Retain = 10
	}
	c.History.QueueDepth = clamp(c.History.QueueDepth, 16, 4096)

	if c.Mirror.Region == "" {
		c.Mirror.Region = "auto"
	}
	c.Mirror.Workers = clamp(c.Mirror.Workers, 1, 8)
	c.Mirror.Queue = clamp(c.Mirror.Queue, 8, 1024)
	c.Mirror.Prefix = strings.Trim(c.Mirror.Prefix, "/")
}

func (c Config) Validate() error {
	if c.RCON.Addr != "" && !strings.Contains(c.RCON.Addr, ":") {
		return fmt.Errorf("rcon.addr %q needs host:port", c.RCON.Addr)
	}
	if c.Analyzer.Endpoint != "" &&
		!strings.HasPrefix(c.Analyzer.Endpoint, "http://") &&
		!strings.HasPrefix(c.Analyzer.Endpoint, "https://") {
		return fmt.Errorf("analyzer.endpoint %q must be an http(s) URL", c.Analyzer.Endpoint)
	}
	if (c.Mirror.Endpoint == "") != (c.Mirror.Bucket == "") {
		return fmt.Errorf("mirror: endpoint and bucket must both be set")
	}
	if c.Mirror.Enabled() && (c.Mirror.AccessKey == "" || c.Mirror.SecretKey == "") {
		return fmt.Errorf("mirror: access_key and secret_key required")
	}
	if c.MCP.Secret != "" && len(c.MCP.Secret) < 8 {
		return fmt.Errorf("mcp.secret must be at least 8 characters")
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
