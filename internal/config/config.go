package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/pkgdetails/internal/index"
)

// Config holds runtime configuration for pkgdetails.
// Values are populated from .pkgdetails.yaml, PKGDETAILS_* env vars, and CLI flags.
type Config struct {
	// Header defaults for newly written indexes
	File        string `mapstructure:"file" yaml:"file"`
	URL         string `mapstructure:"url" yaml:"url"`
	Description string `mapstructure:"description" yaml:"description"`
	Columns     string `mapstructure:"columns" yaml:"columns"`
	IntendedFor string `mapstructure:"intended_for" yaml:"intended_for"`
	WrittenBy   string `mapstructure:"written_by" yaml:"written_by"`

	OnlyOnce      bool `mapstructure:"only_once" yaml:"only_once"`
	DisallowAlpha bool `mapstructure:"disallow_alpha" yaml:"disallow_alpha"`

	IndexPath   string        `mapstructure:"index_path" yaml:"index_path"`
	CorpusRoot  string        `mapstructure:"corpus_root" yaml:"corpus_root"`
	Mirror      string        `mapstructure:"mirror" yaml:"mirror"`
	CacheDir    string        `mapstructure:"cache_dir" yaml:"cache_dir"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	LockTimeout time.Duration `mapstructure:"lock_timeout" yaml:"lock_timeout"`
	Workers     int           `mapstructure:"workers" yaml:"workers"`
	Verbose     bool          `mapstructure:"verbose" yaml:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("file", index.DefaultFile)
	viper.SetDefault("url", index.DefaultURL)
	viper.SetDefault("description", index.DefaultDescription)
	viper.SetDefault("columns", index.DefaultColumns)
	viper.SetDefault("intended_for", index.DefaultIntendedFor)
	viper.SetDefault("written_by", index.DefaultWrittenBy)
	viper.SetDefault("only_once", true)
	viper.SetDefault("disallow_alpha", false)
	viper.SetDefault("index_path", "02packages.details.txt.gz")
	viper.SetDefault("corpus_root", "")
	viper.SetDefault("mirror", "https://cpan.metacpan.org")
	viper.SetDefault("cache_dir", defaultCacheDir())
	viper.SetDefault("cache_ttl", 24*time.Hour)
	viper.SetDefault("lock_timeout", 5*time.Second)
	viper.SetDefault("workers", 4)
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".pkgdetails", "cache")
	}
	return filepath.Join(home, ".pkgdetails", "cache")
}

// IndexOptions converts the configuration into constructor options for a
// new index, stamped by now.
func (c Config) IndexOptions(now func() time.Time) index.Options {
	header := map[string]string{
		index.FieldFile:        c.File,
		index.FieldURL:         c.URL,
		index.FieldDescription: c.Description,
		index.FieldColumns:     c.Columns,
		index.FieldIntendedFor: c.IntendedFor,
		index.FieldWrittenBy:   c.WrittenBy,
	}
	for k, v := range header {
		if v == "" {
			delete(header, k)
		}
	}

	return index.Options{
		Header: header,
		Policy: index.Policy{OnlyOnce: c.OnlyOnce, DisallowAlpha: c.DisallowAlpha},
		Now:    now,
	}
}

// Dump renders the configuration as YAML.
func (c Config) Dump() ([]byte, error) {
	return yaml.Marshal(c)
}
