package proxy

import (
	"flag"
	"time"

	"github.com/pkg/errors"
	"github.com/zachfi/zkit/pkg/util"
)

const (
	defaultStationsHost   = "localhost"
	defaultStationsPort   = 80
	defaultStationsFile   = "assets/stations.yml"
	defaultBackendTimeout = 10 * time.Second
	defaultChunkSize      = 2048

	defaultStreamConnectTimeout = 5 * time.Second
	defaultStreamHeaderTimeout  = 10 * time.Second
)

type Config struct {
	StationsHost   string        `yaml:"stations-host,omitempty"`
	StationsPort   int           `yaml:"stations-port,omitempty"`
	StationsFile   string        `yaml:"stations-file,omitempty"`
	BackendTimeout time.Duration `yaml:"backend-timeout,omitempty"` // applies to metadata and download calls
	ChunkSize      int           `yaml:"chunk-size,omitempty"`      // bytes per relayed stream write
	ForwardICY     bool          `yaml:"forward-icy,omitempty"`

	// Streams have no overall timeout, only these two while opening.
	StreamConnectTimeout time.Duration `yaml:"stream-connect-timeout,omitempty"`
	StreamHeaderTimeout  time.Duration `yaml:"stream-header-timeout,omitempty"`
	StreamMetadata       bool          `yaml:"stream-metadata,omitempty"`
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&cfg.StationsHost, util.PrefixConfig(prefix, "stations-host"), defaultStationsHost, "Host of the radio backend")
	f.IntVar(&cfg.StationsPort, util.PrefixConfig(prefix, "stations-port"), defaultStationsPort, "Port of the radio backend API, used for metadata and downloads")
	f.StringVar(&cfg.StationsFile, util.PrefixConfig(prefix, "stations-file"), defaultStationsFile, "YAML file mapping station keys to their stream port")
	f.DurationVar(&cfg.BackendTimeout, util.PrefixConfig(prefix, "backend-timeout"), defaultBackendTimeout,
		"Timeout for metadata and download calls to the backend. Streams only time out while connecting.")
	f.IntVar(&cfg.ChunkSize, util.PrefixConfig(prefix, "chunk-size"), defaultChunkSize, "Size of the chunks relayed to stream clients")
	f.BoolVar(&cfg.ForwardICY, util.PrefixConfig(prefix, "forward-icy"), true, "Forward icy-* headers from the backend stream to clients")
	f.DurationVar(&cfg.StreamConnectTimeout, util.PrefixConfig(prefix, "stream-connect-timeout"), defaultStreamConnectTimeout, "Timeout for connecting to a station stream")
	f.DurationVar(&cfg.StreamHeaderTimeout, util.PrefixConfig(prefix, "stream-header-timeout"), defaultStreamHeaderTimeout, "Timeout for a station stream to send its response headers")
	f.BoolVar(&cfg.StreamMetadata, util.PrefixConfig(prefix, "stream-metadata"), false,
		"Request in-band ICY metadata from station streams and log title changes. Metadata is never relayed to clients.")
}

func (cfg *Config) Validate() error {
	switch {
	case cfg.StationsHost == "":
		return errors.New("stations host is required")
	case cfg.StationsPort <= 0 || cfg.StationsPort > 65535:
		return errors.Errorf("invalid stations port %d", cfg.StationsPort)
	case cfg.StationsFile == "":
		return errors.New("stations file is required")
	case cfg.BackendTimeout <= 0:
		return errors.Errorf("backend timeout must be positive, got %s", cfg.BackendTimeout)
	case cfg.ChunkSize <= 0:
		return errors.Errorf("chunk size must be positive, got %d", cfg.ChunkSize)
	case cfg.StreamConnectTimeout <= 0 || cfg.StreamHeaderTimeout <= 0:
		return errors.Errorf("stream timeouts must be positive, got connect %s, header %s", cfg.StreamConnectTimeout, cfg.StreamHeaderTimeout)
	}
	return nil
}
