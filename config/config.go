package config

import (
	"fmt"
	"path/filepath"

	"github.com/spacemeshos/smutil"
)

const (
	MinMembers = 2
	MaxMembers = 256

	MinChunkSize = 1
	MaxChunkSize = 1 << 24

	MinBufferedStripes = 1
)

const (
	DefaultDataDirName = "data"

	// 4 data drives and 1 parity drive.
	DefaultMembers = 5
	// 4KiB chunks, the common block size of the member devices.
	DefaultChunkSize = 1 << 12

	DefaultBufferedStripes = 1 << 8
)

var DefaultDataDir = filepath.Join(smutil.GetUserHomeDirectory(), "raid", DefaultDataDirName)

// Config describes the geometry of an array: the number of member drives and
// the number of bytes every drive contributes to a single stripe.
type Config struct {
	DataDir string `mapstructure:"datadir"`

	// Members is the number of member drives, D. The last one holds parity.
	Members int `mapstructure:"members"`
	// ChunkSize is the number of bytes per member per stripe, N.
	ChunkSize int `mapstructure:"chunk-size"`

	// BufferedStripes is the number of stripes queued between the parity
	// computation and the drive writers.
	BufferedStripes int `mapstructure:"buffered-stripes"`
}

func DefaultConfig() Config {
	return Config{
		DataDir:         DefaultDataDir,
		Members:         DefaultMembers,
		ChunkSize:       DefaultChunkSize,
		BufferedStripes: DefaultBufferedStripes,
	}
}

// DataChunks returns the number of data members of a stripe.
func (cfg Config) DataChunks() int {
	return cfg.Members - 1
}

// StripeDataSize returns the number of payload bytes carried by a stripe.
func (cfg Config) StripeDataSize() uint64 {
	return uint64(cfg.DataChunks()) * uint64(cfg.ChunkSize)
}

func Validate(cfg Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("invalid `DataDir`; expected: non-empty path")
	}

	if cfg.Members < MinMembers {
		return fmt.Errorf("invalid `Members`; expected: >= %d, given: %d", MinMembers, cfg.Members)
	}

	if cfg.Members > MaxMembers {
		return fmt.Errorf("invalid `Members`; expected: <= %d, given: %d", MaxMembers, cfg.Members)
	}

	if cfg.ChunkSize < MinChunkSize {
		return fmt.Errorf("invalid `ChunkSize`; expected: >= %d, given: %d", MinChunkSize, cfg.ChunkSize)
	}

	if cfg.ChunkSize > MaxChunkSize {
		return fmt.Errorf("invalid `ChunkSize`; expected: <= %d, given: %d", MaxChunkSize, cfg.ChunkSize)
	}

	if cfg.BufferedStripes < MinBufferedStripes {
		return fmt.Errorf("invalid `BufferedStripes`; expected: >= %d, given: %d", MinBufferedStripes, cfg.BufferedStripes)
	}

	return nil
}
