package array

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/spacemeshos/raid/config"
	"github.com/spacemeshos/raid/shared"
)

const (
	MetadataFileName = "raid_metadata.json"
	LockFileName     = ".lock"

	metadataVersion = 1
)

// Metadata is the data associated with an encoded payload, persisted in the
// datadir next to the drive files.
type Metadata struct {
	Version int `json:",omitempty"`

	Members   int
	ChunkSize int

	PayloadSize uint64
	NumStripes  uint64
}

func SaveMetadata(dir string, v *Metadata) error {
	err := os.MkdirAll(dir, shared.OwnerReadWriteExec)
	if err != nil && !os.IsExist(err) {
		return fmt.Errorf("dir creation failure: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serialization failure: %w", err)
	}

	if err := atomic.WriteFile(filepath.Join(dir, MetadataFileName), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write to disk failure: %w", err)
	}

	return nil
}

func LoadMetadata(dir string) (*Metadata, error) {
	filename := filepath.Join(dir, MetadataFileName)
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, shared.ErrStateMetadataFileMissing
		}
		return nil, fmt.Errorf("read file failure: %w", err)
	}

	metadata := &Metadata{}
	if err := json.Unmarshal(data, metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	if metadata.Version > metadataVersion {
		return nil, fmt.Errorf("metadata version %d is newer than the latest supported version %d", metadata.Version, metadataVersion)
	}

	return metadata, nil
}

func removeMetadata(dir string) error {
	path := filepath.Join(dir, MetadataFileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file (%v): %w", path, err)
	}
	return nil
}

func newMetadata(cfg config.Config, layout config.Layout, payloadSize uint64) *Metadata {
	return &Metadata{
		Version:     metadataVersion,
		Members:     cfg.Members,
		ChunkSize:   cfg.ChunkSize,
		PayloadSize: payloadSize,
		NumStripes:  layout.NumStripes,
	}
}

func verifyMetadata(m *Metadata, cfg config.Config) error {
	if cfg.Members != m.Members {
		return ConfigMismatchError{
			Param:    "Members",
			Expected: fmt.Sprintf("%d", cfg.Members),
			Found:    fmt.Sprintf("%d", m.Members),
			DataDir:  cfg.DataDir,
		}
	}

	if cfg.ChunkSize != m.ChunkSize {
		return ConfigMismatchError{
			Param:    "ChunkSize",
			Expected: fmt.Sprintf("%d", cfg.ChunkSize),
			Found:    fmt.Sprintf("%d", m.ChunkSize),
			DataDir:  cfg.DataDir,
		}
	}

	if layout := config.DeriveLayout(cfg, m.PayloadSize); layout.NumStripes != m.NumStripes {
		return fmt.Errorf("%w: payload of %d bytes needs %d stripes, metadata records %d",
			ErrMetadataMismatch, m.PayloadSize, layout.NumStripes, m.NumStripes)
	}

	return nil
}
