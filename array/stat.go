package array

import (
	"errors"

	"github.com/spacemeshos/raid/shared"
)

type Stat struct {
	Metadata *Metadata // nil if the array holds no complete payload
	Drives   []DriveStat

	NumBytesWritten uint64 // total size of the drive files
}

func (a *Array) Stat() (*Stat, error) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	drives, err := a.diskState.Drives()
	if err != nil {
		return nil, err
	}

	stat := &Stat{Drives: drives}
	for _, drive := range drives {
		stat.NumBytesWritten += drive.Size
	}

	m, err := LoadMetadata(a.cfg.DataDir)
	switch {
	case errors.Is(err, shared.ErrStateMetadataFileMissing):
	case err != nil:
		return nil, err
	default:
		stat.Metadata = m
	}
	return stat, nil
}
