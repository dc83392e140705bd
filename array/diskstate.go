package array

import (
	"github.com/spacemeshos/raid/persistence"
	"github.com/spacemeshos/raid/shared"
)

type DriveStat struct {
	Index     int
	Name      string
	Size      uint64
	NumChunks uint64
}

type DiskState struct {
	datadir   string
	chunkSize int
}

func NewDiskState(datadir string, chunkSize int) *DiskState {
	return &DiskState{datadir, chunkSize}
}

// Drives returns the drive files present in the datadir, ordered by member
// index. Trailing partial chunks are not counted.
func (d *DiskState) Drives() ([]DriveStat, error) {
	files, err := persistence.DriveFiles(d.datadir)
	if err != nil {
		return nil, err
	}

	drives := make([]DriveStat, 0, len(files))
	for _, file := range files {
		index, err := shared.ParseDriveIndex(file.Name())
		if err != nil {
			return nil, err
		}
		drives = append(drives, DriveStat{
			Index:     index,
			Name:      file.Name(),
			Size:      uint64(file.Size()),
			NumChunks: uint64(file.Size()) / uint64(d.chunkSize),
		})
	}
	return drives, nil
}

func (d *DiskState) NumBytesWritten() (uint64, error) {
	drives, err := d.Drives()
	if err != nil {
		return 0, err
	}

	var numBytesWritten uint64
	for _, drive := range drives {
		numBytesWritten += drive.Size
	}

	return numBytesWritten, nil
}

func (d *DiskState) NumDrivesWritten() (int, error) {
	drives, err := d.Drives()
	if err != nil {
		return 0, err
	}
	return len(drives), nil
}
