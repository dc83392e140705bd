package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spacemeshos/raid/shared"
)

// NoMissingDrive is passed to OpenDrives when every drive is to be read.
const NoMissingDrive = -1

// DriveFiles returns the member drive files found in datadir, ordered by
// member index. A missing datadir yields no files.
func DriveFiles(datadir string) ([]os.FileInfo, error) {
	entries, err := os.ReadDir(datadir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []os.FileInfo
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if shared.IsDriveFile(info) {
			files = append(files, info)
		}
	}

	sort.Sort(NumericalSorter(files))
	return files, nil
}

// DrivePath returns the path of the file backing member drive index.
func DrivePath(datadir string, index int) string {
	return filepath.Join(datadir, shared.DriveFileName(index))
}

func NewDriveWriter(datadir string, index, chunkSize int) (*ChunkWriter, error) {
	if err := os.MkdirAll(datadir, shared.OwnerReadWriteExec); err != nil {
		return nil, err
	}
	return NewChunkWriter(DrivePath(datadir, index), chunkSize)
}

func NewDriveReader(datadir string, index, chunkSize int) (*ChunkReader, error) {
	return NewChunkReader(DrivePath(datadir, index), chunkSize)
}

// CreateDrives creates (or truncates) all member drives in datadir.
func CreateDrives(datadir string, members, chunkSize int) (*GroupWriter, error) {
	writers := make([]Writer, 0, members)
	for i := 0; i < members; i++ {
		w, err := NewDriveWriter(datadir, i, chunkSize)
		if err != nil {
			for _, w := range writers {
				w.Close()
			}
			return nil, fmt.Errorf("drive %d: %w", i, err)
		}
		writers = append(writers, w)
	}
	return NewGroupWriter(writers)
}

// OpenDrives opens all member drives in datadir for reading, except missing,
// which is left out of the group. Pass NoMissingDrive to open every drive.
func OpenDrives(datadir string, members, chunkSize, missing int) (*GroupReader, error) {
	readers := make([]Reader, members)
	closeAll := func() {
		for _, r := range readers {
			if r != nil {
				r.Close()
			}
		}
	}

	for i := 0; i < members; i++ {
		if i == missing {
			continue
		}
		r, err := NewDriveReader(datadir, i, chunkSize)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("drive %d: %w", i, err)
		}
		readers[i] = r
	}

	g, err := Group(readers)
	if err != nil {
		closeAll()
		return nil, err
	}
	return g, nil
}
