package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDriveFileName(t *testing.T) {
	req := require.New(t)

	for _, i := range []int{0, 1, 9, 10, 255} {
		name := DriveFileName(i)
		index, err := ParseDriveIndex(name)
		req.NoError(err)
		req.Equal(i, index)
	}
	req.Equal("drive_3.bin", DriveFileName(3))
}

func TestParseDriveIndex_Invalid(t *testing.T) {
	for _, name := range []string{"", "drive_.bin", "drive_x.bin", "drive_-1.bin", "drive_1.dat", "disk_1.bin", ".lock"} {
		_, err := ParseDriveIndex(name)
		require.Error(t, err, name)
	}
}

func TestIsDriveFile(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	req.NoError(os.WriteFile(filepath.Join(dir, DriveFileName(0)), nil, OwnerReadWrite))
	req.NoError(os.WriteFile(filepath.Join(dir, "raid_metadata.json"), nil, OwnerReadWrite))
	req.NoError(os.Mkdir(filepath.Join(dir, DriveFileName(1)), OwnerReadWriteExec))

	entries, err := os.ReadDir(dir)
	req.NoError(err)

	var drives []string
	for _, e := range entries {
		info, err := e.Info()
		req.NoError(err)
		if IsDriveFile(info) {
			drives = append(drives, info.Name())
		}
	}
	req.Equal([]string{DriveFileName(0)}, drives)
}

func TestAvailableSpace(t *testing.T) {
	require.NotZero(t, AvailableSpace(t.TempDir()))
}

func TestConfigMismatchError(t *testing.T) {
	err := ConfigMismatchError{Param: "Members", Expected: "5", Found: "4", DataDir: "/tmp/x"}
	require.EqualError(t, err, "`Members` config mismatch; expected: 5, found: 4, datadir: /tmp/x")
}
