package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	driveFilePrefix = "drive_"
	driveFileSuffix = ".bin"
)

// DriveFileName returns the name of the file backing member drive index.
func DriveFileName(index int) string {
	return fmt.Sprintf("%s%d%s", driveFilePrefix, index, driveFileSuffix)
}

// ParseDriveIndex returns the member index encoded in a drive file name.
func ParseDriveIndex(name string) (int, error) {
	if !strings.HasPrefix(name, driveFilePrefix) || !strings.HasSuffix(name, driveFileSuffix) {
		return 0, fmt.Errorf("not a drive file: %v", name)
	}
	num := strings.TrimSuffix(strings.TrimPrefix(name, driveFilePrefix), driveFileSuffix)
	index, err := strconv.Atoi(num)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid drive file index: %v", name)
	}
	return index, nil
}

// IsDriveFile reports whether info describes a member drive file.
func IsDriveFile(info os.FileInfo) bool {
	if !info.Mode().IsRegular() {
		return false
	}
	_, err := ParseDriveIndex(info.Name())
	return err == nil
}
