package persistence

import (
	"os"
	"sort"

	"github.com/spacemeshos/raid/shared"
)

// NumericalSorter orders drive files by their member index.
type NumericalSorter []os.FileInfo

// A compile time check to ensure that NumericalSorter fully implements sort.Interface.
var _ sort.Interface = (*NumericalSorter)(nil)

func (s NumericalSorter) Len() int      { return len(s) }
func (s NumericalSorter) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s NumericalSorter) Less(i, j int) bool {
	pathA := s[i].Name()
	pathB := s[j].Name()

	a, err1 := shared.ParseDriveIndex(pathA)
	b, err2 := shared.ParseDriveIndex(pathB)

	// If any were not drive files, sort lexicographically.
	if err1 != nil || err2 != nil {
		return pathA < pathB
	}

	return a < b
}
