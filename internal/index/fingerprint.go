package index

import (
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Equal reports whether two fingerprints describe the same file contents.
func (f FileFingerprint) Equal(o FileFingerprint) bool {
	return f.Size == o.Size && f.ModTime.Equal(o.ModTime)
}
