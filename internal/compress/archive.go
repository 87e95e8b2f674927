// Package compress wraps a byte stream into a single-file archive.
package compress

import (
	"fmt"
	"io"
)

// Archive types understood by NewArchiveWriter.
const (
	Zip = "zip"
	Tar = "tar"
)

// NewArchiveWriter returns a writer that stores its input as fileName inside
// an archive of the given type. Close must be called to finish the archive.
func NewArchiveWriter(archiveType string, w io.Writer, fileName string) (io.WriteCloser, error) {
	switch archiveType {
	case Zip:
		return NewZipWriter(w, fileName)
	case Tar:
		return NewTarWriter(w, fileName), nil
	default:
		return nil, fmt.Errorf("unsupported archive type %q", archiveType)
	}
}

// ContentType is the MIME type of an archive type.
func ContentType(archiveType string) string {
	if archiveType == Tar {
		return "application/x-tar"
	}
	return "application/zip"
}
