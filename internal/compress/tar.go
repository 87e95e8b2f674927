package compress

import (
	"archive/tar"
	"bytes"
	"io"
	"time"
)

// TarWriter packs everything written to it into a single file of a TAR
// archive. The tar header needs the file size, so the content is buffered
// until Close.
type TarWriter struct {
	w        io.Writer
	fileName string
	buf      bytes.Buffer
}

func NewTarWriter(w io.Writer, fileName string) *TarWriter {
	return &TarWriter{w: w, fileName: fileName}
}

func (t *TarWriter) Write(p []byte) (int, error) {
	return t.buf.Write(p)
}

// Close writes the header, the buffered file and the archive trailer.
func (t *TarWriter) Close() error {
	tw := tar.NewWriter(t.w)
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     t.fileName,
		Mode:     0o644,
		Size:     int64(t.buf.Len()),
		ModTime:  time.Now().UTC(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if _, err := io.Copy(tw, &t.buf); err != nil {
		return err
	}
	return tw.Close()
}
