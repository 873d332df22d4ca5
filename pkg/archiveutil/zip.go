package archiveutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/klauspost/compress/zip"
)

// UnzipEntry returns the contents of the zip member whose
// stored name is exactly entry. The lookup uses the central
// directory rather than scanning every member. Names are
// compared as stored, without any cleaning.
func UnzipEntry(ctx context.Context, data []byte, entry string) ([]byte, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("entry", entry)

	// names are only compared, never used as paths, so an
	// insecure name is not an error here
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		log.Error(err, "failed to read zip central directory")
		return nil, corrupt(err)
	}
	log.V(5).Info("opened zip archive", "files", len(zr.File))

	// the first member with a given name wins
	index := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if _, ok := index[f.Name]; !ok {
			index[f.Name] = f
		}
	}

	f, ok := index[entry]
	if !ok {
		return nil, notFound(entry)
	}
	if strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir() {
		log.V(4).Info("entry is a directory")
		return nil, notFound(entry)
	}

	rc, err := f.Open()
	if err != nil {
		log.Error(err, "failed to open file in archive")
		return nil, corrupt(err)
	}
	defer rc.Close()

	out, err := io.ReadAll(rc)
	if err != nil {
		log.Error(err, "failed to extract file")
		return nil, corrupt(err)
	}
	return out, nil
}
