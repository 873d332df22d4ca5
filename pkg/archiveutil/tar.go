package archiveutil

import (
	"archive/tar"
	"context"
	"io"

	"github.com/go-logr/logr"
)

// GunzipEntry is the same as UntarEntry, but it first decodes
// the gzipped archive.
func GunzipEntry(ctx context.Context, r io.Reader, entry string) ([]byte, error) {
	return decompressEntry(ctx, r, entry, gunzip)
}

// XZuntarEntry is the same as UntarEntry, but it first decodes
// the xz archive.
func XZuntarEntry(ctx context.Context, r io.Reader, entry string) ([]byte, error) {
	return decompressEntry(ctx, r, entry, unxz)
}

// ZuntarEntry is the same as UntarEntry, but it first decodes
// the zstandard archive.
func ZuntarEntry(ctx context.Context, r io.Reader, entry string) ([]byte, error) {
	return decompressEntry(ctx, r, entry, unzstd)
}

func decompressEntry(ctx context.Context, r io.Reader, entry string, dec decompressor) ([]byte, error) {
	log := logr.FromContextOrDiscard(ctx)
	dr, err := dec(r)
	if err != nil {
		log.Error(err, "failed to open compressed stream")
		return nil, corrupt(err)
	}
	defer dr.Close()
	return UntarEntry(ctx, dr, entry)
}

// UntarEntry returns the contents of the first member of the
// tar archive whose name is exactly entry.
func UntarEntry(ctx context.Context, r io.Reader, entry string) ([]byte, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("entry", entry)
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		switch {
		case err == io.EOF:
			return nil, notFound(entry)
		case err != nil:
			log.Error(err, "failed to read file from archive")
			return nil, corrupt(err)
		case header == nil:
			continue
		}

		if header.Name != entry {
			log.V(5).Info("skipping file", "name", header.Name)
			continue
		}

		log.V(4).Info("found entry", "size", header.Size, "mode", header.Mode)
		data, err := io.ReadAll(tr)
		if err != nil {
			log.Error(err, "failed to extract file")
			return nil, corrupt(err)
		}
		return data, nil
	}
}
