package archiveutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	ErrEntryNotFound     = errors.New("entry not found in archive")
	ErrCorrupt           = errors.New("corrupt archive")
)

func corrupt(err error) error {
	return fmt.Errorf("%w: %w", ErrCorrupt, err)
}

func notFound(entry string) error {
	return fmt.Errorf("%w: %s", ErrEntryNotFound, entry)
}

// ExtractEntry returns the contents of the archive member
// whose name is exactly entry.
func ExtractEntry(ctx context.Context, data []byte, kind Kind, entry string) ([]byte, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("kind", kind.String(), "entry", entry)
	log.V(3).Info("extracting entry", "size", len(data))

	switch kind {
	case KindTarGzip:
		return GunzipEntry(ctx, bytes.NewReader(data), entry)
	case KindTarXZ:
		return XZuntarEntry(ctx, bytes.NewReader(data), entry)
	case KindTarZstd:
		return ZuntarEntry(ctx, bytes.NewReader(data), entry)
	case KindZip:
		return UnzipEntry(ctx, data, entry)
	case KindDeb:
		return UndebEntry(ctx, bytes.NewReader(data), entry)
	case KindRPM:
		return UnrpmEntry(ctx, bytes.NewReader(data), entry)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind)
	}
}

// decompressor wraps a compressed stream.
type decompressor func(r io.Reader) (io.ReadCloser, error)

func gunzip(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func unxz(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}

func unzstd(r io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return zr.IOReadCloser(), nil
}

func uncompressed(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}
