package archiveutil

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/go-logr/logr"
)

var errMissingData = errors.New("debian package has no data archive")

// data archives that may be found inside a .deb
var debData = map[string]decompressor{
	"data.tar":     uncompressed,
	"data.tar.gz":  gunzip,
	"data.tar.xz":  unxz,
	"data.tar.zst": unzstd,
}

// UndebEntry locates the data archive inside a Debian
// package (the equivalent of 'ar -x') and returns the
// contents of the member named entry.
func UndebEntry(ctx context.Context, r io.Reader, entry string) ([]byte, error) {
	log := logr.FromContextOrDiscard(ctx)
	tr := ar.NewReader(r)

	for {
		header, err := tr.Next()
		switch {
		case err == io.EOF:
			return nil, corrupt(errMissingData)
		case err != nil:
			log.Error(err, "failed to read file from archive")
			return nil, corrupt(err)
		case header == nil:
			continue
		}

		// GNU ar terminates names with a '/'
		name := strings.TrimSuffix(strings.TrimSpace(header.Name), "/")
		dec, ok := debData[name]
		if !ok {
			log.V(5).Info("skipping file", "name", name)
			continue
		}
		log.V(4).Info("unpacking data archive", "name", name, "size", header.Size)
		return decompressEntry(ctx, tr, entry, dec)
	}
}
