package archiveutil

import (
	"context"
	"fmt"
	"io"

	"github.com/cavaliergopher/rpm"
	"github.com/go-logr/logr"
	"github.com/sassoftware/go-rpmutils/cpio"
)

const (
	compressionGzip = "gzip"
	compressionXZ   = "xz"
	compressionZstd = "zstd"
)

// payloads without a compressor tag default to gzip
var rpmPayloads = map[string]decompressor{
	"":              gunzip,
	compressionGzip: gunzip,
	compressionXZ:   unxz,
	compressionZstd: unzstd,
}

// UnrpmEntry returns the contents of the member named entry
// from the cpio payload of an RPM package.
func UnrpmEntry(ctx context.Context, r io.Reader, entry string) ([]byte, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("entry", entry)

	pkg, err := rpm.Read(r)
	if err != nil {
		log.Error(err, "failed to read package header")
		return nil, corrupt(err)
	}

	if format := pkg.PayloadFormat(); format != "cpio" {
		return nil, corrupt(fmt.Errorf("unsupported payload format: %s", format))
	}

	compression := pkg.PayloadCompression()
	log.V(6).Info("detected payload compression", "compression", compression)
	dec, ok := rpmPayloads[compression]
	if !ok {
		return nil, corrupt(fmt.Errorf("unsupported compression: %s", compression))
	}

	payload, err := dec(r)
	if err != nil {
		log.Error(err, "failed to open payload")
		return nil, corrupt(err)
	}
	defer payload.Close()

	stream := cpio.NewReader(payload)
	for {
		e, err := stream.Next()
		if err == io.EOF {
			return nil, notFound(entry)
		}
		if err != nil {
			log.Error(err, "failed to read file from payload")
			return nil, corrupt(err)
		}
		if e.Filename() != entry {
			log.V(5).Info("skipping file", "name", e.Filename())
			continue
		}
		if e.Mode()&^07777 != cpio.S_ISREG {
			log.V(4).Info("entry is not a regular file", "mode", e.Mode())
			return nil, notFound(entry)
		}

		log.V(4).Info("found entry", "size", e.Filesize())
		data, err := io.ReadAll(stream)
		if err != nil {
			log.Error(err, "failed to extract file")
			return nil, corrupt(err)
		}
		if int64(len(data)) != int64(e.Filesize()) {
			return nil, corrupt(fmt.Errorf("short read: %d of %d bytes", len(data), e.Filesize()))
		}
		return data, nil
	}
}
