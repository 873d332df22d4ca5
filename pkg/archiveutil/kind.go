package archiveutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind is an archive container format.
type Kind int

const (
	KindUnknown Kind = iota
	KindTarGzip
	KindTarXZ
	KindTarZstd
	KindZip
	KindDeb
	KindRPM
)

func (k Kind) String() string {
	switch k {
	case KindTarGzip:
		return "tar.gz"
	case KindTarXZ:
		return "tar.xz"
	case KindTarZstd:
		return "tar.zst"
	case KindZip:
		return "zip"
	case KindDeb:
		return "deb"
	case KindRPM:
		return "rpm"
	default:
		return "unknown"
	}
}

var suffixes = []struct {
	suffix string
	kind   Kind
}{
	{".tar.gz", KindTarGzip},
	{".tgz", KindTarGzip},
	{".tar.xz", KindTarXZ},
	{".txz", KindTarXZ},
	{".tar.zst", KindTarZstd},
	{".tzst", KindTarZstd},
	{".zip", KindZip},
	{".deb", KindDeb},
	{".rpm", KindRPM},
}

// KindFromURL determines the archive format from the suffix
// of the URL path. The query string and fragment are ignored.
func KindFromURL(src string) (Kind, error) {
	p := src
	if uri, err := url.Parse(src); err == nil && uri.Path != "" {
		p = uri.Path
	}
	for _, s := range suffixes {
		if strings.HasSuffix(p, s.suffix) {
			return s.kind, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, src)
}
