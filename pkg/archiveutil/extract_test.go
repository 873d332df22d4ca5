package archiveutil

import (
	"archive/tar"
	"bytes"
	"context"
	"github.com/blakesmith/ar"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/testr"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type member struct {
	name string
	body string
	dir  bool
}

var members = []member{
	{name: "tool-v1/", dir: true},
	{name: "tool-v1/README.md", body: "read me"},
	{name: "tool-v1/tool", body: "X"},
	{name: "foo.bin", body: "not foo"},
	{name: "bin/foo", body: "also not foo"},
	{name: "foo", body: "foo"},
}

func newTar(t *testing.T, w io.Writer) {
	tw := tar.NewWriter(w)
	for _, m := range members {
		hdr := &tar.Header{
			Name:    m.name,
			Mode:    0o644,
			Size:    int64(len(m.body)),
			ModTime: time.Unix(0, 0),
		}
		if m.dir {
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
		}
		require.NoError(t, tw.WriteHeader(hdr))
		_, err := tw.Write([]byte(m.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
}

func newTarGz(t *testing.T) []byte {
	buf := new(bytes.Buffer)
	gw := gzip.NewWriter(buf)
	newTar(t, gw)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func newTarXZ(t *testing.T) []byte {
	buf := new(bytes.Buffer)
	xw, err := xz.NewWriter(buf)
	require.NoError(t, err)
	newTar(t, xw)
	require.NoError(t, xw.Close())
	return buf.Bytes()
}

func newTarZstd(t *testing.T) []byte {
	buf := new(bytes.Buffer)
	zw, err := zstd.NewWriter(buf)
	require.NoError(t, err)
	newTar(t, zw)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newZip(t *testing.T) []byte {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, m := range members {
		w, err := zw.Create(m.name)
		require.NoError(t, err)
		if !m.dir {
			_, err = w.Write([]byte(m.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newDeb(t *testing.T, dataName string, data []byte) []byte {
	buf := new(bytes.Buffer)
	aw := ar.NewWriter(buf)
	require.NoError(t, aw.WriteGlobalHeader())

	files := []struct {
		name string
		body []byte
	}{
		{"debian-binary", []byte("2.0\n")},
		{"control.tar.gz", newTarGz(t)},
		{dataName, data},
	}
	for _, f := range files {
		require.NoError(t, aw.WriteHeader(&ar.Header{
			Name:    f.name,
			ModTime: time.Unix(0, 0),
			Mode:    0o644,
			Size:    int64(len(f.body)),
		}))
		_, err := aw.Write(f.body)
		require.NoError(t, err)
	}
	return buf.Bytes()
}

func TestExtractEntry(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	plainTar := new(bytes.Buffer)
	newTar(t, plainTar)

	var cases = []struct {
		name string
		kind Kind
		data []byte
	}{
		{"tar.gz", KindTarGzip, newTarGz(t)},
		{"tar.xz", KindTarXZ, newTarXZ(t)},
		{"tar.zst", KindTarZstd, newTarZstd(t)},
		{"zip", KindZip, newZip(t)},
		{"deb gzip", KindDeb, newDeb(t, "data.tar.gz", newTarGz(t))},
		{"deb xz", KindDeb, newDeb(t, "data.tar.xz", newTarXZ(t))},
		{"deb zstd", KindDeb, newDeb(t, "data.tar.zst", newTarZstd(t))},
		{"deb uncompressed", KindDeb, newDeb(t, "data.tar", plainTar.Bytes())},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ExtractEntry(ctx, tt.data, tt.kind, "tool-v1/tool")
			require.NoError(t, err)
			assert.Equal(t, "X", string(out))

			// names must match exactly
			out, err = ExtractEntry(ctx, tt.data, tt.kind, "foo")
			require.NoError(t, err)
			assert.Equal(t, "foo", string(out))

			_, err = ExtractEntry(ctx, tt.data, tt.kind, "tool")
			assert.ErrorIs(t, err, ErrEntryNotFound)

			_, err = ExtractEntry(ctx, tt.data, tt.kind, "tool-v1/too")
			assert.ErrorIs(t, err, ErrEntryNotFound)
		})
	}
}

func TestExtractEntryCorrupt(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	garbage := []byte("this is definitely not an archive")

	var cases = []Kind{
		KindTarGzip,
		KindTarXZ,
		KindTarZstd,
		KindZip,
		KindDeb,
		KindRPM,
	}
	for _, kind := range cases {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := ExtractEntry(ctx, garbage, kind, "tool")
			assert.ErrorIs(t, err, ErrCorrupt)
			assert.NotErrorIs(t, err, ErrEntryNotFound)
		})
	}
}

func TestExtractEntryTruncated(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	data := newTarGz(t)
	_, err := ExtractEntry(ctx, data[:len(data)/2], KindTarGzip, "foo")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestExtractEntryUnknown(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	_, err := ExtractEntry(ctx, newTarGz(t), KindUnknown, "foo")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestUnzipEntryDirectory(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	for _, entry := range []string{"tool-v1", "tool-v1/"} {
		_, err := UnzipEntry(ctx, newZip(t), entry)
		assert.ErrorIs(t, err, ErrEntryNotFound)
	}
}

func TestUnzipEntryStoredNames(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	var cases = []struct {
		stored string
		entry  string
		ok     bool
	}{
		{"./tool", "./tool", true},
		{"./tool", "tool", false},
		{"/abs/tool", "/abs/tool", true},
		{"/abs/tool", "abs/tool", false},
		{"dir\\tool", "dir\\tool", true},
		{"dir\\tool", "dir/tool", false},
		{"dir/../tool", "tool", false},
	}
	for _, tt := range cases {
		t.Run(tt.stored+" "+tt.entry, func(t *testing.T) {
			buf := new(bytes.Buffer)
			zw := zip.NewWriter(buf)
			w, err := zw.Create(tt.stored)
			require.NoError(t, err)
			_, err = w.Write([]byte("X"))
			require.NoError(t, err)
			require.NoError(t, zw.Close())

			out, err := UnzipEntry(ctx, buf.Bytes(), tt.entry)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrEntryNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "X", string(out))
		})
	}
}

func TestUnrpmEntry(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	var cases = []string{
		"tool-gzip.rpm",
		"tool-xz.rpm",
		"tool-zstd.rpm",
		"tool-default.rpm",
	}
	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join("testdata", name))
			require.NoError(t, err)

			out, err := ExtractEntry(ctx, data, KindRPM, "./usr/bin/tool")
			require.NoError(t, err)
			assert.Equal(t, "X", string(out))

			out, err = ExtractEntry(ctx, data, KindRPM, "./usr/bin/tool.bin")
			require.NoError(t, err)
			assert.Equal(t, "not tool", string(out))

			// names are compared as stored, and only regular
			// files can be extracted
			for _, entry := range []string{"usr/bin/tool", "/usr/bin/tool", "./usr/bin", "./usr/bin/link", "./usr/bin/missing"} {
				_, err = ExtractEntry(ctx, data, KindRPM, entry)
				assert.ErrorIs(t, err, ErrEntryNotFound, entry)
			}
		})
	}
}

func TestUnrpmEntryCorrupt(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	gz, err := os.ReadFile(filepath.Join("testdata", "tool-gzip.rpm"))
	require.NoError(t, err)

	t.Run("truncated header", func(t *testing.T) {
		_, err := ExtractEntry(ctx, gz[:120], KindRPM, "./usr/bin/tool")
		assert.ErrorIs(t, err, ErrCorrupt)
	})
	t.Run("truncated payload", func(t *testing.T) {
		_, err := ExtractEntry(ctx, gz[:len(gz)-24], KindRPM, "./usr/bin/missing")
		assert.ErrorIs(t, err, ErrCorrupt)
		assert.NotErrorIs(t, err, ErrEntryNotFound)
	})
	t.Run("unsupported compression", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join("testdata", "tool-bzip2.rpm"))
		require.NoError(t, err)
		_, err = ExtractEntry(ctx, data, KindRPM, "./usr/bin/tool")
		assert.ErrorIs(t, err, ErrCorrupt)
		assert.ErrorContains(t, err, "bzip2")
	})
	t.Run("short read", func(t *testing.T) {
		// the header claims more bytes than the payload holds
		data, err := os.ReadFile(filepath.Join("testdata", "tool-short.rpm"))
		require.NoError(t, err)
		_, err = ExtractEntry(ctx, data, KindRPM, "./usr/bin/tool")
		assert.ErrorIs(t, err, ErrCorrupt)
		assert.ErrorContains(t, err, "short read")
	})
}

func TestUndebEntryMissingData(t *testing.T) {
	ctx := logr.NewContext(context.TODO(), testr.NewWithOptions(t, testr.Options{Verbosity: 10}))

	data := newDeb(t, "data.tar.lzma", []byte("whatever"))
	_, err := UndebEntry(ctx, bytes.NewReader(data), "foo")
	assert.ErrorIs(t, err, ErrCorrupt)
}
