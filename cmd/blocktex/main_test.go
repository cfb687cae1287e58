package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeTestPayload(t *testing.T, meta sidecar, payload []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.btx")
	require.NoError(t, os.WriteFile(path, payload, 0666))
	raw, err := yaml.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path+".yaml", raw, 0666))
	return path
}

func TestReadSidecar(t *testing.T) {
	meta := sidecar{
		Format: "BC1Unorm",
		Width:  8, Height: 8, Depth: 1,
		Layers: 1, Mipmaps: 1,
	}
	path := writeTestPayload(t, meta, make([]byte, 32))

	got, err := readSidecar(path + ".yaml")
	require.NoError(t, err)
	require.Equal(t, meta, got)

	_, err = readSidecar(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRunInfo(t *testing.T) {
	meta := sidecar{
		Format: "BC1Unorm",
		Width:  8, Height: 8, Depth: 1,
		Layers: 1, Mipmaps: 1,
	}
	path := writeTestPayload(t, meta, make([]byte, 32))
	require.NoError(t, runInfo(path))
}

func TestRunInfoZstdPayload(t *testing.T) {
	meta := sidecar{
		Format: "BC7Unorm",
		Width:  4, Height: 4, Depth: 1,
		Layers: 1, Mipmaps: 1,
		Zstd:   true,
	}
	zw, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	packed := zw.EncodeAll(make([]byte, 16), nil)
	require.NoError(t, zw.Close())

	path := writeTestPayload(t, meta, packed)
	require.NoError(t, runInfo(path))
}

func TestRunInfoPayloadMismatch(t *testing.T) {
	meta := sidecar{
		Format: "BC1Unorm",
		Width:  8, Height: 8, Depth: 1,
		Layers: 1, Mipmaps: 1,
	}
	// 31 bytes for a surface that needs exactly 32.
	path := writeTestPayload(t, meta, make([]byte, 31))
	require.ErrorContains(t, runInfo(path), "does not match")
}

func TestParseFormat(t *testing.T) {
	f, err := parseFormat("bc7unorm")
	require.NoError(t, err)
	require.Equal(t, "BC7Unorm", f.String())

	_, err = parseFormat("BC9")
	require.Error(t, err)
}

func TestParseMipmaps(t *testing.T) {
	for _, name := range []string{"none", "auto", "source", "5"} {
		_, err := parseMipmaps(name)
		require.NoError(t, err, name)
	}
	_, err := parseMipmaps("lots")
	require.Error(t, err)
}
