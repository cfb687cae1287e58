package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strconv"
	"strings"

	_ "github.com/dblezek/tga"
	_ "github.com/xfmoulet/qoi"

	"github.com/erinpentecost/blocktex/blocktex"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// preset mirrors the flag set so common encode settings can live in a yaml
// file. Flags given on the command line win over the preset.
type preset struct {
	Format  string `yaml:"format"`
	Quality string `yaml:"quality"`
	Mipmaps string `yaml:"mipmaps"`
	Zstd    bool   `yaml:"zstd"`
}

// sidecar describes the raw payload next to it. The payload itself carries no
// header.
type sidecar struct {
	Format  string `yaml:"format"`
	Width   uint32 `yaml:"width"`
	Height  uint32 `yaml:"height"`
	Depth   uint32 `yaml:"depth"`
	Layers  uint32 `yaml:"layers"`
	Mipmaps uint32 `yaml:"mipmaps"`
	Zstd    bool   `yaml:"zstd"`
}

func parseFormat(name string) (blocktex.Format, error) {
	for _, f := range blocktex.Formats() {
		if strings.EqualFold(f.String(), name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown format %q", name)
}

func parseQuality(name string) (blocktex.Quality, error) {
	switch strings.ToLower(name) {
	case "fast":
		return blocktex.QualityFast, nil
	case "normal":
		return blocktex.QualityNormal, nil
	case "slow":
		return blocktex.QualitySlow, nil
	}
	return 0, fmt.Errorf("unknown quality %q", name)
}

func parseMipmaps(name string) (blocktex.Mipmaps, error) {
	switch strings.ToLower(name) {
	case "none":
		return blocktex.MipmapsDisabled(), nil
	case "auto":
		return blocktex.MipmapsAutomatic(), nil
	case "source":
		return blocktex.MipmapsFromSurface(), nil
	}
	n, err := strconv.ParseUint(name, 10, 32)
	if err != nil {
		return blocktex.Mipmaps{}, fmt.Errorf("mipmaps must be none, auto, source or a count, got %q", name)
	}
	return blocktex.MipmapsExact(uint32(n)), nil
}

func readSidecar(path string) (sidecar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return sidecar{}, fmt.Errorf("open sidecar %q: %w", path, err)
	}
	var meta sidecar
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return sidecar{}, fmt.Errorf("parse sidecar %q: %w", path, err)
	}
	return meta, nil
}

// runInfo describes an existing payload from its sidecar and checks that the
// block bytes actually match the declared shape.
func runInfo(input string) error {
	meta, err := readSidecar(input + ".yaml")
	if err != nil {
		return err
	}
	format, err := parseFormat(meta.Format)
	if err != nil {
		return err
	}
	payload, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("open %q: %w", input, err)
	}
	stored := len(payload)
	if meta.Zstd {
		zr, err := zstd.NewReader(bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("new zstd reader: %w", err)
		}
		payload, err = io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return fmt.Errorf("decompress %q: %w", input, err)
		}
	}

	fmt.Printf("%q: %s %dx%dx%d, %d layers, %d mip levels.\n",
		input, format, meta.Width, meta.Height, meta.Depth, meta.Layers, meta.Mipmaps)
	if meta.Zstd {
		fmt.Printf("Payload: %d block bytes (%d stored, zstd).\n", len(payload), stored)
	} else {
		fmt.Printf("Payload: %d block bytes.\n", len(payload))
	}

	surface := &blocktex.Surface{
		Width: meta.Width, Height: meta.Height, Depth: meta.Depth,
		Layers: meta.Layers, Mipmaps: meta.Mipmaps,
		Format: format,
		Data:   payload,
	}
	if err := surface.Validate(); err != nil {
		return fmt.Errorf("payload does not match sidecar: %w", err)
	}
	fmt.Println("Payload matches the sidecar.")
	return nil
}

func run() error {
	formatName := pflag.String("format", "BC7Unorm", "target block format")
	qualityName := pflag.String("quality", "normal", "encoder effort: fast, normal or slow")
	mipmapsName := pflag.String("mipmaps", "auto", "mip policy: none, auto, source or a level count")
	outPath := pflag.String("out", "", "output payload path (default: input plus .btx)")
	useZstd := pflag.Bool("zstd", false, "zstd-compress the block payload")
	presetPath := pflag.String("preset", "", "yaml preset with format/quality/mipmaps/zstd")
	infoMode := pflag.Bool("info", false, "describe an existing payload instead of encoding")
	pflag.Parse()

	if pflag.NArg() != 1 {
		return fmt.Errorf("expected exactly one input, got %d", pflag.NArg())
	}
	input := pflag.Arg(0)

	if *infoMode {
		return runInfo(input)
	}

	if *presetPath != "" {
		raw, err := os.ReadFile(*presetPath)
		if err != nil {
			return fmt.Errorf("open preset %q: %w", *presetPath, err)
		}
		var p preset
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("parse preset %q: %w", *presetPath, err)
		}
		if p.Format != "" && !pflag.CommandLine.Changed("format") {
			*formatName = p.Format
		}
		if p.Quality != "" && !pflag.CommandLine.Changed("quality") {
			*qualityName = p.Quality
		}
		if p.Mipmaps != "" && !pflag.CommandLine.Changed("mipmaps") {
			*mipmapsName = p.Mipmaps
		}
		if !pflag.CommandLine.Changed("zstd") {
			*useZstd = p.Zstd
		}
	}

	format, err := parseFormat(*formatName)
	if err != nil {
		return err
	}
	quality, err := parseQuality(*qualityName)
	if err != nil {
		return err
	}
	mipmaps, err := parseMipmaps(*mipmapsName)
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open %q: %w", input, err)
	}
	img, kind, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode image %q: %w", input, err)
	}
	bounds := img.Bounds()
	fmt.Printf("Read %q (%s) %dx%d.\n", input, kind, bounds.Dx(), bounds.Dy())

	scaled := blocktex.ScaledToBlocks(img, format)
	if scaled.Bounds() != bounds {
		fmt.Printf("Scaling to block-aligned %dx%d...\n", scaled.Bounds().Dx(), scaled.Bounds().Dy())
	}
	src := blocktex.SurfaceFromImage(scaled)

	fmt.Printf("Encoding %s at %s quality...\n", format, *qualityName)
	surface, err := blocktex.EncodeSurface(context.Background(), src, format, quality, mipmaps)
	if err != nil {
		return fmt.Errorf("encode %q: %w", input, err)
	}

	out := *outPath
	if out == "" {
		out = input + ".btx"
	}
	if err := writePayload(out, surface.Data, *useZstd); err != nil {
		return err
	}

	meta := sidecar{
		Format: surface.Format.String(),
		Width:  surface.Width, Height: surface.Height, Depth: surface.Depth,
		Layers: surface.Layers, Mipmaps: surface.Mipmaps,
		Zstd: *useZstd,
	}
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	if err := os.WriteFile(out+".yaml", raw, 0666); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}

	fmt.Printf("Wrote %d block bytes, %d mip levels, to %q.\n",
		len(surface.Data), surface.Mipmaps, out)
	return nil
}

func writePayload(path string, data []byte, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer f.Close()

	if !compress {
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write %q: %w", path, err)
		}
		return nil
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("new zstd writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return fmt.Errorf("write %q: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish %q: %w", path, err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Printf("FAILED: %v\n", err)
		os.Exit(33)
	}
}
