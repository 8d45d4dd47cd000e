package raster

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

type Format int

const (
	FormatPNG Format = iota
	FormatWebP
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatWebP:
		return "webp"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

func (f Format) Ext() string { return "." + f.String() }

// ParseFormat accepts "png" or "webp" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	}
	return 0, fmt.Errorf("raster: unknown format %q", s)
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return 0, fmt.Errorf("raster: %s has no extension", path)
	}
	return ParseFormat(ext)
}

// Encode writes img in the given format. WebP output is lossless.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("raster: png encode: %w", err)
		}
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("raster: webp encode: %w", err)
		}
	default:
		return fmt.Errorf("raster: unsupported format %v", f)
	}
	return nil
}

// WriteFile encodes img to path, choosing the format from its extension.
func WriteFile(path string, img image.Image) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("raster: %w", err)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("raster: %w", err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// LoadBackground decodes a PNG, JPEG or TGA plan image. The decoder is
// picked by extension: TGA has no magic number, so image.Decode would hand
// it every file.
func LoadBackground(path string) (image.Image, error) {
	var decode func(io.Reader) (image.Image, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		decode = png.Decode
	case ".jpg", ".jpeg":
		decode = jpeg.Decode
	case ".tga":
		decode = tga.Decode
	default:
		return nil, fmt.Errorf("raster: background %s: unsupported extension", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: background: %w", err)
	}
	defer f.Close()
	img, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("raster: decode %s: %w", path, err)
	}
	return img, nil
}
