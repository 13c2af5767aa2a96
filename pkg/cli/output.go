package cli

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SaveImage writes img to path, picking the encoder from the extension.
// Supports .png, .jpg/.jpeg and .gif; anything else is written as PNG.
func SaveImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeImage(f, filepath.Ext(path), img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeImage encodes img for the given file extension.
func EncodeImage(w io.Writer, ext string, img image.Image) error {
	var err error
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 92})
	case ".gif":
		err = gif.Encode(w, img, nil)
	default:
		err = png.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", strings.TrimPrefix(ext, "."), err)
	}
	return nil
}
