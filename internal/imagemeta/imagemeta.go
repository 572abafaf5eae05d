package imagemeta

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"linkcard/internal/logging"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support
)

// Dimensions holds image width and height in pixels.
type Dimensions struct {
	Width  int
	Height int
}

// FromBytes returns the dimensions of an encoded image without fully
// decoding it. image.DecodeConfig reads only the header, so this is cheap
// enough to call on every layout pass, but callers that need it repeatedly
// should still memoize the result.
func FromBytes(data []byte) (Dimensions, error) {
	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to read image header: %w", err)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return Dimensions{}, fmt.Errorf("degenerate %s dimensions %dx%d", format, config.Width, config.Height)
	}
	return Dimensions{Width: config.Width, Height: config.Height}, nil
}

// FromFile returns the dimensions of an encoded image file without fully
// decoding it.
func FromFile(path string) (Dimensions, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dimensions{}, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, format, err := image.DecodeConfig(file)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to read image header: %w", err)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return Dimensions{}, fmt.Errorf("degenerate %s dimensions %dx%d", format, config.Width, config.Height)
	}
	return Dimensions{Width: config.Width, Height: config.Height}, nil
}
