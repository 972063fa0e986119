package detector

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

const jpegQuality = 85

// ErrInvalidFrame marks frame data that could not be decoded as an image.
var ErrInvalidFrame = errors.New("invalid frame data")

// PrepareFrame decodes an encoded frame and re-encodes it as JPEG no wider
// than maxWidth, downscaling when needed. A JPEG frame already within the
// limit passes through unchanged.
func PrepareFrame(data []byte, maxWidth int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	if maxWidth <= 0 {
		maxWidth = DefaultConfig().MaxFrameWidth
	}

	width := img.Bounds().Dx()
	if format == "jpeg" && width <= maxWidth {
		return data, nil
	}

	if width > maxWidth {
		// Height 0 preserves the aspect ratio
		img = resize.Resize(uint(maxWidth), 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	return buf.Bytes(), nil
}
