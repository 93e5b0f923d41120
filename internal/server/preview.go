package server

import (
	"bytes"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	maxPreviewDim  = 1024
	previewQuality = 85
)

// scalePreview re-encodes an image as a JPEG bounded to maxPreviewDim on
// its longest side. Images already small enough pass through untouched,
// and an undecodable payload is reported so the caller can stream the
// original bytes instead.
func scalePreview(content []byte) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, "", err
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxPreviewDim && height <= maxPreviewDim {
		return nil, "", errUnscaled
	}

	if width >= height {
		height = height * maxPreviewDim / width
		width = maxPreviewDim
	} else {
		width = width * maxPreviewDim / height
		height = maxPreviewDim
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: previewQuality}); err != nil {
		return nil, "", err
	}
	return out.Bytes(), "image/jpeg", nil
}

type previewError string

func (e previewError) Error() string { return string(e) }

// errUnscaled signals that the original bytes should be served as-is.
const errUnscaled = previewError("image within preview bounds")
