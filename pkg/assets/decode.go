package assets

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/iamvince24/serenity-canvas/pkg/errors"
)

// Image is a decoded image handle: the blob's intrinsic dimensions and
// format, enough for layout without holding pixel data.
type Image struct {
	Width    int
	Height   int
	Format   string
	MimeType string
}

// DecodeFunc turns a blob into an Image.
type DecodeFunc func(blob []byte) (*Image, error)

var formatMime = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}

// Decode reads the header of blob and reports its dimensions and format.
// PNG, JPEG, GIF, WebP, BMP and TIFF are recognized.
func Decode(blob []byte) (*Image, error) {
	if len(blob) == 0 {
		return nil, errors.New(errors.ErrCodeDecodeFailed, "empty image data")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(blob))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "decode image")
	}
	mime, ok := formatMime[format]
	if !ok {
		mime = "image/" + format
	}
	return &Image{Width: cfg.Width, Height: cfg.Height, Format: format, MimeType: mime}, nil
}
