// Package clipboard moves edited images to and from the system clipboard.
// Images are published as PNG; paste accepts any format imaging decodes.
package clipboard

import (
	"bytes"
	"errors"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

var (
	// ErrNoImage is returned when the clipboard holds no decodable image.
	ErrNoImage = errors.New("clipboard does not contain image data")
	// ErrUnsupported is returned on platforms without a clipboard backend.
	ErrUnsupported = errors.New("clipboard is not supported on this platform")

	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
)

// pasteTargets lists the mime types offered for paste, most preferred first.
var pasteTargets = []string{"image/png", "image/jpeg", "image/gif", "image/bmp", "image/tiff"}

func haveDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

func encodePNG(img image.Image) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrNoImage
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(ErrNoImage, err)
	}
	return img, nil
}

// pickTarget returns the first entry of pasteTargets present in offered.
func pickTarget(offered []string) (string, bool) {
	for _, want := range pasteTargets {
		for _, have := range offered {
			if have == want {
				return want, true
			}
		}
	}
	return "", false
}
