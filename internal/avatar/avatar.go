// Package avatar reads avatar uploads and renders local previews of them.
// Uploads are forwarded unchanged on save; only the preview is resized.
package avatar

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
	"golang.org/x/image/webp"
)

const PreviewSize = 160

var (
	ErrEmpty       = errors.New("avatar file is empty")
	ErrTooLarge    = errors.New("avatar file is too large")
	ErrUnsupported = errors.New("avatar must be png, jpeg, gif or webp")
)

var allowed = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// Pending is a selected file held until the form that carries it is saved.
type Pending struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// Read loads an upload of at most maxSize bytes and checks its type from the
// content, not from the browser-supplied header.
func Read(r io.Reader, filename string, maxSize int64) (Pending, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return Pending{}, errors.Wrap(err, "read avatar")
	}
	if len(raw) == 0 {
		return Pending{}, ErrEmpty
	}
	if int64(len(raw)) > maxSize {
		return Pending{}, ErrTooLarge
	}
	mtype := mimetype.Detect(raw)
	for _, want := range allowed {
		if mtype.Is(want) {
			if filename == "" {
				filename = "avatar" + mtype.Extension()
			}
			return Pending{Filename: filename, ContentType: want, Data: raw}, nil
		}
	}
	return Pending{}, ErrUnsupported
}

func decode(p Pending) (image.Image, error) {
	if p.ContentType == "image/webp" {
		img, err := webp.Decode(bytes.NewReader(p.Data))
		if err != nil {
			return nil, errors.Wrap(err, "decode webp")
		}
		return img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	return img, nil
}

// Square crops the image to its centred square and scales it to size
// pixels, returning PNG bytes.
func Square(p Pending, size int) ([]byte, error) {
	img, err := decode(p)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.New("invalid image dimensions")
	}
	thumb := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	var out bytes.Buffer
	if err := png.Encode(&out, thumb); err != nil {
		return nil, errors.Wrap(err, "encode image")
	}
	return out.Bytes(), nil
}

// Preview renders a square PNG thumbnail as a data URL.
func Preview(p Pending) (string, error) {
	thumb, err := Square(p, PreviewSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(thumb), nil
}
