package avatar

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestReadDetectsType(t *testing.T) {
	p, err := Read(bytes.NewReader(pngBytes(t, 10, 10)), "me.jpg", 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "image/png", p.ContentType)
	assert.Equal(t, "me.jpg", p.Filename)

	_, err = Read(strings.NewReader("plain text"), "x.png", 1<<20)
	require.ErrorIs(t, err, ErrUnsupported)

	_, err = Read(strings.NewReader(""), "x.png", 1<<20)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestReadEnforcesLimit(t *testing.T) {
	data := pngBytes(t, 40, 40)
	_, err := Read(bytes.NewReader(data), "big.png", int64(len(data)-1))
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = Read(bytes.NewReader(data), "exact.png", int64(len(data)))
	require.NoError(t, err)
}

func TestPreviewIsSquareThumbnail(t *testing.T) {
	p, err := Read(bytes.NewReader(pngBytes(t, 300, 120)), "wide.png", 1<<20)
	require.NoError(t, err)

	url, err := Preview(p)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, PreviewSize, img.Bounds().Dx())
	assert.Equal(t, PreviewSize, img.Bounds().Dy())
}
