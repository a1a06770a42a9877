package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestBlurHashFromBytes(t *testing.T) {
	hash, err := BlurHashFromBytes(encodePNG(t, 460, 215))
	require.NoError(t, err)

	// 4x3 components: 1 size + 1 max AC + 4 DC + 2*(4*3-1) AC characters.
	assert.Len(t, hash, 28)

	again, err := BlurHashFromBytes(encodePNG(t, 460, 215))
	require.NoError(t, err)
	assert.Equal(t, hash, again, "hash must be deterministic")
}

func TestBlurHashFromBytes_Invalid(t *testing.T) {
	_, err := BlurHashFromBytes(nil)
	assert.Error(t, err)

	_, err = BlurHashFromBytes([]byte("<html>not an image</html>"))
	assert.Error(t, err)
}

func TestResizeForBlurHash(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 32, 16))
	assert.Equal(t, small.Bounds(), resizeForBlurHash(small).Bounds())

	wide := image.NewRGBA(image.Rect(0, 0, 460, 215))
	b := resizeForBlurHash(wide).Bounds()
	assert.Equal(t, 64, b.Dx())
	assert.Equal(t, 29, b.Dy())

	tall := image.NewRGBA(image.Rect(0, 0, 10, 1000))
	b = resizeForBlurHash(tall).Bounds()
	assert.Equal(t, 64, b.Dy())
	assert.Equal(t, 1, b.Dx())
}
