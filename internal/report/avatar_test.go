package report_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"eduquest-service/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareAvatar_CropsToCircle(t *testing.T) {
	out, err := report.PrepareAvatar(solidPNG(t, 100, 50), 32)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())

	_, _, _, cornerAlpha := img.At(0, 0).RGBA()
	assert.Zero(t, cornerAlpha)
	r, _, _, centerAlpha := img.At(16, 16).RGBA()
	assert.NotZero(t, centerAlpha)
	assert.Greater(t, r, uint32(0))
}

func TestPrepareAvatar_RejectsGarbage(t *testing.T) {
	_, err := report.PrepareAvatar([]byte("not an image"), 32)
	require.Error(t, err)
}

func TestAvatarLoader_DataURL(t *testing.T) {
	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(solidPNG(t, 10, 10))

	out, err := report.NewAvatarLoader(nil, 16).Load(context.Background(), ref)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Width)
}

func TestAvatarLoader_HTTP(t *testing.T) {
	raw := solidPNG(t, 20, 20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(raw)
	}))
	defer srv.Close()

	loader := report.NewAvatarLoader(srv.Client(), 24)
	out, err := loader.Load(context.Background(), srv.URL+"/me.png")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = loader.Load(context.Background(), srv.URL+"/missing.png")
	require.Error(t, err)
}

func TestAvatarLoader_UnsupportedReference(t *testing.T) {
	_, err := report.NewAvatarLoader(nil, 16).Load(context.Background(), "ftp://example.com/a.png")
	require.Error(t, err)

	_, err = report.NewAvatarLoader(nil, 16).Load(context.Background(), "data:image/png;base64")
	require.Error(t, err)
}
