package processor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int, fill color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestPreprocessImageDownscales(t *testing.T) {
	data := encodePNG(t, 400, 200, color.White)

	out, mime, err := PreprocessImage(data, "image/png", 100)
	if err != nil {
		t.Fatalf("PreprocessImage: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("size = %dx%d, want 100x50", b.Dx(), b.Dy())
	}
}

func TestPreprocessImageReencodesAsJPEG(t *testing.T) {
	data := encodePNG(t, 20, 20, color.Gray{Y: 90})

	_, mime, err := PreprocessImage(data, "", 0)
	if err != nil {
		t.Fatalf("PreprocessImage: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", mime)
	}
}

func TestPreprocessImageRejectsGarbage(t *testing.T) {
	if _, _, err := PreprocessImage([]byte("not an image"), "image/jpeg", 0); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAnalyzeImageQuality(t *testing.T) {
	flat := image.NewGray(image.Rect(0, 0, 50, 50))
	for i := range flat.Pix {
		flat.Pix[i] = 128
	}

	contrasty := image.NewGray(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			if x < 25 {
				contrasty.SetGray(x, y, color.Gray{Y: 0})
			} else {
				contrasty.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	if analyzeImageQuality(contrasty) <= analyzeImageQuality(flat) {
		t.Error("high-contrast image should score above a flat one")
	}
}
