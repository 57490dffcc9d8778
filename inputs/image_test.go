package inputs

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func twoRowImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 1, color.NRGBA{0, 0, 255, 255})
	return img
}

func TestToRGBAFlipsRows(t *testing.T) {
	rgba := toRGBA(twoRowImage())

	// The file's top row ends up last, which GL samples at v = 1.
	if got := rgba.RGBAAt(0, 0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("expected blue first row, got %v", got)
	}
	if got := rgba.RGBAAt(1, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("expected red last row, got %v", got)
	}
}

func TestToRGBANormalisesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 9))
	rgba := toRGBA(src)
	if rgba.Rect.Min != (image.Point{}) || rgba.Rect.Dx() != 3 || rgba.Rect.Dy() != 4 {
		t.Errorf("expected 3x4 image at origin, got %v", rgba.Rect)
	}
	if len(rgba.Pix) != 3*4*4 {
		t.Errorf("expected tightly packed pixels, got %d bytes", len(rgba.Pix))
	}
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picture.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, twoRowImage()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Errorf("expected 2x2, got %v", img.Bounds())
	}

	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for a missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(bad); err == nil {
		t.Error("expected error for undecodable data")
	}
}
