// inputs/image.go
package inputs

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var _ IChannel = (*ImageChannel)(nil)

// ImageChannel is a static image texture.
type ImageChannel struct {
	textureID  uint32
	resolution [2]int
}

// LoadImage decodes a PNG, JPEG, BMP or WebP file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}
	slog.Debug("image decoded", "path", path, "format", format, "size", img.Bounds().Size())
	return img, nil
}

// vflip vertically flips the provided RGBA image so the first row of the
// file lands at the top of the texture (v = 1).
func vflip(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	flipped := image.NewRGBA(bounds)
	height := bounds.Dy()

	rowSize := bounds.Dx() * 4
	for y := 0; y < height; y++ {
		srcRow := src.Pix[((height-1)-y)*src.Stride:]
		dstRow := flipped.Pix[y*flipped.Stride:]
		copy(dstRow, srcRow[:rowSize])
	}
	return flipped
}

// toRGBA converts img to a tightly packed, vertically flipped RGBA image.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return vflip(rgba)
}

// NewImageChannel uploads img as a linear filtered, edge clamped texture.
func NewImageChannel(img image.Image) (*ImageChannel, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	rgba := toRGBA(img)
	size := rgba.Rect.Size()
	if size.X == 0 || size.Y == 0 {
		return nil, fmt.Errorf("input image is empty")
	}

	textureID := newTexture(size.X, size.Y, rgba.Pix, WrapClamp, FilterLinear)
	return &ImageChannel{
		textureID:  textureID,
		resolution: [2]int{size.X, size.Y},
	}, nil
}

// LoadImageChannel decodes path and uploads it.
func LoadImageChannel(path string) (*ImageChannel, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return NewImageChannel(img)
}

func (c *ImageChannel) Update() {}

func (c *ImageChannel) GetTextureID() uint32 {
	return c.textureID
}

func (c *ImageChannel) ChannelRes() [2]int {
	return c.resolution
}

func (c *ImageChannel) Destroy() {
	gl.DeleteTextures(1, &c.textureID)
}
