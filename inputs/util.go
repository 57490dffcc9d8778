package inputs

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Wrap and Filter name texture sampling modes.
type (
	Wrap   string
	Filter string
)

const (
	WrapRepeat Wrap = "repeat"
	WrapClamp  Wrap = "clamp"

	FilterLinear  Filter = "linear"
	FilterNearest Filter = "nearest"
	FilterMipmap  Filter = "mipmap"
)

func getWrapMode(wrap Wrap) int32 {
	switch wrap {
	case WrapRepeat:
		return gl.REPEAT
	case WrapClamp:
		return gl.CLAMP_TO_EDGE
	default:
		return gl.CLAMP_TO_EDGE
	}
}

func getFilterMode(filter Filter) (minFilter, magFilter int32) {
	switch filter {
	case FilterMipmap:
		return gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
	case FilterNearest:
		return gl.NEAREST, gl.NEAREST
	default:
		return gl.LINEAR, gl.LINEAR
	}
}

// newTexture allocates a 2D RGBA8 texture. pix may be nil to allocate
// storage only.
func newTexture(width, height int, pix []uint8, wrap Wrap, filter Filter) uint32 {
	var textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_2D, textureID)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, getWrapMode(wrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, getWrapMode(wrap))
	minFilter, magFilter := getFilterMode(filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)

	// Rows are tightly packed.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	var data unsafe.Pointer
	if len(pix) > 0 {
		data = gl.Ptr(pix)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, data)

	if filter == FilterMipmap {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return textureID
}
