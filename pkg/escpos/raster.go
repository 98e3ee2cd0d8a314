package escpos

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// ErrImageUnavailable is returned when the source bytes are not a decodable
// image. Callers treat it as an absent logo, never as a render failure.
var ErrImageUnavailable = errors.New("escpos: image unavailable")

// Raster is a 1-bit-per-pixel monochrome bitmap ready for RasterImage.
type Raster struct {
	Bits       []byte
	WidthBytes int
	Height     int
}

// Rasterize decodes an image, downscales it proportionally if wider than
// maxWidthPx, and converts it to 1bpp via a luminance threshold at the
// midpoint of the 8-bit range. Bits are packed MSB-first, one row padded to
// a whole number of bytes, dark pixels set.
func Rasterize(imageBytes []byte, maxWidthPx int) (*Raster, error) {
	src, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}

	gray := toGray(src)
	if maxWidthPx > 0 && gray.Bounds().Dx() > maxWidthPx {
		gray = scaleGray(gray, maxWidthPx)
	}

	width := gray.Bounds().Dx()
	height := gray.Bounds().Dy()
	widthBytes := (width + 7) / 8

	bits := make([]byte, widthBytes*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if gray.GrayAt(gray.Bounds().Min.X+x, gray.Bounds().Min.Y+y).Y < 128 {
				bits[y*widthBytes+x/8] |= 1 << (7 - uint(x%8))
			}
		}
	}

	return &Raster{Bits: bits, WidthBytes: widthBytes, Height: height}, nil
}

func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	b := src.Bounds()
	g := image.NewGray(b)
	draw.Draw(g, b, src, b.Min, draw.Src)
	return g
}

func scaleGray(src *image.Gray, maxWidth int) *image.Gray {
	b := src.Bounds()
	ratio := float64(maxWidth) / float64(b.Dx())
	h := int(float64(b.Dy()) * ratio)
	if h < 1 {
		h = 1
	}
	dst := image.NewGray(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
