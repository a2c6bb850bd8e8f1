package face

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
)

// EncodePGM serializes a grayscale image as binary PGM (P5, maxval 255).
func EncodePGM(img *image.Gray) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var buf bytes.Buffer
	buf.Grow(w*h + 20)
	fmt.Fprintf(&buf, "P5\n%d %d\n255\n", w, h)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		buf.Write(img.Pix[off : off+w])
	}
	return buf.Bytes()
}

// DecodePGM parses a binary PGM (P5, maxval 255) image.
func DecodePGM(data []byte) (*image.Gray, error) {
	src := bytes.NewReader(data)
	r := bufio.NewReader(src)

	var magic string
	var w, h, maxval int
	if _, err := fmt.Fscan(r, &magic, &w, &h, &maxval); err != nil {
		return nil, fmt.Errorf("pgm header: %w", err)
	}
	if magic != "P5" {
		return nil, fmt.Errorf("pgm: unsupported magic %q", magic)
	}
	if maxval != 255 {
		return nil, fmt.Errorf("pgm: unsupported maxval %d", maxval)
	}
	if w <= 0 || h <= 0 {
		return nil, errors.New("pgm: empty image")
	}
	// Exactly one whitespace byte separates the header from the raster.
	if _, err := r.ReadByte(); err != nil {
		return nil, fmt.Errorf("pgm header: %w", err)
	}

	// The raster must fit in what is left of the input.
	left := r.Buffered() + src.Len()
	if w > left || h > left/w {
		return nil, fmt.Errorf("pgm: %dx%d raster exceeds %d bytes of input", w, h, left)
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	if _, err := io.ReadFull(r, img.Pix); err != nil {
		return nil, fmt.Errorf("pgm raster: %w", err)
	}
	return img, nil
}
