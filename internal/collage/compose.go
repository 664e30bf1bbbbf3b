package collage

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Collage is a rendered grid of album artwork.
type Collage struct {
	Image      *image.RGBA
	GridDim    int        // Cells per side
	CellWidth  int        // Width of the first image
	CellHeight int        // Height of the first image
	Count      int        // Cells that received artwork
	Background color.RGBA // Fill of the remaining cells
}

// Width returns the canvas width, CellWidth × GridDim.
func (c *Collage) Width() int {
	return c.Image.Bounds().Dx()
}

// Height returns the canvas height, CellHeight × GridDim.
func (c *Collage) Height() int {
	return c.Image.Bounds().Dy()
}

// Compose lays images onto a gridDim×gridDim canvas in row-major order.
//
// Every cell takes the dimensions of images[0]; the other images are not
// checked or scaled and are clipped to their cell. Image i lands at column
// i mod gridDim, row i div gridDim. Cells without an image keep the
// background color. Images past gridDim² are ignored.
func Compose(images []image.Image, gridDim int, background color.RGBA) (*Collage, error) {
	if gridDim <= 0 {
		return nil, errors.New("collage: grid dimension must be positive")
	}
	if len(images) == 0 {
		return nil, errors.New("collage: no images to compose")
	}

	first := images[0].Bounds()
	w, h := first.Dx(), first.Dy()
	if w == 0 || h == 0 {
		return nil, errors.New("collage: first image is empty")
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w*gridDim, h*gridDim))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	cells := gridDim * gridDim
	count := 0
	for i, img := range images {
		if i >= cells {
			break
		}
		col := i % gridDim
		row := i / gridDim
		cell := image.Rect(col*w, row*h, (col+1)*w, (row+1)*h)
		draw.Draw(canvas, cell, img, img.Bounds().Min, draw.Over)
		count++
	}

	return &Collage{
		Image:      canvas,
		GridDim:    gridDim,
		CellWidth:  w,
		CellHeight: h,
		Count:      count,
		Background: background,
	}, nil
}
