package thermal

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Raster is a single band stored row-major.
type Raster struct {
	Width  int
	Height int
	Data   []float64
}

func NewRaster(width, height int) *Raster {
	return &Raster{Width: width, Height: height, Data: make([]float64, width*height)}
}

// NewRasterFromRows copies a rectangular slice of rows.
func NewRasterFromRows(rows [][]float64) *Raster {
	if len(rows) == 0 {
		return &Raster{}
	}
	r := NewRaster(len(rows[0]), len(rows))
	for y, row := range rows {
		copy(r.Data[y*r.Width:(y+1)*r.Width], row)
	}
	return r
}

func (r *Raster) Empty() bool {
	return r.Width <= 0 || r.Height <= 0 || len(r.Data) == 0
}

func (r *Raster) Value(row, column int) float64 {
	return r.Data[row*r.Width+column]
}

func (r *Raster) Set(row, column int, v float64) {
	r.Data[row*r.Width+column] = v
}

func (r *Raster) Rows() [][]float64 {
	ret := make([][]float64, r.Height)
	for y := range ret {
		ret[y] = r.Data[y*r.Width : (y+1)*r.Width]
	}
	return ret
}

// Stats returns the minimum, mean and maximum of the raster.
func (r *Raster) Stats() (min, mean, max float64) {
	if len(r.Data) == 0 {
		return 0, 0, 0
	}
	return floats.Min(r.Data), stat.Mean(r.Data, nil), floats.Max(r.Data)
}
