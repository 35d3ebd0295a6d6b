package thermal

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/flywave/go-cog"
	"github.com/flywave/go-geo"
	vec2d "github.com/flywave/go3d/float64/vec2"
	"golang.org/x/image/tiff"
)

var epsg4326 geo.Proj

func init() {
	epsg4326 = geo.NewProj(4326)
}

// Georeference locates a raster on the ground. A nil *Georeference means the
// source carried none; the output then gets a zero geotransform in EPSG:4326.
type Georeference struct {
	Bounds    vec2d.Rect
	PixelSize [2]float64
	EPSG      int
}

func (g *Georeference) Proj() geo.Proj {
	if g == nil || g.EPSG == 0 || g.EPSG == 4326 {
		return epsg4326
	}
	return geo.NewProj(g.EPSG)
}

func (g *Georeference) BBox() vec2d.Rect {
	if g == nil {
		return vec2d.Rect{}
	}
	return g.Bounds
}

type RasterReader interface {
	// Read returns band 1 of the raster at path and its georeference, if any.
	Read(path string) (*Raster, *Georeference, error)
}

type RasterWriter interface {
	Write(path string, r *Raster, georef *Georeference, md TextMetadata) error
}

// GeoTIFF reads and writes single band GeoTIFFs. Rasters that cannot be
// opened as GeoTIFF are decoded as plain TIFF without georeference.
type GeoTIFF struct{}

func NewGeoTIFF() *GeoTIFF {
	return &GeoTIFF{}
}

func (g *GeoTIFF) Read(path string) (*Raster, *Georeference, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnreadableRaster, err)
	}

	r, georef, err := readCOG(path)
	if err == nil {
		return r, georef, nil
	}

	r, terr := decodeTIFF(path)
	if terr != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v; %v", ErrUnreadableRaster, path, err, terr)
	}
	return r, nil, nil
}

func readCOG(path string) (r *Raster, georef *Georeference, err error) {
	defer func() {
		if e := recover(); e != nil {
			r, georef, err = nil, nil, fmt.Errorf("cog: %v", e)
		}
	}()

	rd := cog.Read(path)
	if rd == nil || len(rd.Data) == 0 {
		return nil, nil, fmt.Errorf("cog: no bands in %s", path)
	}

	si := rd.GetSize(0)
	width, height := int(si[0]), int(si[1])

	data, err := samplesToFloat64(rd.Data[0])
	if err != nil {
		return nil, nil, err
	}
	if width*height == 0 || len(data) != width*height {
		return nil, nil, fmt.Errorf("cog: band size %d does not match %dx%d", len(data), width, height)
	}

	r = &Raster{Width: width, Height: height, Data: data}

	epsg, err := rd.GetEPSGCode(0)
	if err != nil {
		epsg = 0
	}
	return r, resolveGeoreference(rd.GetBounds(0), rd.GetPixelSize(0), int(epsg)), nil
}

// resolveGeoreference keeps a geotransform that lacks a CRS, assuming
// EPSG:4326. A source with neither has no georeference.
func resolveGeoreference(bounds vec2d.Rect, pixelSize [2]float64, epsg int) *Georeference {
	if epsg == 0 {
		if bounds == (vec2d.Rect{}) {
			return nil
		}
		epsg = 4326
	}
	return &Georeference{Bounds: bounds, PixelSize: pixelSize, EPSG: epsg}
}

func samplesToFloat64(band interface{}) ([]float64, error) {
	switch d := band.(type) {
	case []float64:
		ret := make([]float64, len(d))
		copy(ret, d)
		return ret, nil
	case []float32:
		return convertSamples(d), nil
	case []uint8:
		return convertSamples(d), nil
	case []uint16:
		return convertSamples(d), nil
	case []uint32:
		return convertSamples(d), nil
	case []int8:
		return convertSamples(d), nil
	case []int16:
		return convertSamples(d), nil
	case []int32:
		return convertSamples(d), nil
	default:
		return nil, fmt.Errorf("unsupported sample type %T", band)
	}
}

type sample interface {
	~uint8 | ~uint16 | ~uint32 | ~int8 | ~int16 | ~int32 | ~float32
}

func convertSamples[T sample](d []T) []float64 {
	ret := make([]float64, len(d))
	for i, v := range d {
		ret[i] = float64(v)
	}
	return ret
}

func decodeTIFF(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, err
	}
	return rasterFromImage(img), nil
}

func rasterFromImage(img image.Image) *Raster {
	b := img.Bounds()
	r := NewRaster(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var v float64
			switch i := img.(type) {
			case *image.Gray16:
				v = float64(i.Gray16At(x, y).Y)
			case *image.Gray:
				v = float64(i.GrayAt(x, y).Y)
			default:
				v = float64(color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y)
			}
			r.Set(y-b.Min.Y, x-b.Min.X, v)
		}
	}
	return r
}

func (g *GeoTIFF) Write(path string, r *Raster, georef *Georeference, md TextMetadata) (err error) {
	if r == nil || r.Empty() {
		return fmt.Errorf("%w: empty raster for %s", ErrWriteFailure, path)
	}

	doc, err := GDALMetadataXML(md)
	if err != nil {
		return fmt.Errorf("%w: %s: metadata: %w", ErrWriteFailure, path, err)
	}

	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("%w: %s: cog: %v", ErrWriteFailure, path, e)
		}
	}()

	rect := image.Rect(0, 0, r.Width, r.Height)
	src := &metadataSource{TileSource: cog.NewSource(r.Data, &rect, cog.CTLZW), metadata: doc}
	si := [2]uint32{uint32(r.Width), uint32(r.Height)}

	if err := cog.WriteTile(path, src, georef.BBox(), georef.Proj(), si, nil); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailure, path, err)
	}
	return nil
}
