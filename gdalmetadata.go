package thermal

import (
	"encoding/xml"
	"io"
	"sort"

	"github.com/flywave/go-cog"
)

// TextMetadata is attached to a written raster as default-domain GDAL
// metadata items (TIFF tag 42112).
type TextMetadata map[string]string

type gdalMetadata struct {
	XMLName xml.Name           `xml:"GDALMetadata"`
	Items   []gdalMetadataItem `xml:"Item"`
}

type gdalMetadataItem struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// GDALMetadataXML renders md as the document GDAL stores in the
// GDAL_METADATA tag. Items are sorted by name.
func GDALMetadataXML(md TextMetadata) (string, error) {
	if len(md) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := gdalMetadata{}
	for _, k := range keys {
		doc.Items = append(doc.Items, gdalMetadataItem{Name: k, Value: md[k]})
	}
	buf, err := xml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// metadataSource stamps the GDAL_METADATA tag on every IFD it encodes.
type metadataSource struct {
	cog.TileSource
	metadata string
}

func (s *metadataSource) Encode(w io.Writer, ifd *cog.IFD) (uint32, *cog.IFD, error) {
	if s.metadata != "" {
		ifd.GDALMetaData = s.metadata
	}
	return s.TileSource.Encode(w, ifd)
}
