package thermal

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGDALMetadataXML(t *testing.T) {
	md := TextMetadata{
		"GPS":     "GPSLatitude=[\"33/1\",\"4/1\",\"2049/100\"]\nGPSLatitudeRef=\"N\"",
		"EXIF":    "Make=\"ICI\"",
		"TempFPA": "28.41",
	}
	doc, err := GDALMetadataXML(md)
	require.NoError(t, err)
	assert.Contains(t, doc, `<GDALMetadata><Item name="EXIF">`)

	var got gdalMetadata
	require.NoError(t, xml.Unmarshal([]byte(doc), &got))
	require.Len(t, got.Items, 3)
	assert.Equal(t, []string{"EXIF", "GPS", "TempFPA"}, []string{got.Items[0].Name, got.Items[1].Name, got.Items[2].Name})
	for _, it := range got.Items {
		assert.Equal(t, md[it.Name], it.Value)
	}

	doc, err = GDALMetadataXML(nil)
	require.NoError(t, err)
	assert.Empty(t, doc)
}
