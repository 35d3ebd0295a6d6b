package thermal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	MetadataSuffix    = "_meta.csv"
	MetadataDelimiter = ';'
	FPAColumn         = "TempFPA"
)

// CaptureMetadata is the first record of a capture's sidecar file.
type CaptureMetadata struct {
	TempFPA float64
	Fields  map[string]string
}

type MetadataReader interface {
	ReadMetadata(path string) (*CaptureMetadata, error)
}

// SidecarPath returns the metadata file paired with a raster:
// IMG_0001.tif -> IMG_0001_meta.csv.
func SidecarPath(raster string) string {
	return strings.TrimSuffix(raster, filepath.Ext(raster)) + MetadataSuffix
}

type CSVMetadata struct {
	Delimiter rune
	Column    string
}

func NewCSVMetadata() *CSVMetadata {
	return &CSVMetadata{Delimiter: MetadataDelimiter, Column: FPAColumn}
}

func (m *CSVMetadata) ReadMetadata(path string) (*CaptureMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingMetadata, filepath.Base(path))
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedMetadata, err)
	}
	defer f.Close()
	return m.parse(f, filepath.Base(path))
}

func (m *CSVMetadata) parse(r io.Reader, name string) (*CaptureMetadata, error) {
	cr := csv.NewReader(r)
	cr.Comma = m.Delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading header: %v", ErrMalformedMetadata, name, err)
	}
	row, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading first record: %v", ErrMalformedMetadata, name, err)
	}

	fields := make(map[string]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if i < len(row) {
			fields[h] = strings.TrimSpace(row[i])
		} else {
			fields[h] = ""
		}
	}

	v, ok := fields[m.Column]
	if !ok {
		return nil, fmt.Errorf("%w: %s: no %s column", ErrMalformedMetadata, name, m.Column)
	}
	fpa, err := strconv.ParseFloat(v, 64)
	if err != nil || !isFinite(fpa) {
		return nil, fmt.Errorf("%w: %s: %s=%q is not a number", ErrMalformedMetadata, name, m.Column, v)
	}
	return &CaptureMetadata{TempFPA: fpa, Fields: fields}, nil
}
