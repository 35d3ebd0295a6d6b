package thermal

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// TagBlocks are the EXIF and GPS tags of a capture rendered as opaque text.
type TagBlocks struct {
	Exif string
	GPS  string
}

func (t TagBlocks) Metadata() TextMetadata {
	md := TextMetadata{}
	if t.Exif != "" {
		md["EXIF"] = t.Exif
	}
	if t.GPS != "" {
		md["GPS"] = t.GPS
	}
	return md
}

type TagReader interface {
	ReadTags(path string) (TagBlocks, error)
}

type TagPropagator interface {
	PropagateTags(source, destination string) error
}

type ExifReader struct{}

type tagCollector map[exif.FieldName]string

func (c tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c[name] = tag.String()
	return nil
}

func (ExifReader) ReadTags(path string) (TagBlocks, error) {
	f, err := os.Open(path)
	if err != nil {
		return TagBlocks{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return TagBlocks{}, fmt.Errorf("exif: %s: %w", path, err)
	}

	c := tagCollector{}
	if err := x.Walk(c); err != nil {
		return TagBlocks{}, err
	}

	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, string(n))
	}
	sort.Strings(names)

	var ex, gps []string
	for _, n := range names {
		line := n + "=" + c[exif.FieldName(n)]
		if strings.HasPrefix(n, "GPS") {
			gps = append(gps, line)
		} else {
			ex = append(ex, line)
		}
	}
	return TagBlocks{Exif: strings.Join(ex, "\n"), GPS: strings.Join(gps, "\n")}, nil
}

// ExifTool copies every tag of the source onto the destination with the
// exiftool binary.
type ExifTool struct {
	Path string
}

func NewExifTool(path string) *ExifTool {
	if path == "" {
		path = "exiftool"
	}
	return &ExifTool{Path: path}
}

func (e *ExifTool) command(source, destination string) *exec.Cmd {
	return exec.Command(e.Path, "-overwrite_original", "-TagsFromFile", source, destination)
}

func (e *ExifTool) PropagateTags(source, destination string) error {
	out, err := e.command(source, destination).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", e.Path, err, strings.TrimSpace(string(out)))
	}
	return nil
}
