package thermal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/maruel/interrupt"
	"github.com/sirupsen/logrus"
)

const DefaultOutputDir = "uav_tif_calibration"

var rasterExtensions = map[string]bool{
	".tif":  true,
	".tiff": true,
}

type Options struct {
	Workers     *int
	Reader      RasterReader
	Writer      RasterWriter
	Metadata    MetadataReader
	Tags        TagReader
	Propagator  TagPropagator
	DisableTags bool
	Logger      logrus.FieldLogger
	// Interrupted is polled before each file; defaults to Ctrl-C state.
	Interrupted func() bool
}

type Pipeline struct {
	workers     int
	reader      RasterReader
	writer      RasterWriter
	metadata    MetadataReader
	tags        TagReader
	propagator  TagPropagator
	log         logrus.FieldLogger
	interrupted func() bool
}

func NewPipeline(opts Options) *Pipeline {
	p := &Pipeline{
		workers:     1,
		reader:      opts.Reader,
		writer:      opts.Writer,
		metadata:    opts.Metadata,
		tags:        opts.Tags,
		propagator:  opts.Propagator,
		log:         opts.Logger,
		interrupted: opts.Interrupted,
	}

	if opts.Workers != nil && *opts.Workers > 1 {
		p.workers = *opts.Workers
	}

	geotiff := NewGeoTIFF()
	if p.reader == nil {
		p.reader = geotiff
	}
	if p.writer == nil {
		p.writer = geotiff
	}
	if p.metadata == nil {
		p.metadata = NewCSVMetadata()
	}
	if p.tags == nil {
		p.tags = ExifReader{}
	}
	if opts.DisableTags {
		p.propagator = nil
	} else if p.propagator == nil {
		p.propagator = NewExifTool("")
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	if p.interrupted == nil {
		p.interrupted = interrupt.IsSet
	}
	return p
}

// FileResult is the outcome for one input raster. Err is nil on success.
type FileResult struct {
	Source  string
	Output  string
	TempFPA float64
	Err     error
}

func (r FileResult) OK() bool {
	return r.Err == nil
}

type Report struct {
	InputDir  string
	OutputDir string
	Results   []FileResult
}

func (r *Report) Processed() []FileResult {
	return r.filter(true)
}

func (r *Report) Skipped() []FileResult {
	return r.filter(false)
}

func (r *Report) filter(ok bool) []FileResult {
	var ret []FileResult
	for _, res := range r.Results {
		if res.OK() == ok {
			ret = append(ret, res)
		}
	}
	return ret
}

// Discover lists rasters directly under dir, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var ret []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if rasterExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			ret = append(ret, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(ret)
	return ret, nil
}

// Run calibrates every raster in inputDir into outputDir. Per-file failures
// are recorded in the report and never abort the batch; the returned error is
// set only when the batch could not start.
func (p *Pipeline) Run(inputDir, outputDir string) (*Report, error) {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	fi, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("input directory: %s is not a directory", inputDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}

	files, err := Discover(inputDir)
	if err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	}

	report := &Report{InputDir: inputDir, OutputDir: outputDir, Results: make([]FileResult, len(files))}

	idx := make(chan int)
	var wg sync.WaitGroup
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				report.Results[i] = p.processFile(files[i], outputDir)
			}
		}()
	}
	for i := range files {
		idx <- i
	}
	close(idx)
	wg.Wait()

	p.log.WithFields(logrus.Fields{
		"processed": len(report.Processed()),
		"skipped":   len(report.Skipped()),
		"output":    outputDir,
	}).Info("batch complete")
	return report, nil
}

func (p *Pipeline) processFile(src, outputDir string) FileResult {
	name := filepath.Base(src)
	res := FileResult{Source: src}
	log := p.log.WithField("file", name)

	if p.interrupted() {
		res.Err = ErrInterrupted
		log.WithError(res.Err).Warn("skipping file")
		return res
	}

	if err := p.calibrateFile(&res, log, outputDir); err != nil {
		res.Err = err
		if res.Output != "" {
			p.discard(res.Output, log)
			res.Output = ""
		}
		log.WithError(err).Warn("skipping file")
	}
	return res
}

func (p *Pipeline) calibrateFile(res *FileResult, log logrus.FieldLogger, outputDir string) error {
	meta, err := p.metadata.ReadMetadata(SidecarPath(res.Source))
	if err != nil {
		if !errors.Is(err, ErrMissingMetadata) {
			err = classify(ErrMalformedMetadata, err)
		}
		return err
	}
	res.TempFPA = meta.TempFPA
	log = log.WithField("fpa", meta.TempFPA)
	log.Info("calibrating")
	if !InRange(meta.TempFPA) {
		log.Warnf("fpa temperature outside calibrated range [%g, %g], extrapolating", MinReferenceTemperature, MaxReferenceTemperature)
	}

	raw, georef, err := p.reader.Read(res.Source)
	if err != nil {
		return classify(ErrUnreadableRaster, err)
	}

	tc, err := Calibrate(raw, meta.TempFPA)
	if err != nil {
		return err
	}
	min, mean, max := tc.Stats()
	log.WithFields(logrus.Fields{"min": min, "mean": mean, "max": max}).Debug("calibrated")

	tags, err := p.tags.ReadTags(res.Source)
	if err != nil {
		log.WithError(err).Warn("no tags to embed")
	}
	md := tags.Metadata()
	md[FPAColumn] = strconv.FormatFloat(meta.TempFPA, 'g', -1, 64)

	out := filepath.Join(outputDir, filepath.Base(res.Source))
	res.Output = out
	if err := p.writer.Write(out, tc, georef, md); err != nil {
		return classify(ErrWriteFailure, err)
	}

	if p.propagator != nil {
		if err := p.propagator.PropagateTags(res.Source, out); err != nil {
			return classify(ErrWriteFailure, err)
		}
		if tags, err := p.tags.ReadTags(out); err == nil {
			log.WithField("gps", tags.GPS).Debug("tags copied")
		} else {
			log.WithError(err).Debug("reading back tags")
		}
	}
	return nil
}

// discard removes a partial output so only finished files remain.
func (p *Pipeline) discard(out string, log logrus.FieldLogger) {
	if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Error("removing partial output")
	}
}
