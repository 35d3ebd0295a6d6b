// calibrate converts a directory of raw UAV thermal TIFFs to calibrated
// temperature GeoTIFFs.
//
// Each raw image IMG.tif needs a ';' separated sidecar IMG_meta.csv holding
// the TempFPA column. Tags of the raw image are copied onto the output with
// exiftool unless -no-tags is given.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/flywave/go-thermal"
	"github.com/maruel/interrupt"
	"github.com/sirupsen/logrus"
)

// errUsage marks errors already reported by the flag set.
var errUsage = errors.New("usage")

type config struct {
	input    string
	outdir   string
	workers  int
	exiftool string
	noTags   bool
	verbose  bool
}

// parseArgs accepts flags before and after the positional input directory.
func parseArgs(args []string) (*config, error) {
	c := &config{}
	fs := flag.NewFlagSet("calibrate", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: calibrate <input_dir> [-o|--outdir <output_dir>]\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&c.outdir, "o", thermal.DefaultOutputDir, "output directory")
	fs.StringVar(&c.outdir, "outdir", thermal.DefaultOutputDir, "output directory")
	fs.IntVar(&c.workers, "workers", 1, "number of images calibrated concurrently")
	fs.StringVar(&c.exiftool, "exiftool", "exiftool", "path to the exiftool binary")
	fs.BoolVar(&c.noTags, "no-tags", false, "do not copy tags onto outputs with exiftool")
	fs.BoolVar(&c.verbose, "v", false, "verbose mode")

	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
	if len(pos) != 1 {
		fs.Usage()
		return nil, fmt.Errorf("%w: supply exactly one input directory", errUsage)
	}
	c.input = pos[0]
	return c, nil
}

// exitCode maps mainImpl's error to the process status: 0 for a completed
// batch, 2 for bad usage, 1 for anything fatal.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		return 1
	}
}

func mainImpl(args []string) error {
	c, err := parseArgs(args)
	if err != nil {
		return err
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if c.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	interrupt.HandleCtrlC()

	p := thermal.NewPipeline(thermal.Options{
		Workers:     &c.workers,
		Propagator:  thermal.NewExifTool(c.exiftool),
		DisableTags: c.noTags,
		Logger:      logrus.StandardLogger(),
	})
	_, err = p.Run(c.input, c.outdir)
	return err
}

func main() {
	err := mainImpl(os.Args[1:])
	if err != nil && exitCode(err) == 1 {
		fmt.Fprintf(os.Stderr, "\ncalibrate: %s.\n", err)
	}
	os.Exit(exitCode(err))
}
