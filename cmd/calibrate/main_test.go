package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/flywave/go-thermal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	data := []struct {
		args    []string
		input   string
		outdir  string
		workers int
	}{
		{[]string{"raw"}, "raw", thermal.DefaultOutputDir, 1},
		{[]string{"raw", "-o", "out"}, "raw", "out", 1},
		{[]string{"raw", "--outdir", "out"}, "raw", "out", 1},
		{[]string{"-outdir=out", "raw", "-workers", "4"}, "raw", "out", 4},
		{[]string{"-workers", "2", "raw"}, "raw", thermal.DefaultOutputDir, 2},
	}
	for _, d := range data {
		c, err := parseArgs(d.args)
		require.NoError(t, err, d.args)
		assert.Equal(t, d.input, c.input, d.args)
		assert.Equal(t, d.outdir, c.outdir, d.args)
		assert.Equal(t, d.workers, c.workers, d.args)
	}
}

func TestParseArgsErrors(t *testing.T) {
	stderr := os.Stderr
	devnull, err := os.Open(os.DevNull)
	require.NoError(t, err)
	os.Stderr = devnull
	defer func() {
		os.Stderr = stderr
		devnull.Close()
	}()

	for _, args := range [][]string{{}, {"a", "b"}, {"raw", "-bogus"}, {"raw", "-workers", "x"}} {
		_, err := parseArgs(args)
		assert.ErrorIs(t, err, errUsage, args)
		assert.Equal(t, 2, exitCode(err), args)
	}

	_, err = parseArgs([]string{"-h"})
	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Equal(t, 0, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("input directory: no such file")))

	err := mainImpl([]string{filepath.Join(t.TempDir(), "missing"), "-no-tags"})
	assert.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}
