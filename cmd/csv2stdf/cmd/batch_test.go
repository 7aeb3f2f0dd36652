package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/batch"
)

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	inDir := filepath.Join(dir, "lots")
	require.NoError(t, os.Mkdir(inDir, 0750))
	writeFile(t, inDir, "a.csv", passingCSV)
	writeFile(t, inDir, "b.CSV", failingCSV)
	writeFile(t, inDir, "notes.txt", "ignored")
	outDir := filepath.Join(dir, "stdf")

	res := execute(t, "", "batch", inDir, "-d", outDir, "-j", "2")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Converted 2 of 2 files")
	assert.FileExists(t, filepath.Join(outDir, "a.stdf"))
	assert.FileExists(t, filepath.Join(outDir, "b.stdf"))
	assert.NoFileExists(t, filepath.Join(outDir, "notes.stdf"))
}

func TestBatchCommand_IsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", passingCSV)
	bad := writeFile(t, dir, "bad.csv", "A\n")
	outDir := filepath.Join(dir, "out")

	res := execute(t, "", "batch", good, bad, "-d", outDir)
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, batch.ErrFailed)
	assert.Contains(t, res.stdout, "Converted 1 of 2 files")
	assert.Contains(t, res.stderr, "FAILED  "+bad)
	assert.FileExists(t, filepath.Join(outDir, "good.stdf"))
	assert.NoFileExists(t, filepath.Join(outDir, "bad.stdf"))
}

func TestBatchCommand_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing input", func(t *testing.T) {
		res := execute(t, "", "batch", filepath.Join(dir, "absent.csv"))
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "invalid input")
	})

	t.Run("empty directory", func(t *testing.T) {
		empty := filepath.Join(dir, "empty")
		require.NoError(t, os.Mkdir(empty, 0750))
		res := execute(t, "", "batch", empty)
		assert.ErrorIs(t, res.err, batch.ErrNoJobs)
	})

	t.Run("duplicate outputs", func(t *testing.T) {
		a := filepath.Join(dir, "x")
		b := filepath.Join(dir, "y")
		require.NoError(t, os.Mkdir(a, 0750))
		require.NoError(t, os.Mkdir(b, 0750))
		res := execute(t, "", "batch", writeFile(t, a, "lot.csv", passingCSV), writeFile(t, b, "lot.csv", passingCSV))
		assert.ErrorIs(t, res.err, batch.ErrDuplicateOutput)
	})
}
