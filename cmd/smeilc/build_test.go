package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_RunBuild_EmitsPlannedFilesForSimpleNetwork(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")

	src := "network top() {\n}\n"
	path := filepath.Join(srcDir, "top.smeil")
	assert.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	code, err := runBuild([]string{"--out", outDir, path})
	assert.NoError(t, err)
	assert.Equal(t, ExitSuccess, code)

	_, err = os.Stat(filepath.Join(outDir, "build.toml"))
	assert.NoError(t, err)
}

func Test_RunBuild_MissingFilenameIsOptionError(t *testing.T) {
	code, err := runBuild(nil)
	assert.Error(t, err)
	assert.Equal(t, ExitOptionError, code)
}
