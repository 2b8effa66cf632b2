//go:build unix

package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadBuildProps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.prop")
	content := "# begin build properties\nro.build.version.release=14\nro.build.version.sdk=34\nro.product.model=Pixel 8\nro.other=x\nbroken line\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write build.prop: %v", err)
	}

	props := readBuildProps(path, "ro.build.version.sdk", "ro.product.model", "ro.missing")
	assert.Equal(t, map[string]string{
		"ro.build.version.sdk": "34",
		"ro.product.model":     "Pixel 8",
	}, props)

	assert.Nil(t, readBuildProps(filepath.Join(t.TempDir(), "none")))
}
