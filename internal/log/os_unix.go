//go:build unix

package log

import (
	"bufio"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sys/unix"
)

const buildPropPath = "/system/build.prop"

// GetOSInfo returns slog attrs describing the host for the startup header.
func GetOSInfo() []any {
	attrs := []any{
		slog.String("GOOS", runtime.GOOS),
		slog.String("GOARCH", runtime.GOARCH),
		slog.String("Go Version", runtime.Version()),
	}

	var uname unix.Utsname
	if err := unix.Uname(&uname); err == nil {
		attrs = append(attrs,
			slog.String("sysname", unix.ByteSliceToString(uname.Sysname[:])),
			slog.String("release", unix.ByteSliceToString(uname.Release[:])),
			slog.String("machine", unix.ByteSliceToString(uname.Machine[:])),
		)
	}

	if props := readBuildProps(buildPropPath, "ro.build.version.release", "ro.build.version.sdk", "ro.product.model"); len(props) > 0 {
		for k, v := range props {
			attrs = append(attrs, slog.String(k, v))
		}
	}
	return attrs
}

// readBuildProps extracts the wanted keys from an Android build.prop file.
func readBuildProps(path string, keys ...string) map[string]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}

	props := make(map[string]string, len(keys))
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if _, ok := wanted[k]; ok {
			props[k] = v
		}
	}
	return props
}
