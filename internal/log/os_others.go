//go:build !unix

package log

import (
	"log/slog"
	"os"
	"runtime"
)

// GetOSInfo returns slog attrs describing the host for the startup header.
func GetOSInfo() []any {
	attrs := []any{
		slog.String("GOOS", runtime.GOOS),
		slog.String("GOARCH", runtime.GOARCH),
		slog.String("Go Version", runtime.Version()),
	}
	if v, ok := os.LookupEnv("OS"); ok {
		attrs = append(attrs, slog.String("os_version", v))
	}
	return attrs
}
