//go:build !unix

package usergroup

import "log/slog"

func ShareWithGroup(dir string, group string) error {
	slog.Warn("ShareWithGroup is not supported on this platform", slog.String("group", group))
	return nil
}
