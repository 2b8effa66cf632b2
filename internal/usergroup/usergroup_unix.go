//go:build unix

package usergroup

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const GroupFile = "/etc/group"

// ShareWithGroup hands group ownership of dir and the files in it to group,
// so hooked app processes in that group can read the settings. Missing
// privileges are logged and ignored.
func ShareWithGroup(dir string, group string) error {
	gid, err := LookupGroupID(GroupFile, group)
	if err != nil {
		slog.Warn("LookupGroupID", slog.String("group", group), slog.Any("error", err))
		return nil
	}

	paths := []string{dir}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("os.ReadDir: %w", err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}

	for _, p := range paths {
		if err := unix.Chown(p, -1, gid); err != nil {
			if errors.Is(err, unix.EPERM) {
				slog.Warn("unix.Chown", slog.String("path", p), slog.Int("gid", gid), slog.Any("error", err))
				return nil
			}
			return fmt.Errorf("unix.Chown: %w", err)
		}
	}

	slog.Info("Settings shared with group", slog.String("group", group), slog.Int("gid", gid))
	return nil
}

// LookupGroupID resolves name through a group(5) file. Numeric names are
// taken as ids.
func LookupGroupID(groupFile string, name string) (int, error) {
	if name == "root" {
		return 0, nil
	}
	if gid, err := strconv.Atoi(name); err == nil {
		return gid, nil
	}

	file, err := os.Open(groupFile)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", groupFile, err)
	}
	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), ":")
		if len(parts) >= 3 && parts[0] == name {
			gid, err := strconv.Atoi(parts[2])
			if err != nil {
				return 0, fmt.Errorf("failed to parse GID for group %s: %w", name, err)
			}
			return gid, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error reading %s: %w", groupFile, err)
	}

	return 0, fmt.Errorf("group %s not found", name)
}
