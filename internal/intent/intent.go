// Package intent models the platform request that flows through the
// activity-start call sites. The platform owns it; the engine only reads it
// and, on redirect, rewrites a few fields in place.
package intent

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	ActionView             = "android.intent.action.VIEW"
	ActionInstallPackage   = "android.intent.action.INSTALL_PACKAGE"
	ActionConfirmInstall   = "android.content.pm.action.CONFIRM_INSTALL"
	ActionUninstallPackage = "android.intent.action.UNINSTALL_PACKAGE"
	ActionDelete           = "android.intent.action.DELETE"
)

const MimePackageArchive = "application/vnd.android.package-archive"

type Flags uint32

const (
	FlagActivityClearTop Flags = 0x04000000
	FlagActivityNewTask  Flags = 0x10000000
)

func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

func (f Flags) String() string {
	return fmt.Sprintf("0x%08x", uint32(f))
}

// ComponentName names an exact destination component.
type ComponentName struct {
	Package string `json:"package"`
	Class   string `json:"class"`
}

// ParseComponentName accepts the "pkg/cls" short form. A class starting with
// "." is relative to the package.
func ParseComponentName(s string) (*ComponentName, error) {
	pkg, cls, ok := strings.Cut(s, "/")
	if !ok || pkg == "" || cls == "" {
		return nil, fmt.Errorf("invalid component name %q", s)
	}
	if strings.HasPrefix(cls, ".") {
		cls = pkg + cls
	}
	return &ComponentName{Package: pkg, Class: cls}, nil
}

func (c *ComponentName) String() string {
	if c == nil {
		return "<none>"
	}
	return c.Package + "/" + c.Class
}

type Intent struct {
	Action    string         `json:"action,omitempty"`
	Data      string         `json:"data,omitempty"`
	Type      string         `json:"type,omitempty"`
	Component *ComponentName `json:"component,omitempty"`
	Package   string         `json:"package,omitempty"`
	Flags     Flags          `json:"flags,omitempty"`
}

func (i *Intent) AddFlags(flags Flags) {
	i.Flags |= flags
}

// Clone returns a deep copy; the component is not shared.
func (i *Intent) Clone() *Intent {
	if i == nil {
		return nil
	}
	c := *i
	if i.Component != nil {
		cn := *i.Component
		c.Component = &cn
	}
	return &c
}

func (i *Intent) String() string {
	if i == nil {
		return "Intent{<nil>}"
	}
	var b strings.Builder
	b.WriteString("Intent{")
	fields := make([]string, 0, 6)
	if i.Action != "" {
		fields = append(fields, "act="+i.Action)
	}
	if i.Data != "" {
		fields = append(fields, "dat="+i.Data)
	}
	if i.Type != "" {
		fields = append(fields, "typ="+i.Type)
	}
	if i.Flags != 0 {
		fields = append(fields, "flg="+i.Flags.String())
	}
	if i.Package != "" {
		fields = append(fields, "pkg="+i.Package)
	}
	if i.Component != nil {
		fields = append(fields, "cmp="+i.Component.String())
	}
	b.WriteString(strings.Join(fields, " "))
	b.WriteString("}")
	return b.String()
}

func (i *Intent) LogValue() slog.Value {
	if i == nil {
		return slog.StringValue("<nil>")
	}
	return slog.GroupValue(
		slog.String("action", i.Action),
		slog.String("data", i.Data),
		slog.String("type", i.Type),
		slog.String("component", i.Component.String()),
		slog.String("package", i.Package),
		slog.String("flags", i.Flags.String()),
	)
}
