package action

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chimio/inxlocker/internal/intent"
	"github.com/chimio/inxlocker/internal/prefs"
	"github.com/chimio/inxlocker/internal/rule/common"
)

var (
	ErrNilIntent     = errors.New("nil intent")
	ErrRedirectPanic = errors.New("redirect panic")
)

const platformDefault = "<platform default>"

// RedirectFlags makes the installer open in its own task regardless of the
// caller's task stack.
const RedirectFlags = intent.FlagActivityNewTask | intent.FlagActivityClearTop

// Result reports what Apply did. On error the intent is untouched.
type Result struct {
	Applied bool   `json:"applied"`
	Package string `json:"package,omitempty"`
	Action  string `json:"action"`
	Err     error  `json:"-"`
}

// Redirect points an intent at the selected installer. With no installer
// selected it only normalizes the action and leaves resolution to the
// platform.
type Redirect struct {
	settings common.Settings
}

func (r *Redirect) Type() common.ActionType {
	return common.ActionRedirect
}

func (r *Redirect) Execute(in *intent.Intent) error {
	if in == nil {
		return ErrNilIntent
	}

	if target := r.selectedInstaller(); target != "" {
		in.Component = nil
		in.Package = target
		in.AddFlags(RedirectFlags)
	}

	switch in.Action {
	case intent.ActionInstallPackage:
		in.Action = intent.ActionView
	case intent.ActionDelete, intent.ActionUninstallPackage:
		slog.Info("Uninstall intent redirected to selected installer", slog.String("action", in.Action))
	case "":
		in.Action = intent.ActionView
	}
	return nil
}

// Apply runs Execute on a copy and commits it to in only on success. It
// never panics.
func (r *Redirect) Apply(in *intent.Intent) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Result{Err: fmt.Errorf("%w: %v", ErrRedirectPanic, rec)}
			slog.Error("Redirect.Apply", slog.Any("error", res.Err))
		}
	}()

	if in == nil {
		return Result{Err: ErrNilIntent}
	}

	work := in.Clone()
	if err := r.Execute(work); err != nil {
		slog.Error("Redirect.Execute", slog.Any("error", err))
		return Result{Action: in.Action, Package: in.Package, Err: err}
	}
	*in = *work

	pkg := in.Package
	if pkg == "" {
		pkg = platformDefault
	}
	slog.Info("Intent redirected", slog.String("package", pkg), slog.String("action", in.Action))

	return Result{Applied: true, Package: in.Package, Action: in.Action}
}

func (r *Redirect) selectedInstaller() string {
	if r.settings == nil {
		return ""
	}
	return strings.TrimSpace(r.settings.GetString(prefs.KeySelectedInstaller, ""))
}

func (r *Redirect) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(r.Type())),
		slog.String("installer", r.selectedInstaller()),
	)
}

var _ common.Action = (*Redirect)(nil)

func NewRedirect(settings common.Settings) *Redirect {
	return &Redirect{settings: settings}
}
