package rule

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chimio/inxlocker/internal/intent"
	"github.com/chimio/inxlocker/internal/rule/common"
	"github.com/chimio/inxlocker/internal/rule/match"
)

var (
	ErrNilIntent     = errors.New("nil intent")
	ErrClassifyPanic = errors.New("classifier panic")
)

var (
	ArchiveSuffixes = []string{".apk", ".apks", ".apk.1"}
	ArchiveSchemes  = []string{"file", "content"}
)

// Verdict is a decision together with the rule that settled it. Err is set
// when classification failed and the decision fell back to ShouldNotRedirect.
type Verdict struct {
	Decision common.Decision `json:"decision"`
	Rule     common.RuleType `json:"rule,omitempty"`
	Err      error           `json:"-"`
}

func (v Verdict) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("decision", v.Decision.String()),
		slog.String("rule", string(v.Rule)),
	}
	if v.Err != nil {
		attrs = append(attrs, slog.Any("error", v.Err))
	}
	return slog.GroupValue(attrs...)
}

// Engine decides whether an intent is an install or uninstall request that
// should go to the selected installer. It never mutates the intent.
type Engine struct {
	allowList *match.ActionSet
	triggers  []common.Rule
	component *match.ExplicitComponent
	uninstall *match.UninstallPolicy
	settings  common.Settings
}

func NewEngine(settings common.Settings) *Engine {
	return &Engine{
		allowList: match.NewActionAllowList(
			intent.ActionView,
			intent.ActionInstallPackage,
			intent.ActionConfirmInstall,
			intent.ActionUninstallPackage,
			intent.ActionDelete,
		),
		triggers: []common.Rule{
			match.NewMimeType(intent.MimePackageArchive),
			match.NewInstallAction(
				intent.ActionInstallPackage,
				intent.ActionConfirmInstall,
				intent.ActionUninstallPackage,
				intent.ActionDelete,
			),
			match.NewArchiveSuffix(ArchiveSuffixes, ArchiveSchemes),
		},
		component: match.NewExplicitComponent(),
		uninstall: match.NewUninstallPolicy(intent.ActionDelete, intent.ActionUninstallPackage),
		settings:  settings,
	}
}

// Classify is Evaluate without the diagnostics.
func (e *Engine) Classify(in *intent.Intent) common.Decision {
	return e.Evaluate(in).Decision
}

// Evaluate runs the rules in order: action allow-list, candidate triggers
// (any one suffices, first match wins), explicit component, uninstall
// policy. Any error or panic yields ShouldNotRedirect.
func (e *Engine) Evaluate(in *intent.Intent) (v Verdict) {
	defer func() {
		if r := recover(); r != nil {
			v = Verdict{Decision: common.ShouldNotRedirect, Err: fmt.Errorf("%w: %v", ErrClassifyPanic, r)}
		}
	}()

	if in == nil {
		return Verdict{Err: ErrNilIntent}
	}
	metadata := &common.Metadata{Intent: in, Settings: e.settings}

	allowed, err := e.allowList.Match(metadata)
	if err != nil || !allowed {
		return Verdict{Rule: e.allowList.Type(), Err: err}
	}

	var trigger common.Rule
	for _, r := range e.triggers {
		matched, err := r.Match(metadata)
		if err != nil {
			return Verdict{Rule: r.Type(), Err: fmt.Errorf("%s: %w", r.Type(), err)}
		}
		if matched {
			trigger = r
			break
		}
	}
	if trigger == nil {
		return Verdict{}
	}

	if explicit, err := e.component.Match(metadata); err != nil || explicit {
		return Verdict{Rule: e.component.Type(), Err: err}
	}

	if blocked, err := e.uninstall.Match(metadata); err != nil || blocked {
		return Verdict{Rule: e.uninstall.Type(), Err: err}
	}

	return Verdict{Decision: common.ShouldRedirect, Rule: trigger.Type()}
}

// Rules lists every rule in evaluation order.
func (e *Engine) Rules() []common.Rule {
	rules := make([]common.Rule, 0, len(e.triggers)+3)
	rules = append(rules, e.allowList)
	rules = append(rules, e.triggers...)
	rules = append(rules, e.component, e.uninstall)
	return rules
}

// IsUninstall reports whether action is governed by the intercept_uninstall
// setting.
func (e *Engine) IsUninstall(action string) bool {
	return e.uninstall.Uninstall(action)
}
