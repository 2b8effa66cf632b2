package hook

import (
	"log/slog"

	"github.com/chimio/inxlocker/internal/intent"
	"github.com/chimio/inxlocker/internal/rule/action"
	"github.com/chimio/inxlocker/internal/rule/common"
)

// DryRun is the result of running the pipeline on a copy of an intent.
type DryRun struct {
	Snapshot intent.Snapshot `json:"snapshot"`
	Decision common.Decision `json:"decision"`
	Rule     common.RuleType `json:"rule,omitempty"`
	Error    string          `json:"error,omitempty"`
	Redirect *action.Result  `json:"redirect,omitempty"`
	Intent   *intent.Intent  `json:"intent"`
}

// DryRun reloads settings and classifies a copy of in, redirecting the copy
// when eligible. Nothing is recorded and in is not modified.
func (h *Interceptor) DryRun(in *intent.Intent) DryRun {
	h.store.Reload()

	work := in.Clone()
	res := DryRun{Snapshot: intent.Capture(work), Intent: work}

	v := h.engine.Evaluate(work)
	res.Decision = v.Decision
	res.Rule = v.Rule
	if v.Err != nil {
		res.Error = v.Err.Error()
	}
	if v.Decision == common.ShouldRedirect {
		r := h.redirect.Apply(work)
		if r.Err != nil {
			res.Error = r.Err.Error()
		}
		res.Redirect = &r
	}

	slog.Debug("Interceptor.DryRun", slog.Any("snapshot", res.Snapshot), slog.String("decision", res.Decision.String()))
	return res
}
