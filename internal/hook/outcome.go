package hook

import (
	"log/slog"
	"time"

	"github.com/chimio/inxlocker/internal/intent"
	"github.com/chimio/inxlocker/internal/rule/common"
)

// Outcome is what one hook firing did.
type Outcome struct {
	EventID           string          `json:"event_id"`
	Site              Site            `json:"site"`
	Time              time.Time       `json:"time"`
	Snapshot          intent.Snapshot `json:"snapshot"`
	Decision          common.Decision `json:"decision"`
	Rule              common.RuleType `json:"rule,omitempty"`
	Redirected        bool            `json:"redirected"`
	AlreadyRedirected bool            `json:"already_redirected,omitempty"`
	Uninstall         bool            `json:"uninstall,omitempty"`
	Package           string          `json:"package,omitempty"`
	Action            string          `json:"action,omitempty"`
	Error             string          `json:"error,omitempty"`
	Err               error           `json:"-"`
}

func (o Outcome) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("decision", o.Decision.String()),
		slog.String("rule", string(o.Rule)),
		slog.Bool("redirected", o.Redirected),
	}
	if o.AlreadyRedirected {
		attrs = append(attrs, slog.Bool("already_redirected", true))
	}
	if o.Err != nil {
		attrs = append(attrs, slog.Any("error", o.Err))
	}
	return slog.GroupValue(attrs...)
}
