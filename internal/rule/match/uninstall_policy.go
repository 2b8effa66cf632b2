package match

import (
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/chimio/inxlocker/internal/rule/common"
)

// UninstallPolicy matches an uninstall-style intent that the current
// settings do not allow to be intercepted.
type UninstallPolicy struct {
	actions []string
}

func (u *UninstallPolicy) Type() common.RuleType {
	return common.RuleTypeUninstallPolicy
}

func (u *UninstallPolicy) Match(metadata *common.Metadata) (bool, error) {
	if !slices.Contains(u.actions, metadata.Action()) {
		return false, nil
	}
	return !metadata.InterceptUninstall(), nil
}

// Uninstall reports whether action is one this policy governs.
func (u *UninstallPolicy) Uninstall(action string) bool {
	return action != "" && slices.Contains(u.actions, action)
}

func (u *UninstallPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"type":    u.Type(),
		"actions": u.actions,
	})
}

func (u *UninstallPolicy) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(u.Type())),
		slog.Any("actions", u.actions),
	)
}

func NewUninstallPolicy(actions ...string) *UninstallPolicy {
	return &UninstallPolicy{actions: actions}
}
