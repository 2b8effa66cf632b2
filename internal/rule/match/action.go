package match

import (
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/chimio/inxlocker/internal/rule/common"
)

// ActionSet matches an intent whose action is one of a fixed set. An empty
// action never matches.
type ActionSet struct {
	ruleType common.RuleType
	actions  []string
}

func (a *ActionSet) Type() common.RuleType {
	return a.ruleType
}

func (a *ActionSet) Match(metadata *common.Metadata) (bool, error) {
	action := metadata.Action()
	if action == "" {
		return false, nil
	}
	return slices.Contains(a.actions, action), nil
}

func (a *ActionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"type":    a.ruleType,
		"actions": a.actions,
	})
}

func (a *ActionSet) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(a.ruleType)),
		slog.Any("actions", a.actions),
	)
}

// NewActionAllowList builds the first-stage gate: intents with any other
// action are not considered at all.
func NewActionAllowList(actions ...string) *ActionSet {
	return &ActionSet{ruleType: common.RuleTypeActionAllowList, actions: actions}
}

// NewInstallAction builds the trigger for install and uninstall actions.
func NewInstallAction(actions ...string) *ActionSet {
	return &ActionSet{ruleType: common.RuleTypeInstallAction, actions: actions}
}
