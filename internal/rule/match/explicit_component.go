package match

import (
	"encoding/json"
	"log/slog"

	"github.com/chimio/inxlocker/internal/rule/common"
)

// ExplicitComponent matches an intent that already names its destination
// component.
type ExplicitComponent struct{}

func (e *ExplicitComponent) Type() common.RuleType {
	return common.RuleTypeExplicitComponent
}

func (e *ExplicitComponent) Match(metadata *common.Metadata) (bool, error) {
	return metadata.Intent != nil && metadata.Intent.Component != nil, nil
}

func (e *ExplicitComponent) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"type": e.Type(),
	})
}

func (e *ExplicitComponent) LogValue() slog.Value {
	return slog.GroupValue(slog.String("type", string(e.Type())))
}

func NewExplicitComponent() *ExplicitComponent {
	return &ExplicitComponent{}
}
