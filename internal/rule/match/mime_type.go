package match

import (
	"encoding/json"
	"log/slog"

	"github.com/chimio/inxlocker/internal/rule/common"
)

// MimeType matches an exact MIME type.
type MimeType struct {
	mimeType string
}

func (m *MimeType) Type() common.RuleType {
	return common.RuleTypeMimeType
}

func (m *MimeType) Match(metadata *common.Metadata) (bool, error) {
	if metadata.Intent == nil {
		return false, nil
	}
	return metadata.Intent.Type == m.mimeType, nil
}

func (m *MimeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"type":      m.Type(),
		"mime_type": m.mimeType,
	})
}

func (m *MimeType) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(m.Type())),
		slog.String("mime_type", m.mimeType),
	)
}

func NewMimeType(mimeType string) *MimeType {
	return &MimeType{mimeType: mimeType}
}
