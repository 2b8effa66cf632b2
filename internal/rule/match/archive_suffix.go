package match

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"github.com/chimio/inxlocker/internal/rule/common"
)

// ArchiveSuffix matches a data URI whose path ends with one of the archive
// suffixes and whose scheme is one of the local schemes. Suffixes are
// compared case-sensitively.
type ArchiveSuffix struct {
	suffixes []string
	schemes  []string
}

func (a *ArchiveSuffix) Type() common.RuleType {
	return common.RuleTypeArchiveSuffix
}

func (a *ArchiveSuffix) Match(metadata *common.Metadata) (bool, error) {
	if metadata.Intent == nil || metadata.Intent.Data == "" {
		return false, nil
	}
	u, err := url.Parse(metadata.Intent.Data)
	if err != nil {
		return false, fmt.Errorf("url.Parse: %w", err)
	}
	if !slices.Contains(a.schemes, u.Scheme) || !strings.HasPrefix(metadata.Intent.Data, u.Scheme+"://") {
		return false, nil
	}
	for _, suffix := range a.suffixes {
		if strings.HasSuffix(u.Path, suffix) {
			return true, nil
		}
	}
	return false, nil
}

func (a *ArchiveSuffix) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"type":     a.Type(),
		"suffixes": a.suffixes,
		"schemes":  a.schemes,
	})
}

func (a *ArchiveSuffix) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(a.Type())),
		slog.Any("suffixes", a.suffixes),
		slog.Any("schemes", a.schemes),
	)
}

func NewArchiveSuffix(suffixes []string, schemes []string) *ArchiveSuffix {
	return &ArchiveSuffix{suffixes: suffixes, schemes: schemes}
}
