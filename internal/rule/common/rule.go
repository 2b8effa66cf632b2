package common

type RuleType string

const (
	RuleTypeActionAllowList   RuleType = "ACTION-ALLOWLIST"
	RuleTypeMimeType          RuleType = "MIME-TYPE"
	RuleTypeInstallAction     RuleType = "INSTALL-ACTION"
	RuleTypeArchiveSuffix     RuleType = "ARCHIVE-SUFFIX"
	RuleTypeExplicitComponent RuleType = "EXPLICIT-COMPONENT"
	RuleTypeUninstallPolicy   RuleType = "UNINSTALL-POLICY"
)

// Rule reports whether it matches. A non-nil error means the rule could not
// decide; the engine treats that as "do not redirect".
type Rule interface {
	Type() RuleType
	Match(metadata *Metadata) (bool, error)
}
