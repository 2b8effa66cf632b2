package hook

import "github.com/chimio/inxlocker/internal/config"

// Site names a call site the adapter hooks.
type Site string

const (
	SiteContextWrapperStart    Site = "ContextWrapper.startActivity"
	SiteActivityStart          Site = "Activity.startActivity"
	SiteActivityStartForResult Site = "Activity.startActivityForResult"
	SiteStarterExecute         Site = "ActivityStarter.execute"
)

type Kind int

const (
	KindContext Kind = iota
	KindForeground
	KindPrivileged
)

func (k Kind) String() string {
	switch k {
	case KindContext:
		return "context"
	case KindForeground:
		return "foreground"
	case KindPrivileged:
		return "privileged"
	default:
		return "unknown"
	}
}

func (s Site) Kind() Kind {
	switch s {
	case SiteActivityStart, SiteActivityStartForResult:
		return KindForeground
	case SiteStarterExecute:
		return KindPrivileged
	default:
		return KindContext
	}
}

// SitesFor returns the sites to hook in processName. The system server only
// needs the privileged starter; apps get the public entry points.
func SitesFor(processName string) []Site {
	if processName == config.SystemProcess {
		return []Site{SiteStarterExecute}
	}
	return []Site{SiteContextWrapperStart, SiteActivityStart, SiteActivityStartForResult}
}
