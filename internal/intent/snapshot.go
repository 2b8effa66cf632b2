package intent

import "log/slog"

// Snapshot is the identifying part of an intent, captured before any
// mutation. It is a value: copying it never aliases the live intent.
type Snapshot struct {
	Action    string         `json:"action"`
	Component *ComponentName `json:"component,omitempty"`
	Package   string         `json:"package,omitempty"`
}

func Capture(i *Intent) Snapshot {
	if i == nil {
		return Snapshot{}
	}
	s := Snapshot{Action: i.Action, Package: i.Package}
	if i.Component != nil {
		cn := *i.Component
		s.Component = &cn
	}
	return s
}

func (s Snapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("action", s.Action),
		slog.String("component", s.Component.String()),
		slog.String("package", s.Package),
	)
}
