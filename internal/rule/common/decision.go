package common

import "fmt"

// Decision is the classifier's verdict. The zero value is the safe one.
type Decision int

const (
	ShouldNotRedirect Decision = iota
	ShouldRedirect
)

func (d Decision) String() string {
	switch d {
	case ShouldRedirect:
		return "should-redirect"
	case ShouldNotRedirect:
		return "should-not-redirect"
	default:
		return "unknown"
	}
}

func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Decision) UnmarshalText(text []byte) error {
	switch string(text) {
	case "should-redirect":
		*d = ShouldRedirect
	case "should-not-redirect":
		*d = ShouldNotRedirect
	default:
		return fmt.Errorf("unknown decision %q", text)
	}
	return nil
}
