package common

import "github.com/chimio/inxlocker/internal/intent"

type ActionType string

const ActionRedirect ActionType = "REDIRECT"

// Action applies a decision to the live intent.
type Action interface {
	Type() ActionType
	Execute(in *intent.Intent) error
}
