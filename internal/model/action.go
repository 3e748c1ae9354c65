package model

import "errors"

// ActionState is the outcome of an action. Actions never fail any other way.
type ActionState struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// OK is the successful result.
func OK() ActionState { return ActionState{Success: true} }

// Failed builds an unsuccessful result carrying msg.
func Failed(msg string) ActionState { return ActionState{Error: msg} }

// Err returns nil on success and the carried message as an error otherwise.
// The validation sentinels are returned as themselves so callers can use errors.Is.
func (s ActionState) Err() error {
	if s.Success {
		return nil
	}
	switch s.Error {
	case ErrTextRequired.Error():
		return ErrTextRequired
	case ErrTextEmpty.Error():
		return ErrTextEmpty
	case "":
		return errors.New("action failed")
	}
	return errors.New(s.Error)
}

// IsValidation reports whether err is a user input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrTextRequired) || errors.Is(err, ErrTextEmpty)
}
