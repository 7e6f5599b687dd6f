// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxDisplayNameLen = 36

var (
	ErrNameTooLong = errors.New("display name too long")
	ErrNameEmpty   = errors.New("display name empty")
)

type UserID string

// Identity is a durable, verified user reference. A session carries at most
// one Identity for its whole lifetime; transient session ids are core.SessionID.
type Identity struct {
	ID          UserID `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName"`
}

func ValidateDisplayName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return ErrNameTooLong
	}
	return nil
}
