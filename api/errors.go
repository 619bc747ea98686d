package api

import (
	"encoding/json"
	"errors"
)

// ErrAuth marks a credential rejection. Auth failures are terminal for the
// current sync cycle and are never retried at the call site.
var ErrAuth = errors.New("authentication rejected")

func IsAuthErr(err error) bool {
	return errors.Is(err, ErrAuth)
}

// ErrorResponse captures an arbitrary vendor error payload for logging.
type ErrorResponse map[string]any

func (e ErrorResponse) String() string {
	bytes, err := json.Marshal(e)
	if err != nil {
		return "cannot define error response"
	}

	return string(bytes)
}
