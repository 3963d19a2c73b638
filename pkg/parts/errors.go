package parts

import "errors"

var (
	// ErrAuth means the credential exchange itself failed.
	ErrAuth = errors.New("parts auth error")

	// ErrProvider means the provider answered with a non-success status
	// (after the single token-refresh retry) or an undecodable body.
	ErrProvider = errors.New("parts provider error")
)
