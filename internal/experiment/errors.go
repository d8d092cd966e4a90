package experiment

import "errors"

var (
	// ErrUnknownProtocol indicates a protocol name with no registry entry.
	ErrUnknownProtocol = errors.New("experiment: unknown protocol")

	// ErrInvalidConfig indicates parameters the runner cannot honor.
	ErrInvalidConfig = errors.New("experiment: invalid config")
)
