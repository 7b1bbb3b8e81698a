package tournament

import "fmt"

// ValidationError marks a recoverable, caller-correctable mistake: a bad
// team id, a result reported before its match was paired, a round paired
// out of order. The caller can fix the request and retry.
type ValidationError struct {
	Op  string
	Msg string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tournament: %s: %s", e.Op, e.Msg)
}

func validationErrorf(op, format string, args ...any) *ValidationError {
	return &ValidationError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// ConfigError marks a bad tournament configuration supplied at init time
// (e.g. a team count that can't support the requested break size).
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "tournament: config: " + e.Msg }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}
