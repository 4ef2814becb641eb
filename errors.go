package nescient

import "fmt"

// ParamError reports an invalid argument to a constructor or operation,
// e.g. an unsupported algorithm/mode/auth triple or a malformed password.
type ParamError struct {
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("nescient: invalid parameter: %s", e.Message)
}

// FormatError reports that a buffer is not a well-formed Nescient
// container: too short, or a bad magic number. An unrecognized
// algorithm/mode/auth field is reported as a ParamError instead.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("nescient: malformed container: %s", e.Message)
}

// AuthError reports that a container's authentication tag did not verify.
// It deliberately carries no detail distinguishing "wrong password" from
// "tampered data": the two are indistinguishable by design, and
// distinguishing them in an error message would leak an oracle to an
// attacker probing for the correct password.
type AuthError struct{}

func (e *AuthError) Error() string {
	return "nescient: authentication failed (wrong password or corrupted/tampered data)"
}

// IOError wraps an underlying I/O failure (reading, writing, seeking) that
// occurred while packing or unpacking a file.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("nescient: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
