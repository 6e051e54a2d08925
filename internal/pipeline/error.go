package pipeline

// Kind classifies a pipeline failure.
type Kind string

const (
	// KindConfig marks an invalid run configuration, detected before any
	// side effect.
	KindConfig Kind = "config"

	// KindFilesystem marks a failure to prepare or write an output location.
	KindFilesystem Kind = "filesystem"

	// KindExternal marks a non-success completion of an external call.
	KindExternal Kind = "external"
)

// Error is the single tagged error type for pipeline failures. Every
// failure aborts the run; nothing is caught and recovered internally.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error returns the failure message.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func configError(err error) *Error {
	return &Error{Kind: KindConfig, Msg: "invalid configuration", Err: err}
}

func filesystemError(msg string, err error) *Error {
	return &Error{Kind: KindFilesystem, Msg: msg, Err: err}
}

func externalError(msg string, err error) *Error {
	return &Error{Kind: KindExternal, Msg: msg, Err: err}
}
