package meta

import "fmt"

// Kind categorizes the error surfaces a torrent build can produce. See
// spec.md §7: ConfigInvalid is reported before any work starts, IoFailure
// aborts the hash phase and discards partial output, StructuralInvariant
// indicates a bug in this package.
type Kind int

const (
	// ConfigInvalid covers bad piece sizes, contradictory flags, empty
	// input, empty announces+nodes, and zero worker counts.
	ConfigInvalid Kind = iota
	// IoFailure covers file open/stat/mmap failures.
	IoFailure
	// StructuralInvariant covers internal consistency checks that should
	// be unreachable.
	StructuralInvariant
)

func (k Kind) String() string {
	switch k {
	case ConfigInvalid:
		return "config invalid"
	case IoFailure:
		return "io failure"
	case StructuralInvariant:
		return "structural invariant"
	default:
		return "unknown"
	}
}

// Error is the single error surface returned from the top-level build/hash
// call. Callers translate Kind to a CLI exit code.
type Error struct {
	Kind Kind
	Path string // offending path, when applicable
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func configErr(format string, args ...any) error {
	return &Error{Kind: ConfigInvalid, Err: fmt.Errorf(format, args...)}
}

// IoError wraps a file-level I/O failure (open/stat/mmap) observed while
// hashing path. Exported so internal/hasher can surface it through the
// same Error type.
func IoError(path string, err error) error {
	return &Error{Kind: IoFailure, Path: path, Err: err}
}

func invariantErr(format string, args ...any) error {
	return &Error{Kind: StructuralInvariant, Err: fmt.Errorf(format, args...)}
}

// InvariantError reports an internal consistency failure that should be
// unreachable. Exported so internal/hasher can raise it from the worker
// and Merkle-completion phases.
func InvariantError(format string, args ...any) error {
	return invariantErr(format, args...)
}
