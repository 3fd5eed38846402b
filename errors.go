package gobind

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/gobind/i18n"
)

// Issue codes reported by decoding and encoding.
const (
	CodeUnexpectedToken      = "unexpected_token"
	CodeDuplicateValue       = "duplicate_value"
	CodeMissingRequiredValue = "missing_required_value"
	CodeInvalidType          = "invalid_type"
	CodeInvalidFormat        = "invalid_format"
	CodeOverflow             = "overflow"
	CodeConstructFailed      = "construct_failed"
	CodeParseError           = "parse_error"
	CodeTruncated            = "truncated"
)

// Build error codes.
const (
	CodeNoBindingForRequiredParameter = "no_binding_for_required_parameter"
	CodeDuplicateJSONName             = "duplicate_json_name"
	CodeUnrepresentableField          = "unrepresentable_field"
	CodeNoCodec                       = "no_codec"
)

// Issue represents a single decode or encode failure.
type Issue struct {
	Path    string // JSON path, e.g. $.items[2].name
	Code    string // One of the Code* constants above.
	Key     string // Wire key involved, when the issue concerns one.
	Message string
	Hint    string // Optional: expected token, format name, etc.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input source (-1 when unknown).
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		if it.Message != "" {
			b.WriteString(it.Message)
		} else {
			fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		}
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// newIssue builds an Issue with a translated message.
func newIssue(code, path, key string) Issue {
	return Issue{
		Path:    path,
		Code:    code,
		Key:     key,
		Message: i18n.T(code, map[string]string{"key": key, "path": path}),
		Offset:  -1,
	}
}

// IssueAt returns a single-issue error for codecs reporting a value problem at
// the reader's current path.
func IssueAt(r *Reader, code, hint string, cause error) Issues {
	it := newIssue(code, r.Path(), "")
	it.Hint = hint
	it.Cause = cause
	if hint != "" {
		it.Message += ": " + hint
	}
	return Issues{it}
}

// ErrNotApplicable reports that the binder does not handle the requested
// type: a platform type, or a request carrying a whole-type qualifier.
var ErrNotApplicable = errors.New("gobind: binder not applicable")

var (
	ErrNoBindingForRequiredParameter = errors.New("gobind: no binding for required constructor parameter")
	ErrDuplicateJSONName             = errors.New("gobind: duplicate json name")
	ErrUnrepresentableField          = errors.New("gobind: unrepresentable field")
	ErrNoCodec                       = errors.New("gobind: no codec for field type")
)

// BuildError is a resolution-time failure. It matches the Err* sentinel of
// its code through errors.Is.
type BuildError struct {
	Code    string
	Type    string // Type being resolved.
	Field   string // Declared field or parameter name.
	Message string
	Cause   error
}

func (e *BuildError) Error() string {
	msg := "gobind: " + e.Type + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *BuildError) Unwrap() error { return e.Cause }

func (e *BuildError) Is(target error) bool {
	switch e.Code {
	case CodeNoBindingForRequiredParameter:
		return target == ErrNoBindingForRequiredParameter
	case CodeDuplicateJSONName:
		return target == ErrDuplicateJSONName
	case CodeUnrepresentableField:
		return target == ErrUnrepresentableField
	case CodeNoCodec:
		return target == ErrNoCodec
	}
	return false
}
