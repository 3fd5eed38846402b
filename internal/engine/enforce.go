package engine

// Enforcement wrapper for TokenSource to apply max depth checks and max bytes
// truncation in a streaming fashion.

// EnforceOptions controls runtime enforcement behavior. Zero values disable
// the corresponding check.
type EnforceOptions struct {
	MaxDepth int
	MaxBytes int64
}

// Enabled reports whether any check is active.
func (o EnforceOptions) Enabled() bool { return o.MaxDepth > 0 || o.MaxBytes > 0 }

// SimpleIssue is a minimal issue representation used by internal helpers.
// Callers attach the path since only they know the binding context.
type SimpleIssue struct {
	Code    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// WrapWithEnforcement returns a TokenSource that enforces maximum nesting
// depth and maximum consumed bytes.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	if !opt.Enabled() {
		return inner
	}
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	depth int
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		e.depth++
		if e.opt.MaxDepth > 0 && e.depth > e.opt.MaxDepth {
			return Token{}, IssueError{SimpleIssue{Code: "parse_error", Message: "max depth exceeded"}}
		}
	case KindEndObject, KindEndArray:
		if e.depth > 0 {
			e.depth--
		}
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off >= 0 && off > e.opt.MaxBytes {
			return Token{}, IssueError{SimpleIssue{Code: "truncated", Message: "max bytes exceeded"}}
		}
	}
	return tok, nil
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }
