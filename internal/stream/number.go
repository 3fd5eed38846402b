package stream

import "strings"

// IsIntegerLiteral reports whether a JSON number literal has no fraction or
// exponent part.
func IsIntegerLiteral(n string) bool { return !strings.ContainsAny(n, ".eE") }
