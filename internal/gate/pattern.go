package gate

import (
	"strings"

	"github.com/pixfil/yogapluriel-sub002/internal/models"
)

// pattern is a compiled wildcard source: the source path split around its
// first wildcard token. Everything outside the capture is matched literally,
// including any further '*' characters, so patterns never need a regex
// engine even though they are authored by trusted admins.
type pattern struct {
	prefix string
	suffix string
}

// compilePattern splits a wildcard rule source at its first wildcard token.
// It returns false for sources without a token, which lets callers skip
// rules flagged wildcard by mistake.
func compilePattern(source string) (pattern, bool) {
	i := strings.Index(source, models.WildcardToken)
	if i < 0 {
		return pattern{}, false
	}
	return pattern{prefix: source[:i], suffix: source[i+1:]}, true
}

// match tests a path against the pattern. The wildcard captures one or more
// characters: an empty capture is not a match, so "/blog/*" never matches
// "/blog/" itself.
func (p pattern) match(path string) (capture string, ok bool) {
	if len(path) <= len(p.prefix)+len(p.suffix) {
		return "", false
	}
	if !strings.HasPrefix(path, p.prefix) || !strings.HasSuffix(path, p.suffix) {
		return "", false
	}
	return path[len(p.prefix) : len(path)-len(p.suffix)], true
}

// substituteCapture injects the captured substring into a destination path.
// Only the first wildcard token is substituted; destinations without a token
// are used literally.
func substituteCapture(destination, capture string) string {
	return strings.Replace(destination, models.WildcardToken, capture, 1)
}
