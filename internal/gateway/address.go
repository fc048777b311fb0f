package gateway

import (
	"strings"
)

// DefaultScheme is the address scheme the gateway serves unless configured
// otherwise.
const DefaultScheme = "mcpweb"

const schemeSeparator = "://"

// Codec translates between service-relative paths and absolute addresses of
// the form scheme://service/path. A Codec is immutable and safe for
// concurrent use.
type Codec struct {
	scheme string
}

// NewCodec returns a codec for the given scheme, falling back to
// DefaultScheme when empty.
func NewCodec(scheme string) Codec {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return Codec{scheme: scheme}
}

// Scheme returns the codec's address scheme.
func (c Codec) Scheme() string {
	return c.scheme
}

// Parse splits an absolute address into its service name and /-prefixed
// path. Canonical addresses (scheme://service/path) resolve against the
// codec's scheme. Addresses under a foreign scheme keep their service in the
// scheme position (service://path), a form some backends expose natively.
// Strings without a scheme separator fail with ErrInvalidAddress.
func (c Codec) Parse(address string) (service, path string, err error) {
	if rest, ok := strings.CutPrefix(address, c.scheme+schemeSeparator); ok {
		name, p, _ := strings.Cut(rest, "/")
		if name == "" {
			return "", "", invalidAddress(address)
		}
		return name, "/" + p, nil
	}

	name, p, found := strings.Cut(address, schemeSeparator)
	if !found || name == "" {
		return "", "", invalidAddress(address)
	}
	return name, "/" + strings.TrimPrefix(p, "/"), nil
}

// Build produces the canonical absolute address for a service-relative path,
// inserting the leading slash when missing.
func (c Codec) Build(service, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.scheme + schemeSeparator + service + path
}

// ServiceFromScope extracts the service name from a search scope. Scopes may
// be bare names ("email"), paths ("email/"), or absolute addresses in either
// scheme form.
func (c Codec) ServiceFromScope(scope string) (string, error) {
	s := scope
	if rest, ok := strings.CutPrefix(s, c.scheme+schemeSeparator); ok {
		s = rest
	} else if name, _, found := strings.Cut(s, schemeSeparator); found {
		s = name
	}
	s = strings.Trim(s, "/")
	if name, _, found := strings.Cut(s, "/"); found {
		s = name
	}
	if s == "" {
		return "", invalidAddress(scope)
	}
	return s, nil
}

// Rewrite turns a resource path declared by a mounted service into an
// absolute address under the codec's scheme. Addresses that already carry a
// scheme pass through unchanged.
func (c Codec) Rewrite(service, raw string) string {
	if strings.Contains(raw, schemeSeparator) {
		return raw
	}
	return c.Build(service, raw)
}
