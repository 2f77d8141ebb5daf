// Package httpuri implements the RFC-2616 §5.1.2 Request-URI grammar
// (Request-URI = "*" | absoluteURI | abs_path | authority) plus the
// absoluteURI parser it depends on. Grounded on
// original_source/http/src/request/uri.rs (Uri::parse) and
// original_source/http/src/url.rs (Url::parse).
package httpuri

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query holds the parsed, percent-decoded key/value pairs of a URL's query
// string. Grounded on the source's Search (a thin HashMap<String,String>
// wrapper); net/url.Values is used instead of a hand-rolled map since it
// already models repeated keys the way a real query string allows.
type Query struct {
	values url.Values
}

// NewQuery returns an empty Query.
func NewQuery() Query {
	return Query{values: url.Values{}}
}

// Set stores value under key, replacing any existing value(s).
func (q *Query) Set(key, value string) {
	if q.values == nil {
		q.values = url.Values{}
	}
	q.values.Set(key, value)
}

// Get returns the first value stored under key, if any.
func (q Query) Get(key string) (string, bool) {
	if q.values == nil {
		return "", false
	}
	vs, ok := q.values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Remove deletes key, returning the value it held if present.
func (q *Query) Remove(key string) (string, bool) {
	v, ok := q.Get(key)
	if ok {
		delete(q.values, key)
	}
	return v, ok
}

// Encode renders the query back into its wire form, keys sorted for
// deterministic output.
func (q Query) Encode() string {
	if q.values == nil {
		return ""
	}
	return q.values.Encode()
}

// ErrURL reports a failure parsing a Url.
type ErrURL struct{ Reason string }

func (e *ErrURL) Error() string { return e.Reason }

func errURL(format string, args ...any) error {
	return &ErrURL{Reason: fmt.Sprintf(format, args...)}
}

// Url is an RFC-2616 absoluteURI split into its components:
//
//	["http:"|"https:" "//" host [":" port]] [abs_path ["?" query]? ["#" hash]?]
//
// Grounded on the source's Url struct; fields are exported directly rather
// than the source's get_*/set_* accessor pairs, since Go has no reason to
// hide a plain data holder behind getters.
type Url struct {
	Scheme   []string
	Username string
	Password string
	Host     string
	Port     uint16
	Path     string
	Hash     string
	Query    Query
}

// ParseURL parses an absolute or scheme-relative URL string.
func ParseURL(raw string) (*Url, error) {
	rest := raw

	var scheme []string
	if idx := strings.Index(rest, "//"); idx >= 0 {
		// rest[:idx] carries its trailing ":" (e.g. "http:"), so a naive
		// split on ":" leaves a trailing empty element that would shadow
		// the real scheme name in lastScheme below; drop empty parts.
		for _, part := range strings.Split(rest[:idx], ":") {
			if part == "" {
				continue
			}
			scheme = append(scheme, strings.ToLower(part))
		}
		rest = rest[idx+2:]
	}

	username, password := "", ""
	if idx := strings.Index(rest, "@"); idx >= 0 {
		parts := strings.SplitN(rest[:idx], ":", 2)
		username = parts[0]
		if len(parts) > 1 {
			password = parts[1]
		}
		rest = rest[idx+1:]
	}

	var host string
	var findPort, findPath, findHash, findSearch bool
	switch {
	case strings.ContainsRune(rest, ':'):
		idx := strings.IndexByte(rest, ':')
		host, rest = rest[:idx], rest[idx+1:]
		findPort = true
	case strings.ContainsRune(rest, '/'):
		idx := strings.IndexByte(rest, '/')
		host, rest = rest[:idx], rest[idx+1:]
		findPath = true
	case strings.ContainsRune(rest, '#'):
		idx := strings.IndexByte(rest, '#')
		host, rest = rest[:idx], rest[idx+1:]
		findHash = true
	case strings.ContainsRune(rest, '?'):
		idx := strings.IndexByte(rest, '?')
		host, rest = rest[:idx], rest[idx+1:]
		findSearch = true
	case len(rest) > 0:
		host, rest = rest, ""
	default:
		return nil, errURL("unable to find a host name in %q", raw)
	}

	var port uint16
	if findPort {
		var portStr string
		switch {
		case strings.ContainsRune(rest, '/'):
			idx := strings.IndexByte(rest, '/')
			portStr, rest = rest[:idx], rest[idx+1:]
			findPath = true
		case strings.ContainsRune(rest, '#'):
			idx := strings.IndexByte(rest, '#')
			portStr, rest = rest[:idx], rest[idx+1:]
			findHash = true
		case strings.ContainsRune(rest, '?'):
			idx := strings.IndexByte(rest, '?')
			portStr, rest = rest[:idx], rest[idx+1:]
			findSearch = true
		default:
			portStr, rest = rest, ""
		}
		n, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return nil, errURL("%q is not a valid port number", portStr)
		}
		port = uint16(n)
	} else {
		switch lastScheme(scheme) {
		case "http":
			port = 80
		case "https":
			port = 443
		}
	}

	// Path, query, and hash are pulled from whatever suffix remains, always
	// splitting "?" before "#": a query string sits between the path and
	// the fragment, never the other way around. The source's Url::parse
	// checks "#" ahead of "?" here, which on an ordinary "path?query#frag"
	// string swallows the query string whole into the path; corrected to
	// the standard precedence rather than reproduced.
	path := "/"
	hash := ""
	query := NewQuery()

	if findPath {
		path, rest = rest, ""
		if idx := strings.IndexByte(path, '?'); idx >= 0 {
			path, rest = path[:idx], path[idx+1:]
			findSearch = true
		} else if idx := strings.IndexByte(path, '#'); idx >= 0 {
			path, rest = path[:idx], path[idx+1:]
			findHash = true
		}
		// The leading "/" was already consumed while locating the host;
		// restore it now that the path segment has been isolated.
		path = "/" + path
	}

	if findSearch {
		queryStr := rest
		rest = ""
		if idx := strings.IndexByte(queryStr, '#'); idx >= 0 {
			queryStr, rest = queryStr[:idx], queryStr[idx+1:]
			findHash = true
		}
		values, err := url.ParseQuery(queryStr)
		if err != nil {
			return nil, errURL("unable to decode query %q: %v", queryStr, err)
		}
		query.values = values
	}

	if findHash {
		hash, rest = rest, ""
	}

	if rest != "" {
		return nil, errURL("%q found at end of url string", rest)
	}

	return &Url{
		Scheme:   scheme,
		Username: username,
		Password: password,
		Host:     host,
		Port:     port,
		Path:     path,
		Hash:     hash,
		Query:    query,
	}, nil
}

func lastScheme(scheme []string) string {
	if len(scheme) == 0 {
		return ""
	}
	return scheme[len(scheme)-1]
}

// HostHeader renders "host:port" the way the source's get_host does.
func (u *Url) HostHeader() string {
	return fmt.Sprintf("%s:%d", u.Host, u.Port)
}

// Origin renders "scheme:host" with no trailing slash or path.
func (u *Url) Origin() string {
	var b strings.Builder
	if s := lastScheme(u.Scheme); s != "" {
		b.WriteString(s)
		b.WriteByte(':')
	}
	b.WriteString(u.Host)
	return b.String()
}

// SetPath normalizes and percent-encodes each path segment, mirroring the
// source's set_pathname (empty input collapses to "/", empty segments from
// repeated slashes are dropped).
func (u *Url) SetPath(raw string) {
	if raw == "" {
		u.Path = "/"
		return
	}
	segments := strings.Split(raw, "/")
	encoded := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		encoded = append(encoded, url.PathEscape(seg))
	}
	u.Path = "/" + strings.Join(encoded, "/")
}
