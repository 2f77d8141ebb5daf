package httpuri

import "strings"

// Kind distinguishes the four Request-URI forms RFC-2616 §5.1.2 allows.
type Kind int

const (
	KindAsterisk Kind = iota
	KindAbsoluteURI
	KindAbsolutePath
	KindAuthority
)

// Uri is the Request-URI tagged union: "*" | absoluteURI | abs_path |
// authority. Grounded on original_source/http/src/request/uri.rs's Uri
// enum.
type Uri struct {
	Kind Kind

	// Absolute holds the parsed Url when Kind == KindAbsoluteURI.
	Absolute *Url

	// Path holds the raw abs_path text when Kind == KindAbsolutePath.
	Path string

	// User, Host, and Port hold the "[user@]host:port" pieces of a
	// CONNECT-style authority-form target (RFC-2396 §3.2.2) when
	// Kind == KindAuthority. User is empty when no "@" was present.
	// ParseURI takes a target as authority-form only when it contains a
	// ":"; a bare "host" or "user@host" is rejected as invalid.
	User string
	Host string
	Port string
}

// ParseURI parses value as a Request-URI.
func ParseURI(value string) (Uri, error) {
	if value == "*" {
		return Uri{Kind: KindAsterisk}, nil
	}

	if strings.Index(value, "http") == 0 {
		u, err := ParseURL(value)
		if err != nil {
			return Uri{}, err
		}
		return Uri{Kind: KindAbsoluteURI, Absolute: u}, nil
	}

	if idx := strings.IndexByte(value, ':'); idx >= 0 {
		hostPart := value
		user := ""
		if at := strings.IndexByte(value, '@'); at >= 0 && at < idx {
			user, hostPart = value[:at], value[at+1:]
		}
		colon := strings.IndexByte(hostPart, ':')
		return Uri{Kind: KindAuthority, User: user, Host: hostPart[:colon], Port: hostPart[colon+1:]}, nil
	}

	if strings.IndexByte(value, '/') == 0 {
		return Uri{Kind: KindAbsolutePath, Path: value}, nil
	}

	return Uri{}, errURL("invalid uri: %q", value)
}
