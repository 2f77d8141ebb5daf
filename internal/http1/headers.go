package http1

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HeaderName is the closed RFC-2616 §14 header-name enumeration plus a
// Custom variant for any name outside that set, carrying the raw text.
// Grounded on original_source/http/src/headers/name.rs's build_headers!
// macro-generated list. Comparison is case-insensitive as RFC-2616 §4.2
// requires ("field names are case-insensitive").
type HeaderName struct {
	known  knownHeader
	custom string
}

type knownHeader int

const (
	headerCustom knownHeader = iota
	HeaderAccept
	HeaderAcceptCharset
	HeaderAcceptEncoding
	HeaderAcceptLanguage
	HeaderAcceptRanges
	HeaderAge
	HeaderAllow
	HeaderAuthorization
	HeaderCacheControl
	HeaderConnection
	HeaderContentEncoding
	HeaderContentLanguage
	HeaderContentLength
	HeaderContentLocation
	HeaderContentMD5
	HeaderContentRange
	HeaderContentType
	HeaderDate
	HeaderETag
	HeaderExpect
	HeaderExpires
	HeaderFrom
	HeaderHost
	HeaderIfMatch
	HeaderIfModifiedSince
	HeaderIfNoneMatch
	HeaderIfRange
	HeaderIfUnmodifiedSince
	HeaderLastModified
	HeaderLocation
	HeaderMaxForwards
	HeaderPragma
	HeaderProxyAuthenticate
	HeaderProxyAuthorization
	HeaderReferer
	HeaderRetryAfter
	HeaderServer
	HeaderTE
	HeaderTrailer
	HeaderTransferEncoding
	HeaderUpgrade
	HeaderUserAgent
	HeaderVary
	HeaderWarning
	HeaderWWWAuthenticate
)

var headerWireName = map[knownHeader]string{
	HeaderAccept:             "Accept",
	HeaderAcceptCharset:      "Accept-Charset",
	HeaderAcceptEncoding:     "Accept-Encoding",
	HeaderAcceptLanguage:     "Accept-Language",
	HeaderAcceptRanges:       "Accept-Ranges",
	HeaderAge:                "Age",
	HeaderAllow:              "Allow",
	HeaderAuthorization:      "Authorization",
	HeaderCacheControl:       "Cache-Control",
	HeaderConnection:         "Connection",
	HeaderContentEncoding:    "Content-Encoding",
	HeaderContentLanguage:    "Content-Language",
	HeaderContentLength:      "Content-Length",
	HeaderContentLocation:    "Content-Location",
	HeaderContentMD5:         "Content-MD5",
	HeaderContentRange:       "Content-Range",
	HeaderContentType:        "Content-Type",
	HeaderDate:               "Date",
	HeaderETag:               "ETag",
	HeaderExpect:             "Expect",
	HeaderExpires:            "Expires",
	HeaderFrom:               "From",
	HeaderHost:               "Host",
	HeaderIfMatch:            "If-Match",
	HeaderIfModifiedSince:    "If-Modified-Since",
	HeaderIfNoneMatch:        "If-None-Match",
	HeaderIfRange:            "If-Range",
	HeaderIfUnmodifiedSince:  "If-Unmodified-Since",
	HeaderLastModified:       "Last-Modified",
	HeaderLocation:           "Location",
	HeaderMaxForwards:        "Max-Forwards",
	HeaderPragma:             "Pragma",
	HeaderProxyAuthenticate:  "Proxy-Authenticate",
	HeaderProxyAuthorization: "Proxy-Authorization",
	HeaderReferer:            "Referer",
	HeaderRetryAfter:         "Retry-After",
	HeaderServer:             "Server",
	HeaderTE:                 "TE",
	HeaderTrailer:            "Trailer",
	HeaderTransferEncoding:   "Transfer-Encoding",
	HeaderUpgrade:            "Upgrade",
	HeaderUserAgent:          "User-Agent",
	HeaderVary:               "Vary",
	HeaderWarning:            "Warning",
	HeaderWWWAuthenticate:    "WWW-Authenticate",
}

var headerByWireName = func() map[string]knownHeader {
	m := make(map[string]knownHeader, len(headerWireName))
	for k, v := range headerWireName {
		m[strings.ToLower(v)] = k
	}
	return m
}()

// NewHeaderName resolves name against the closed well-known set, falling
// back to a Custom variant that retains the original text for a name this
// package does not recognize.
func NewHeaderName(name string) HeaderName {
	if k, ok := headerByWireName[strings.ToLower(name)]; ok {
		return HeaderName{known: k}
	}
	return HeaderName{known: headerCustom, custom: name}
}

// String renders the header back to its wire form.
func (h HeaderName) String() string {
	if h.known == headerCustom {
		return h.custom
	}
	return headerWireName[h.known]
}

// Equal reports case-insensitive equality, matching RFC-2616 §4.2 and the
// source's PartialEq impl for HeaderName (which special-cases two Custom
// values by comparing their names rather than their discriminant, since
// both share the "unknown" tag).
func (h HeaderName) Equal(other HeaderName) bool {
	if h.known == headerCustom && other.known == headerCustom {
		return strings.EqualFold(h.custom, other.custom)
	}
	return h.known == other.known
}

func (h HeaderName) key() string {
	return strings.ToLower(h.String())
}

// HeaderValue is a single header's raw text plus typed accessors for the
// common conversions a handler needs. Grounded on
// original_source/http/src/headers/value.rs's build_header! macro, which
// generates one newtype per header with to_str/to_date/to_vec; collapsed
// here into one type since Go has no reason to mint 40 near-identical
// wrapper structs for what is, underneath, always the same raw byte span.
type HeaderValue string

// ErrHeaderValue reports a typed-conversion failure on a HeaderValue.
type ErrHeaderValue struct{ Reason string }

func (e *ErrHeaderValue) Error() string { return e.Reason }

// Str returns the value's text.
func (v HeaderValue) Str() string { return string(v) }

// Date parses the value as an RFC-1123 (RFC-2616 §3.3.1 preferred format)
// timestamp.
func (v HeaderValue) Date() (time.Time, error) {
	t, err := time.Parse(time.RFC1123, string(v))
	if err != nil {
		return time.Time{}, &ErrHeaderValue{Reason: fmt.Sprintf("unable to parse %q as an HTTP-date: %v", v, err)}
	}
	return t, nil
}

// List splits a comma-separated value into trimmed elements, the shape
// the source's ListHeaderValue/AllowValue/AcceptEncodingValue all share.
func (v HeaderValue) List() []string {
	parts := strings.Split(string(v), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// Int parses the value as an unsigned integer (Age, Max-Forwards).
func (v HeaderValue) Int() (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	if err == nil && n < 0 {
		err = strconv.ErrRange
	}
	if err != nil {
		return 0, &ErrHeaderValue{Reason: fmt.Sprintf("unable to parse %q as an integer: %v", v, err)}
	}
	return n, nil
}

// Headers is an ordered RFC-2616 §14 header collection: insertion order is
// preserved for response writing while lookups stay case-insensitive and
// O(1). Grounded on original_source/http/src/headers/mod.rs's Headers
// (there, a plain HashMap<HeaderName,HeaderValue> with no order
// preserved); order is added here because a response's header writer
// needs deterministic, repeatable output instead of Go's randomized map
// iteration.
type Headers struct {
	order []HeaderName
	index map[string]HeaderValue
}

// NewHeaders returns an empty header set.
func NewHeaders() *Headers {
	return &Headers{index: make(map[string]HeaderValue)}
}

// Set stores value under name, replacing any existing value but keeping
// the original insertion position.
func (h *Headers) Set(name, value string) {
	hn := NewHeaderName(name)
	key := hn.key()
	if _, exists := h.index[key]; !exists {
		h.order = append(h.order, hn)
	}
	h.index[key] = HeaderValue(value)
}

// Get returns the value stored for name, if any.
func (h *Headers) Get(name string) (HeaderValue, bool) {
	v, ok := h.index[NewHeaderName(name).key()]
	return v, ok
}

// Remove deletes name, reporting whether it was present.
func (h *Headers) Remove(name string) bool {
	key := NewHeaderName(name).key()
	if _, ok := h.index[key]; !ok {
		return false
	}
	delete(h.index, key)
	for i, n := range h.order {
		if n.key() == key {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes every header.
func (h *Headers) Clear() {
	h.order = nil
	h.index = make(map[string]HeaderValue)
}

// Len reports the number of distinct headers stored.
func (h *Headers) Len() int { return len(h.order) }

// Each calls fn once per header in insertion order.
func (h *Headers) Each(fn func(name HeaderName, value HeaderValue)) {
	for _, name := range h.order {
		fn(name, h.index[name.key()])
	}
}
