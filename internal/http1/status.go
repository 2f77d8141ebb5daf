// Package http1 implements the HTTP/1.x method, status, header, request,
// and response types the rest of the server builds on. Grounded on
// original_source/http/src/{method.rs,types/status.rs,headers/*,request*,
// response.rs,error.rs}.
package http1

import "fmt"

// Status is an RFC-2616/RFC-4918 (WebDAV) status code. Grounded on
// original_source/http/src/types/status.rs's HttpStatus enum, keeping its
// ALL-CAPS reason strings verbatim (e.g. "NOT FOUND") rather than the more
// conventional mixed-case phrases, since the wire scenarios pin the
// ALL-CAPS form byte-for-byte (e.g. "HTTP/1.1 400 BAD REQUEST").
type Status int

const (
	StatusContinue           Status = 100
	StatusSwitchingProtocols Status = 101
	StatusProcessing         Status = 102

	StatusOK                          Status = 200
	StatusCreated                     Status = 201
	StatusAccepted                    Status = 202
	StatusNonAuthoritativeInformation Status = 203
	StatusNoContent                   Status = 204
	StatusResetContent                Status = 205
	StatusPartialContent              Status = 206
	StatusMultiStatus                 Status = 207
	StatusAlreadyReported             Status = 208
	StatusIMUsed                      Status = 226

	StatusMultipleChoices   Status = 300
	StatusMovedPermanently  Status = 301
	StatusFound             Status = 302
	StatusSeeOther          Status = 303
	StatusNotModified       Status = 304
	StatusUseProxy          Status = 305
	StatusTemporaryRedirect Status = 307
	StatusPermanentRedirect Status = 308

	StatusBadRequest                   Status = 400
	StatusUnauthorized                 Status = 401
	StatusPaymentRequired              Status = 402
	StatusForbidden                    Status = 403
	StatusNotFound                     Status = 404
	StatusMethodNotAllowed             Status = 405
	StatusNotAcceptable                Status = 406
	StatusProxyAuthenticationRequired  Status = 407
	StatusRequestTimeout               Status = 408
	StatusConflict                     Status = 409
	StatusGone                         Status = 410
	StatusLengthRequired               Status = 411
	StatusPreconditionFailed           Status = 412
	StatusPayloadTooLarge              Status = 413
	StatusURITooLong                   Status = 414
	StatusUnsupportedMediaType         Status = 415
	StatusRangeNotSatisfiable          Status = 416
	StatusExpectationFailed            Status = 417
	StatusMisdirectedRequest           Status = 421
	StatusUnprocessableContent         Status = 422
	StatusLocked                       Status = 423
	StatusFailedDependency             Status = 424
	StatusTooEarly                     Status = 425
	StatusPreconditionRequired         Status = 428
	StatusTooManyRequests              Status = 429
	StatusRequestHeaderFieldsTooLarge  Status = 431
	StatusUnavailableForLegalReasons   Status = 451

	StatusInternalServerError           Status = 500
	StatusNotImplemented                Status = 501
	StatusBadGateway                    Status = 502
	StatusServiceUnavailable            Status = 503
	StatusGatewayTimeout                Status = 504
	StatusHTTPVersionNotSupported       Status = 505
	StatusVariantAlsoNegotiates         Status = 506
	StatusInsufficientStorage           Status = 507
	StatusLoopDetected                  Status = 508
	StatusNotExtended                   Status = 510
	StatusNetworkAuthenticationRequired Status = 511
)

var statusReason = map[Status]string{
	StatusContinue:           "CONTINUE",
	StatusSwitchingProtocols: "SWITCHING PROTOCOLS",
	StatusProcessing:         "PROCESSING",

	StatusOK:                          "OK",
	StatusCreated:                     "CREATED",
	StatusAccepted:                    "ACCEPTED",
	StatusNonAuthoritativeInformation: "NON-AUTHORITATIVE INFORMATION",
	StatusNoContent:                   "NO CONTENT",
	StatusResetContent:                "RESET CONTENT",
	StatusPartialContent:              "PARTIAL CONTENT",
	StatusMultiStatus:                 "MULTI-STATUS",
	StatusAlreadyReported:             "ALREADY REPORTED",
	StatusIMUsed:                      "IM USED",

	StatusMultipleChoices:   "MULTIPLE CHOICES",
	StatusMovedPermanently:  "MOVED PERMANENTLY",
	StatusFound:             "FOUND",
	StatusSeeOther:          "SEE OTHER",
	StatusNotModified:       "NOT MODIFIED",
	StatusUseProxy:          "USE PROXY",
	StatusTemporaryRedirect: "TEMPORARY REDIRECT",
	StatusPermanentRedirect: "PERMANENT REDIRECT",

	StatusBadRequest:                  "BAD REQUEST",
	StatusUnauthorized:                "UNAUTHORIZED",
	StatusPaymentRequired:             "PAYMENT REQUIRED",
	StatusForbidden:                   "FORBIDDEN",
	StatusNotFound:                    "NOT FOUND",
	StatusMethodNotAllowed:            "METHOD NOT ALLOWED",
	StatusNotAcceptable:               "NOT ACCEPTABLE",
	StatusProxyAuthenticationRequired: "PROXY AUTHENTICATION REQUIRED",
	StatusRequestTimeout:              "REQUEST TIMEOUT",
	StatusConflict:                    "CONFLICT",
	StatusGone:                        "GONE",
	StatusLengthRequired:              "LENGTH REQUIRED",
	StatusPreconditionFailed:          "PRECONDITION FAILED",
	StatusPayloadTooLarge:             "PAYLOAD TOO LARGE",
	StatusURITooLong:                  "URI TOO LONG",
	StatusUnsupportedMediaType:        "UNSUPPORTED MEDIA TYPE",
	StatusRangeNotSatisfiable:         "RANGE NOT SATISFIABLE",
	StatusExpectationFailed:           "EXPECTATION FAILED",
	StatusMisdirectedRequest:          "MISDIRECTED REQUEST",
	StatusUnprocessableContent:        "UNPROCESSABLE CONTENT",
	StatusLocked:                      "LOCKED",
	StatusFailedDependency:            "FAILED DEPENDENCY",
	StatusTooEarly:                    "TOO EARLY",
	StatusPreconditionRequired:        "PRECONDITION REQUIRED",
	StatusTooManyRequests:             "TOO MANY REQUESTS",
	StatusRequestHeaderFieldsTooLarge: "REQUEST HEADER FIELDS TOO LARGE",
	StatusUnavailableForLegalReasons:  "UNAVAILABLE FOR LEGAL REASONS",

	StatusInternalServerError:           "INTERNAL SERVER ERROR",
	StatusNotImplemented:                "NOT IMPLEMENTED",
	StatusBadGateway:                    "BAD GATEWAY",
	StatusServiceUnavailable:            "SERVICE UNAVAILABLE",
	StatusGatewayTimeout:                "GATEWAY TIMEOUT",
	StatusHTTPVersionNotSupported:       "HTTP VERSION NOT SUPPORTED",
	StatusVariantAlsoNegotiates:         "VARIANT ALSO NEGOTIATES",
	StatusInsufficientStorage:           "INSUFFICIENT STORAGE",
	StatusLoopDetected:                  "LOOP DETECTED",
	StatusNotExtended:                   "NOT EXTENDED",
	StatusNetworkAuthenticationRequired: "NETWORK AUTHENTICATION REQUIRED",
}

// Reason returns s's reason phrase, or "UNKNOWN STATUS" for a code this
// package does not recognize (still a valid response line per RFC-2616
// §6.1.1: "the reason-phrase is intended to give a short textual
// description... and is not interpreted").
func (s Status) Reason() string {
	if reason, ok := statusReason[s]; ok {
		return reason
	}
	return "UNKNOWN STATUS"
}

// Code returns the numeric status code.
func (s Status) Code() int { return int(s) }

func (s Status) String() string {
	return fmt.Sprintf("%d %s", int(s), s.Reason())
}

// IsSuccess reports whether s is in the 2xx range.
func (s Status) IsSuccess() bool { return s >= 200 && s < 300 }

// IsError reports whether s is a 4xx or 5xx response.
func (s Status) IsError() bool { return s >= 400 }
