package gemini

// Status codes defined by the Gemini specification.
const (
	StatusInput                     = 10
	StatusSensitiveInput            = 11
	StatusSuccess                   = 20
	StatusRedirectTemporary         = 30
	StatusRedirectPermanent         = 31
	StatusTemporaryFailure          = 40
	StatusServerUnavailable         = 41
	StatusCGIError                  = 42
	StatusProxyError                = 43
	StatusSlowDown                  = 44
	StatusPermanentFailure          = 50
	StatusNotFound                  = 51
	StatusGone                      = 52
	StatusProxyRequestRefused       = 53
	StatusBadRequest                = 59
	StatusClientCertificateRequired = 60
	StatusCertificateNotAuthorized  = 61
	StatusCertificateNotValid       = 62
)

// StatusClass is the leading digit of a response status.
type StatusClass int

const (
	// ClassUnknown is returned for statuses outside 10-69.
	ClassUnknown StatusClass = 0

	// ClassInput means the server requests user input.
	ClassInput StatusClass = 1

	// ClassSuccess means the body holds the requested document.
	ClassSuccess StatusClass = 2

	// ClassRedirect means meta holds a new URL.
	ClassRedirect StatusClass = 3

	// ClassTemporaryFailure means the request may succeed later.
	ClassTemporaryFailure StatusClass = 4

	// ClassPermanentFailure means the request will not succeed.
	ClassPermanentFailure StatusClass = 5

	// ClassClientCertificate means a client certificate is required.
	ClassClientCertificate StatusClass = 6
)

// ClassOf returns the class of a status code.
func ClassOf(status int) StatusClass {
	if status < 10 || status > 69 {
		return ClassUnknown
	}
	return StatusClass(status / 10)
}

// String returns a human-readable name for the class.
func (c StatusClass) String() string {
	switch c {
	case ClassInput:
		return "input"
	case ClassSuccess:
		return "success"
	case ClassRedirect:
		return "redirect"
	case ClassTemporaryFailure:
		return "temporary failure"
	case ClassPermanentFailure:
		return "permanent failure"
	case ClassClientCertificate:
		return "client certificate required"
	default:
		return "unknown"
	}
}

// IsRedirect reports whether status is one of the two redirect codes.
func IsRedirect(status int) bool {
	return status == StatusRedirectTemporary || status == StatusRedirectPermanent
}
