// Package response defines the error payloads served by the HTTP API. Every
// non-2xx response carries a human-readable message and a stable machine
// code so clients can branch without parsing text.
package response

// Machine codes carried by error responses.
const (
	CodeMissingURL         = "MISSING_URL"
	CodeInvalidURL         = "INVALID_URL"
	CodeInvalidShortcode   = "INVALID_SHORTCODE"
	CodeShortcodeCollision = "SHORTCODE_COLLISION"
	CodeNotFound           = "NOT_FOUND"
	CodeExpiredLink        = "EXPIRED_LINK"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInternalError      = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var (
	MissingURLResponse = ErrorResponse{
		Error: "The url field is required.",
		Code:  CodeMissingURL,
	}
	InvalidURLResponse = ErrorResponse{
		Error: "The provided url is not a valid absolute URL.",
		Code:  CodeInvalidURL,
	}
	InvalidShortcodeResponse = ErrorResponse{
		Error: "The shortcode must be 3-10 alphanumeric characters.",
		Code:  CodeInvalidShortcode,
	}
	ShortcodeCollisionResponse = ErrorResponse{
		Error: "The shortcode is already in use.",
		Code:  CodeShortcodeCollision,
	}
	NotFoundResponse = ErrorResponse{
		Error: "The requested shortcode doesn't exist.",
		Code:  CodeNotFound,
	}
	ExpiredLinkResponse = ErrorResponse{
		Error: "The short link has expired.",
		Code:  CodeExpiredLink,
	}
	InvalidRequestBodyResponse = ErrorResponse{
		Error: "The request body must be valid JSON.",
		Code:  CodeInvalidRequest,
	}
	ServerErrorResponse = ErrorResponse{
		Error: "An internal server error occurred. Please try again later.",
		Code:  CodeInternalError,
	}
)
