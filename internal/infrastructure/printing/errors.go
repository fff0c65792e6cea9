package printing

import "fmt"

// RenderError reports why an invoice could not be turned into HTML or a
// PDF. errors.Is matches on Code, so callers compare against the sentinels.
type RenderError struct {
	Code string
	Msg  string
	Err  error
}

var (
	ErrRenderTimeout  = &RenderError{Code: "RENDER_TIMEOUT", Msg: "rendering timed out"}
	ErrRenderFailed   = &RenderError{Code: "RENDER_FAILED", Msg: "rendering failed"}
	ErrInvalidHTML    = &RenderError{Code: "INVALID_HTML", Msg: "invalid HTML"}
	ErrInvalidInvoice = &RenderError{Code: "INVALID_INVOICE", Msg: "invalid invoice"}
)

func (e *RenderError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool {
	t, ok := target.(*RenderError)
	return ok && t.Code == e.Code
}

// renderErr derives an error of kind's code with its own message and cause
func renderErr(kind *RenderError, msg string, cause error) *RenderError {
	return &RenderError{Code: kind.Code, Msg: msg, Err: cause}
}
