package bdcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// Code is a protocol-neutral response code.
type Code int

const (
	CodeOK Code = iota
	CodeChanged
	CodeDeleted
	CodeBadRequest
	CodeUnauthorized
	CodeNotFound
	CodeMethodNotAllowed
	CodeInternalError
)

// String returns the human readable code description.
func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeChanged:
		return "Changed"
	case CodeDeleted:
		return "Deleted"
	case CodeBadRequest:
		return "Bad Request"
	case CodeUnauthorized:
		return "Unauthorized"
	case CodeNotFound:
		return "Not Found"
	case CodeMethodNotAllowed:
		return "Method Not Allowed"
	case CodeInternalError:
		return "Internal Error"
	default:
		return "<none>"
	}
}

// Request is a protocol-neutral inbound request.
type Request struct {
	Method  Method
	URI     string
	Token   string
	Content thcore.Content
}

// Response is a protocol-neutral result of the request.
type Response struct {
	Code    Code
	Content thcore.Content
}

// Dispatch runs the request against the listener and maps the result to the response.
//
// Remarks:
//   - nil listener means the resource isn't registered.
//   - Panics are recovered and reported as CodeInternalError.
//   - Validation failures are reported without the validator details.
func Dispatch(ctx context.Context, listener Listener, req Request) (resp Response) {
	if listener == nil {
		return errorResponse(CodeNotFound, "resource not found")
	}

	defer func() {
		if r := recover(); r != nil {
			core.LogErr.Printf("dispatch: listener panicked: method=%s uri=%s: %v\n",
				req.Method, req.URI, r)

			resp = errorResponse(CodeInternalError, "internal error")
		}
	}()

	if listener.HasProtection() {
		subject, err := listener.Validate(req.Method, req.URI, req.Token)
		if err != nil {
			core.LogDbg.Printf("dispatch: token rejected: method=%s uri=%s: %v\n",
				req.Method, req.URI, err)

			if errors.Is(err, status.StatusTokenExpired) {
				return errorResponse(CodeUnauthorized, "token expired")
			}

			return errorResponse(CodeUnauthorized, "unauthorized")
		}

		ctx = WithSubject(ctx, subject)
	}

	switch req.Method {
	case MethodGet:
		content, err := listener.OnGet(ctx)
		if err != nil {
			return failure(req, err)
		}

		return Response{Code: CodeOK, Content: content}

	case MethodPut:
		if err := listener.OnPut(ctx, req.Content); err != nil {
			return failure(req, err)
		}

		return Response{Code: CodeChanged}

	case MethodPost:
		content, err := listener.OnPost(ctx, req.Content)
		if err != nil {
			return failure(req, err)
		}

		return Response{Code: CodeOK, Content: content}

	case MethodDelete:
		if err := listener.OnDelete(ctx); err != nil {
			return failure(req, err)
		}

		return Response{Code: CodeDeleted}

	default:
		return errorResponse(CodeMethodNotAllowed, "method not allowed")
	}
}

// CodeFromError maps the error returned by a listener to the response code.
func CodeFromError(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, status.StatusNotSupported):
		return CodeMethodNotAllowed
	case errors.Is(err, status.StatusInvalidArg), errors.Is(err, status.StatusParse):
		return CodeBadRequest
	case errors.Is(err, status.StatusNotFound):
		return CodeNotFound
	case errors.Is(err, status.StatusUnauthorized), errors.Is(err, status.StatusTokenExpired):
		return CodeUnauthorized
	default:
		return CodeInternalError
	}
}

func failure(req Request, err error) Response {
	code := CodeFromError(err)

	if code == CodeInternalError {
		core.LogErr.Printf("dispatch: request failed: method=%s uri=%s: %v\n",
			req.Method, req.URI, err)
	}

	switch code {
	case CodeBadRequest:
		return errorResponse(code, fmt.Sprintf("bad request: %v", err))
	case CodeUnauthorized:
		return errorResponse(code, "unauthorized")
	default:
		return errorResponse(code, code.String())
	}
}

func errorResponse(code Code, text string) Response {
	return Response{
		Code:    code,
		Content: thcore.NewTextContent(text),
	}
}
