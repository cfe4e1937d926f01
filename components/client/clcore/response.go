package clcore

import (
	"fmt"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/status"
)

// ErrorFromCode converts the error response of the remote thing to the status error.
//
// Remarks:
//   - Success codes return nil.
func ErrorFromCode(code bdcore.Code, body string) error {
	var err error

	switch code {
	case bdcore.CodeOK, bdcore.CodeChanged, bdcore.CodeDeleted:
		return nil
	case bdcore.CodeBadRequest:
		err = status.StatusInvalidArg
	case bdcore.CodeUnauthorized:
		if body == "token expired" {
			err = status.StatusTokenExpired
		} else {
			err = status.StatusUnauthorized
		}
	case bdcore.CodeNotFound:
		err = status.StatusNotFound
	case bdcore.CodeMethodNotAllowed:
		err = status.StatusNotSupported
	default:
		err = status.StatusError
	}

	return fmt.Errorf("client: remote error: code=%s body=%q: %w", code, body, err)
}
