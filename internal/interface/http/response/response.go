package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/beastmint/mintd/pkg/errors"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

type errorEnvelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   any    `json:"details,omitempty"`
	RequestId string `json:"requestId,omitempty"`
}

// JSON writes data as is. Every api reply already carries its own success
// field so no envelope is added.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error converts err into the error envelope. Typed errors keep their http
// status, code name and metadata; anything else is an internal error.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var structuredErr errors.Error
	if !stderrors.As(err, &structuredErr) {
		structuredErr = errors.INTERNAL_ERROR.Wrap(err)
	}

	status := httpStatus(structuredErr)
	if status >= http.StatusInternalServerError {
		structuredErr.Log().
			WithField("path", r.URL.Path).
			WithField("request_id", chimiddleware.GetReqID(r.Context())).
			Error(structuredErr.Message())
	} else {
		log.WithField("name", structuredErr.CodeName()).
			WithField("path", r.URL.Path).
			Debug(structuredErr.Message())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Success:   false,
		Error:     structuredErr.Message(),
		Code:      structuredErr.CodeName(),
		Details:   details(structuredErr),
		RequestId: chimiddleware.GetReqID(r.Context()),
	})
}

// httpStatus relays the marketplace status of a failed status check so the
// caller can tell an unknown request id from an outage.
func httpStatus(err errors.Error) int {
	if err.Code() == errors.MINT_STATUS_CHECK_FAILED.Code {
		if typed, ok := err.(errors.TypedError[errors.StatusCodeMetadata]); ok {
			upstream := typed.TypedMetadata().StatusCode
			if upstream >= http.StatusBadRequest && upstream < 600 {
				return upstream
			}
		}
	}
	return err.HTTPStatus()
}

func details(err errors.Error) any {
	d := err.Details()
	if m, ok := d.(map[string]any); ok && len(m) <= 0 {
		return nil
	}
	return d
}
