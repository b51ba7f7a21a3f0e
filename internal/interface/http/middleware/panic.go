// panic.go recovers from handler panics and replies with an INTERNAL_ERROR
// instead of dropping the connection. Stack traces are logged.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/beastmint/mintd/internal/interface/http/response"
	"github.com/beastmint/mintd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var somethingWentWrong = errors.INTERNAL_ERROR.New("something went wrong")

func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Errorf("panic-recovery middleware recovered from panic: %v", rec)
				log.Errorf("stack trace: %v", string(debug.Stack()))
				response.Error(w, r, somethingWentWrong)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
