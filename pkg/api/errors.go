package api

import (
	"net/http"

	"github.com/codeready-toolchain/orchestratord/pkg/apperr"
)

// classToStatus maps an apperr.Class to the HTTP status the Public Surface
// returns for it: busy sessions get 503, timeouts get 504, internal
// invariant violations get 500, and everything else that reaches this
// mapping is a request-time failure worth 400.
func classToStatus(class apperr.Class) int {
	switch class {
	case apperr.ClassBusy:
		return http.StatusServiceUnavailable
	case apperr.ClassConfig:
		return http.StatusBadRequest
	case apperr.ClassTimeout:
		return http.StatusGatewayTimeout
	case apperr.ClassInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// errorBodyFor builds the {error:{class,message}} payload every /chat
// failure response carries.
func errorBodyFor(err error) ErrorBody {
	if ce, ok := apperr.As(err); ok {
		return ErrorBody{Class: string(ce.Class), Message: ce.Message}
	}
	return ErrorBody{Class: string(apperr.ClassInternal), Message: err.Error()}
}
