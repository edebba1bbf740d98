package v1

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/thomhuang/shipzone/internal/service"
	"github.com/thomhuang/shipzone/internal/shipping"
	"github.com/thomhuang/shipzone/pkg/requestid"
	"go.uber.org/zap"
)

type ErrorReply struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`

	status int
}

func (e ErrorReply) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.status)
	return nil
}

type errBadRequest struct {
	error
}

func badRequest(err error) error {
	return &errBadRequest{err}
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	var (
		validationErrs validator.ValidationErrors
		invalidReq     *service.ErrInvalidRequest
		badReq         *errBadRequest
		notFound       *service.ErrResourceNotFound
	)

	switch {
	case errors.As(err, &validationErrs),
		errors.As(err, &invalidReq),
		errors.As(err, &badReq),
		errors.Is(err, shipping.ErrInvalidPostalCode),
		errors.Is(err, shipping.ErrNonDomesticDestination):
		return http.StatusBadRequest
	case errors.As(err, &notFound),
		errors.Is(err, shipping.ErrPostalCodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, shipping.ErrDatasetUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	reply := ErrorReply{
		Message:   err.Error(),
		RequestID: requestid.FromRequest(r),
		status:    status,
	}

	switch status {
	case http.StatusInternalServerError:
		zap.S().Named("handler").Errorw("request failed", "path", r.URL.Path, "error", err, "request_id", reply.RequestID)
		reply.Message = "internal error"
	case http.StatusServiceUnavailable:
		reply.Message = "shipping rates are temporarily unavailable"
	}

	_ = render.Render(w, r, reply)
}
