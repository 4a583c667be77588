package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/domainerr"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/logging"
)

const maxBodyBytes = 1 << 20

var (
	errInvalidJSON = domainerr.New(domainerr.KindValidation, "INVALID_JSON", "request body is not valid JSON")
	errInternal    = domainerr.New(domainerr.KindInfrastructure, "INTERNAL_ERROR", "internal server error")
)

type errorBody struct {
	Error         *domainerr.Error `json:"error"`
	CorrelationID string           `json:"correlationId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status by kind. Infrastructure details are logged
// and replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, err error) {
	de, ok := domainerr.As(err)
	if !ok || de.Kind == domainerr.KindInfrastructure {
		logging.FromContext(r.Context(), logger).WithError(err).Error("request failed")
		code := errInternal.Code
		if ok {
			code = de.Code
		}
		de = &domainerr.Error{Code: code, Kind: domainerr.KindInfrastructure, Message: errInternal.Message}
	}

	writeJSON(w, statusFor(de), errorBody{Error: de, CorrelationID: logging.CorrelationID(r.Context())})
}

func statusFor(de *domainerr.Error) int {
	if errors.Is(de, checkout.ErrCustomerNotEligible) {
		return http.StatusForbidden
	}
	switch de.Kind {
	case domainerr.KindValidation:
		return http.StatusBadRequest
	case domainerr.KindBusiness:
		return http.StatusConflict
	case domainerr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a single JSON document. Amount validation errors raised
// while decoding pass through unchanged.
func decodeJSON(r *http.Request, dst any) error {
	_, err := decodeBody(r, dst)
	return err
}

// decodeBody also reports whether the body held no JSON value at all, which
// covers chunked requests whose length is unknown up front.
func decodeBody(r *http.Request, dst any) (bool, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true, errInvalidJSON.Withf("request body is empty")
		}
		if de, ok := domainerr.As(err); ok {
			return false, de
		}
		return false, errInvalidJSON.Withf("invalid request body: %v", err)
	}
	return false, nil
}
