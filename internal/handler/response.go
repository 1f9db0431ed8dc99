package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"bridge-be/internal/catalog"
	"bridge-be/internal/courier"
	"bridge-be/internal/logger"
	"bridge-be/internal/order"
	"bridge-be/internal/user"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.L().Error("failed to marshal JSON response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		logger.L().Error("failed to write JSON response", zap.Error(err))
	}
}

// respondWithServiceError maps a domain error to its status code. Client
// errors carry the error text; anything unmapped is logged and hidden.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	code := mapErrorToStatusCode(err)
	if code == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error(fallback,
			zap.String("layer", "handler"),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondWithError(w, code, fallback)
		return
	}
	respondWithError(w, code, err.Error())
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrCourierNotFound),
		errors.Is(err, courier.ErrNotFound),
		errors.Is(err, catalog.ErrStoreNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrOrderExists),
		errors.Is(err, order.ErrCourierUnavailable),
		errors.Is(err, user.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, order.ErrInvalidOrder),
		errors.Is(err, order.ErrStoreRequired),
		errors.Is(err, order.ErrNoProducts),
		errors.Is(err, order.ErrInvalidQty),
		errors.Is(err, order.ErrAddressMissing),
		errors.Is(err, order.ErrUnknownStatus),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrNotAuthenticated),
		errors.Is(err, user.ErrSessionNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// On failure it writes the response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		logger.FromCtx(r.Context()).Debug("failed to decode request body", zap.Error(err))
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return false
	}

	if err := v.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
			return false
		}
		logger.FromCtx(r.Context()).Error("unexpected validation error", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return false
	}
	return true
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required", "required_without":
			details[field] = "is required"
		case "email":
			details[field] = "must be a valid email"
		case "min":
			details[field] = "must be at least " + fe.Param()
		case "gt":
			details[field] = "must be greater than " + fe.Param()
		case "oneof":
			details[field] = "must be one of " + fe.Param()
		default:
			details[field] = "is invalid"
		}
	}
	return details
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
