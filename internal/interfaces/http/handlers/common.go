// Package handlers implements the molstore HTTP endpoints.  Handlers decode
// and validate requests, call the application services and render their
// results; error codes are translated to statuses in one place, writeAppError.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/pkg/errors"
	"github.com/qaioz/molstore/pkg/types/common"
)

// ErrorResponse is the standard error response body.
type ErrorResponse = common.ErrorDetail

// Link is a hypermedia reference attached to resources.
type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
	Type string `json:"type"`
}

func getLink(href, rel string) Link {
	return Link{Href: href, Rel: rel, Type: http.MethodGet}
}

// newValidator returns a validator that reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, statusCode int, code errors.ErrorCode, message string) {
	writeJSON(w, statusCode, ErrorResponse{Code: string(code), Message: message})
}

// writeAppError maps application errors to HTTP status codes.  Server-class
// failures are logged and masked.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("request_id", logging.RequestIDFromContext(r.Context())),
			logging.Err(err))
		writeError(w, http.StatusInternalServerError, errors.ErrCodeInternal, errors.DefaultMessageForCode(errors.ErrCodeInternal))
		return
	}

	message := err.Error()
	var ae *errors.AppError
	if errors.As(err, &ae) {
		message = ae.Message
		if ae.Detail != "" {
			message += ": " + ae.Detail
		}
	}
	writeError(w, status, code, message)
}

// decodeJSON decodes the request body into dst and validates it.
func decodeJSON(r *http.Request, v *validator.Validate, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "invalid request body").WithDetail(err.Error())
	}
	if err := v.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, errors.ErrCodeValidation, "validation failed")
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.New(errors.ErrCodeValidation, "validation failed").WithDetail(strings.Join(parts, "; "))
}

// pathID parses the integer URL parameter name.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeValidation, "invalid path parameter").
			WithDetail(fmt.Sprintf("%s=%q is not an integer", name, raw))
	}
	return id, nil
}

// queryInt returns the integer query parameter name, or nil when absent.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New(errors.ErrCodeValidation, "invalid query parameter").
			WithDetail(fmt.Sprintf("%s=%q is not an integer", name, raw))
	}
	return &v, nil
}

func queryFloat(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New(errors.ErrCodeValidation, "invalid query parameter").
			WithDetail(fmt.Sprintf("%s=%q is not a number", name, raw))
	}
	return &v, nil
}

func queryString(r *http.Request, name string) *string {
	if !r.URL.Query().Has(name) {
		return nil
	}
	v := r.URL.Query().Get(name)
	return &v
}

func queryBool(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, errors.New(errors.ErrCodeValidation, "invalid query parameter").
			WithDetail(fmt.Sprintf("%s=%q is not a boolean", name, raw))
	}
	return v, nil
}

// parsePagination extracts the zero-indexed page and pageSize query
// parameters.  Range checks are left to the services.
func parsePagination(r *http.Request) (int, int, error) {
	page, pageSize := 0, common.DefaultPageSize
	p, err := queryInt(r, "page")
	if err != nil {
		return 0, 0, err
	}
	if p != nil {
		page = *p
	}
	ps, err := queryInt(r, "pageSize")
	if err != nil {
		return 0, 0, err
	}
	if ps != nil {
		pageSize = *ps
	}
	return page, pageSize, nil
}

//Personal.AI order the ending
