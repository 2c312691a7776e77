// Package controllers adapts HTTP requests to the service layer.
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/ventas/app/services"
	"github.com/shashiranjanraj/ventas/pkg/bind"
	"github.com/shashiranjanraj/ventas/pkg/logger"
	"github.com/shashiranjanraj/ventas/pkg/orm"
	"github.com/shashiranjanraj/ventas/pkg/response"
)

// respondError maps a service error onto the response envelope.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		response.ValidationError(w, ve.Fields)
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, services.ErrReferentialIntegrity), errors.Is(err, services.ErrConflict):
		response.Conflict(w, err.Error())
	default:
		logger.WithCtx(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// decode binds the JSON body into dest. On failure it writes a 400 or 422
// and returns false.
func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	errs, err := bind.JSON(w, r, dest)
	if err != nil {
		response.BadRequest(w, err.Error())
		return false
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return false
	}
	return true
}

// parseID reads a positive integer path parameter.
func parseID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, &services.ValidationError{Fields: map[string]string{name: "The " + name + " must be a positive integer."}}
	}
	return uint(n), nil
}

// parsePage reads ?skip= and ?limit=. A missing limit falls back to
// orm.DefaultLimit; out-of-range values are rejected rather than clamped.
func parsePage(r *http.Request) (skip, limit int, err error) {
	fields := map[string]string{}
	q := r.URL.Query()

	if raw := q.Get("skip"); raw != "" {
		if skip, err = strconv.Atoi(raw); err != nil || skip < 0 {
			fields["skip"] = "The skip must be a non-negative integer."
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 || limit > orm.MaxLimit {
			fields["limit"] = fmt.Sprintf("The limit must be an integer between 1 and %d.", orm.MaxLimit)
		}
	}
	if len(fields) > 0 {
		return 0, 0, &services.ValidationError{Fields: fields}
	}
	return skip, limit, nil
}
