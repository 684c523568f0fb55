package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"board/app/dto"
	"board/app/repositories"
	"board/app/services"
	"board/logger"

	"github.com/gorilla/mux"
)

// badRequestError marks malformed input that never reached a service.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...interface{}) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.Errorf("encode response: %v", err)
	}
}

// sendError maps err to a status code and writes an ErrorResponse.
func sendError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *dto.ValidationError
		nf   *services.NotFoundError
		bad  *badRequestError
	)

	switch {
	case errors.As(err, &verr):
		resp := dto.NewErrorResponse(http.StatusBadRequest, "validation failed")
		resp.Errors = verr.Fields
		sendJSON(w, http.StatusBadRequest, resp)
	case errors.As(err, &bad):
		sendJSON(w, http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, bad.msg))
	case errors.Is(err, repositories.ErrInvalidSort):
		sendJSON(w, http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, err.Error()))
	case errors.As(err, &nf):
		sendJSON(w, http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, nf.Error()))
	case errors.Is(err, repositories.ErrNotFound):
		sendJSON(w, http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "resource not found"))
	default:
		logger.ErrorWithFields("request failed", logger.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		})
		sendJSON(w, http.StatusInternalServerError,
			dto.NewErrorResponse(http.StatusInternalServerError, "internal server error"))
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("invalid JSON: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s", name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("invalid %s: %q", name, raw)
	}
	return n, nil
}

// pageRequest reads page, size, sortBy and direction from the query string.
// The default order is createdAt descending.
func pageRequest(r *http.Request) (repositories.PageRequest, error) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		return repositories.PageRequest{}, err
	}
	size, err := queryInt(r, "size", repositories.DefaultPageSize)
	if err != nil {
		return repositories.PageRequest{}, err
	}

	q := r.URL.Query()
	sortBy, direction := q.Get("sortBy"), q.Get("direction")
	if sortBy == "" {
		if direction == "" {
			return repositories.NewPageRequest(page, size), nil
		}
		sortBy = "createdAt"
	}
	order, err := repositories.ParseOrder(sortBy, direction)
	if err != nil {
		return repositories.PageRequest{}, err
	}
	return repositories.NewPageRequest(page, size, order), nil
}
