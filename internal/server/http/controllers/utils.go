package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	idsvc "github.com/rzbill/uniqueid/internal/services/ids"
	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps a service error onto an HTTP status.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, uniqueid.ErrParameterOutOfBounds), errors.Is(err, idsvc.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, uniqueid.ErrClockRegression), errors.Is(err, uniqueid.ErrStallTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// selectorFromQuery reads the optional generator/cluster query parameters.
// Giving only one of them leaves the other at 0.
func selectorFromQuery(r *http.Request) (idsvc.Selector, error) {
	q := r.URL.Query()
	gs, cs := q.Get("generator"), q.Get("cluster")
	if gs == "" && cs == "" {
		return idsvc.DefaultSelector(), nil
	}
	g, err := parseIntParam("generator", gs)
	if err != nil {
		return idsvc.Selector{}, err
	}
	c, err := parseIntParam("cluster", cs)
	if err != nil {
		return idsvc.Selector{}, err
	}
	return idsvc.For(g, c), nil
}

func parseIntParam(name, s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", idsvc.ErrInvalidArgument, name, s)
	}
	return n, nil
}

// parseCount parses the batch size parameter. Empty means 1.
func parseCount(s string) (int, error) {
	if s == "" {
		return 1, nil
	}
	return parseIntParam("n", s)
}

func toDecodedJSON(d idsvc.DecodedID) decodedJSON {
	return decodedJSON{
		ID:     d.ID.String(),
		Fields: d.Fields,
		Time:   d.ID.Time().UTC().Format(time.RFC3339Nano),
	}
}
