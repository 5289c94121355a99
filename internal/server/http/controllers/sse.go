package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

// sseSink writes IDs as Server-Sent Events.
type sseSink struct {
	w http.ResponseWriter
	r *http.Request
}

// Send writes one ID as an SSE data event.
func (s sseSink) Send(id uniqueid.ID) error {
	b, _ := json.Marshal(idResp{ID: id.String()})
	if _, err := s.w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("\n\n")); err != nil {
		return err
	}
	return nil
}

// SendError writes err as an SSE "error" event.
func (s sseSink) SendError(err error) error {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	_, werr := fmt.Fprintf(s.w, "event: error\ndata: %s\n\n", b)
	return werr
}

// Context returns the request context for cancellation.
func (s sseSink) Context() context.Context {
	return s.r.Context()
}

// Flush flushes the HTTP response writer if it supports flushing.
func (s sseSink) Flush() error {
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
