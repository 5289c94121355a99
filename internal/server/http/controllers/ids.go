package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	idsvc "github.com/rzbill/uniqueid/internal/services/ids"
)

// IDsController serves ID generation and decoding.
type IDsController struct {
	svc *idsvc.Service
}

// NewIDsController creates a new IDs controller.
func NewIDsController(svc *idsvc.Service) *IDsController {
	return &IDsController{svc: svc}
}

// RegisterRoutes registers the /v1/ids endpoints.
func (c *IDsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/ids", c.handleGenerate)
	mux.HandleFunc("/v1/ids/batch", c.handleBatch)
	mux.HandleFunc("/v1/ids/stream", c.handleStream)
	mux.HandleFunc("/v1/ids/decode", c.handleDecode)
}

// handleGenerate returns {"id": "<hex>"}. Accepts GET and POST.
func (c *IDsController) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	sel, err := selectorFromQuery(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	id, err := c.svc.Generate(r.Context(), sel)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, idResp{ID: id.String()})
}

// handleBatch returns {"ids": [...]} for ?n=.
func (c *IDsController) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	sel, err := selectorFromQuery(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	n, err := parseCount(r.URL.Query().Get("n"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	ids, err := c.svc.Batch(r.Context(), sel, n)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := batchResp{IDs: make([]string, 0, len(ids))}
	for _, id := range ids {
		out.IDs = append(out.IDs, id.String())
	}
	writeJSON(w, out)
}

// streamChunk is how many IDs handleStream generates per service call.
const streamChunk = 64

// handleStream emits ?n= IDs as server-sent events, one {"id": "<hex>"}
// per event, flushing after every event. A failure after the first event
// is reported as an "error" event.
func (c *IDsController) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	sel, err := selectorFromQuery(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	n, err := parseCount(r.URL.Query().Get("n"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if n > c.svc.MaxBatch() {
		writeServiceError(w, fmt.Errorf("%w: batch size %d outside [1, %d]", idsvc.ErrInvalidArgument, n, c.svc.MaxBatch()))
		return
	}
	first, err := c.svc.Batch(r.Context(), sel, min(n, streamChunk))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	sink := sseSink{w: w, r: r}
	for sent, chunk := 0, first; ; {
		for _, id := range chunk {
			if err := sink.Context().Err(); err != nil {
				return
			}
			if err := sink.Send(id); err != nil {
				return
			}
			_ = sink.Flush()
		}
		sent += len(chunk)
		if sent >= n {
			return
		}
		if chunk, err = c.svc.Batch(r.Context(), sel, min(n-sent, streamChunk)); err != nil {
			// headers are out; report in-band
			_ = sink.SendError(err)
			_ = sink.Flush()
			return
		}
	}
}

// handleDecode decodes one ID (GET ?id=) or many with an optional CEL
// filter (POST {"ids": [...], "filter": "..."}).
func (c *IDsController) handleDecode(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		d, err := c.svc.Decode(r.URL.Query().Get("id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, toDecodedJSON(d))
	case http.MethodPost:
		var req decodeReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		decoded, err := c.svc.DecodeFiltered(req.IDs, req.Filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := decodeResp{IDs: make([]decodedJSON, 0, len(decoded))}
		for _, d := range decoded {
			out.IDs = append(out.IDs, toDecodedJSON(d))
		}
		writeJSON(w, out)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
