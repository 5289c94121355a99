package controllers

import (
	"net/http"

	idsvc "github.com/rzbill/uniqueid/internal/services/ids"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"
)

// GeneralController serves endpoints that are not about IDs.
type GeneralController struct {
	svc *idsvc.Service
}

// NewGeneralController creates a new general controller.
func NewGeneralController(svc *idsvc.Service) *GeneralController {
	return &GeneralController{svc: svc}
}

// RegisterRoutes registers /v1/healthz.
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/healthz", c.handleHealth)
}

// handleHealth answers with the same HealthCheckResponse the gRPC health
// service returns, encoded with protojson: {"status":"SERVING"}.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	res := &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}
	code := http.StatusOK
	if err := c.svc.CheckHealth(r.Context()); err != nil {
		res.Status = healthpb.HealthCheckResponse_NOT_SERVING
		code = http.StatusServiceUnavailable
	}
	b, err := protojson.Marshal(res)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
