package controllers

import (
	"net/http"

	idsvc "github.com/rzbill/uniqueid/internal/services/ids"
)

// ControllerRegistry manages all HTTP controllers.
type ControllerRegistry struct {
	general *GeneralController
	ids     *IDsController
}

// NewControllerRegistry creates a new controller registry around the shared
// ID service.
func NewControllerRegistry(svc *idsvc.Service) *ControllerRegistry {
	return &ControllerRegistry{
		general: NewGeneralController(svc),
		ids:     NewIDsController(svc),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.ids.RegisterRoutes(mux)
}
