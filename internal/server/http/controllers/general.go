package controllers

import (
	"net/http"

	"github.com/kittors/simple-message-service/internal/runtime"
)

// GeneralController handles endpoints not tied to a subscriber key.
type GeneralController struct {
	rt *runtime.Runtime
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime) *GeneralController {
	return &GeneralController{rt: rt}
}

// RegisterRoutes registers general routes with the given mux.
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/healthz", c.handleHealth)
}

// handleHealth returns 200 when the durable store answers a ping, 503
// otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeFailure(w, http.StatusServiceUnavailable, "not_serving", err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "ok")
}
