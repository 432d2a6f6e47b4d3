package controllers

import (
	"net/http"

	"github.com/kittors/simple-message-service/internal/runtime"
	messagesvc "github.com/kittors/simple-message-service/internal/services/messages"
	logpkg "github.com/kittors/simple-message-service/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
//
// It provides a centralized way to register all controller routes.
type ControllerRegistry struct {
	general  *GeneralController
	messages *MessagesController
}

// NewControllerRegistry initializes all controllers with the provided
// runtime and message service.
func NewControllerRegistry(rt *runtime.Runtime, svc *messagesvc.Service, logger logpkg.Logger) *ControllerRegistry {
	return &ControllerRegistry{
		general:  NewGeneralController(rt),
		messages: NewMessagesController(svc, logger),
	}
}

// RegisterAllRoutes registers every controller route with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.messages.RegisterRoutes(mux)
}
