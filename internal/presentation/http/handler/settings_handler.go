package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tsiory/pos-print-relay/internal/application/service"
	"github.com/tsiory/pos-print-relay/internal/infrastructure/statestore"
	"github.com/tsiory/pos-print-relay/internal/presentation/http/dto/response"
)

// SettingsHandler exposes the relay's active configuration and print history.
type SettingsHandler struct {
	printService *service.PrintService
	state        *statestore.Store
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(printService *service.PrintService, state *statestore.Store) *SettingsHandler {
	return &SettingsHandler{printService: printService, state: state}
}

// GetConfig returns the active render options and printer status.
func (h *SettingsHandler) GetConfig(c *gin.Context) {
	response.OK(c, "Configuration retrieved", gin.H{
		"render":  h.printService.RenderOptions(),
		"printer": h.printService.GetStatus(),
	})
}

// GetState returns the persisted relay state and recent print history.
func (h *SettingsHandler) GetState(c *gin.Context) {
	state, err := h.state.Load()
	if err != nil {
		response.InternalServerError(c, "Failed to load state: "+err.Error())
		return
	}
	response.OK(c, "State retrieved", state)
}
