package controllers

import (
	"net/http"
	"scoreboard/internal/providers"
	"scoreboard/internal/realtime"
	"scoreboard/internal/services"
)

type WsController struct {
	logger  providers.Logger
	service services.ScoreboardServiceInterface
	hub     *realtime.Hub
}

func NewWsController(logger providers.Logger, service services.ScoreboardServiceInterface, hub *realtime.Hub) *WsController {
	return &WsController{
		logger:  logger,
		service: service,
		hub:     hub,
	}
}

// Connect upgrades a display and greets it with the current board.
func (wc *WsController) Connect(w http.ResponseWriter, r *http.Request) {
	initial, err := realtime.Encode(services.EventState, wc.service.State())
	if err != nil {
		wc.logger.Errorf(providers.TypeGet, "Error encoding initial state: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := wc.hub.Serve(w, r, initial); err != nil {
		wc.logger.Warnf(providers.TypeGet, "Websocket upgrade from %s failed: %s", r.RemoteAddr, err)
	}
}
