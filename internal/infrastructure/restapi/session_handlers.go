package restapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wallet_dashboard/internal/app/port"
)

// SelectNetworkRequest is the body of PUT /sessions/:id/network.
type SelectNetworkRequest struct {
	NetworkID string `json:"networkId" binding:"required"`
}

// ConnectRequest is the body of POST /sessions/:id/connect.
type ConnectRequest struct {
	ConnectorID string `json:"connectorId" binding:"required"`
}

// SessionHandler обрабатывает HTTP запросы, связанные с сессиями.
type SessionHandler struct {
	store          port.SessionStore
	dashboards     port.DashboardService
	logger         port.Logger
	connectTimeout time.Duration
}

// NewSessionHandler creates a new SessionHandler. connectTimeout bounds how long a
// connect request waits for the wallet; zero means the request context alone.
func NewSessionHandler(
	store port.SessionStore,
	dashboards port.DashboardService,
	l port.Logger,
	connectTimeout time.Duration,
) *SessionHandler {
	return &SessionHandler{
		store:          store,
		dashboards:     dashboards,
		logger:         l,
		connectTimeout: connectTimeout,
	}
}

func (h *SessionHandler) session(c *gin.Context) (port.SessionManager, bool) {
	manager, err := h.store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return nil, false
	}
	return manager, true
}

// CreateSessionHandler starts a session on the default network.
func (h *SessionHandler) CreateSessionHandler(c *gin.Context) {
	_, manager := h.store.Create()
	respond(c, http.StatusCreated, manager.Snapshot(), "Session created.")
}

// GetSessionHandler returns the session's selection and connection.
func (h *SessionHandler) GetSessionHandler(c *gin.Context) {
	manager, ok := h.session(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, manager.Snapshot(), "Session retrieved successfully.")
}

// DeleteSessionHandler disconnects and forgets the session.
func (h *SessionHandler) DeleteSessionHandler(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, nil)
		return
	}
	respond(c, http.StatusOK, nil, "Session deleted.")
}

// SelectNetworkHandler switches the selected network.
func (h *SessionHandler) SelectNetworkHandler(c *gin.Context) {
	var req SelectNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, nil, "Invalid request body: "+err.Error())
		return
	}
	manager, ok := h.session(c)
	if !ok {
		return
	}
	if err := manager.SelectNetwork(req.NetworkID); err != nil {
		respondError(c, err, manager.Snapshot())
		return
	}
	respond(c, http.StatusOK, manager.Snapshot(), "Network selected.")
}

// ConnectHandler connects a wallet through the requested connector.
func (h *SessionHandler) ConnectHandler(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, nil, "Invalid request body: "+err.Error())
		return
	}
	manager, ok := h.session(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if h.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.connectTimeout)
		defer cancel()
	}

	state, err := manager.Connect(ctx, req.ConnectorID)
	if err != nil {
		respondError(c, err, state)
		return
	}
	respond(c, http.StatusOK, state, "Wallet connected.")
}

// DisconnectHandler disconnects the wallet. It always succeeds.
func (h *SessionHandler) DisconnectHandler(c *gin.Context) {
	manager, ok := h.session(c)
	if !ok {
		return
	}
	state := manager.Disconnect(c.Request.Context())
	respond(c, http.StatusOK, state, "Wallet disconnected.")
}

// DashboardHandler returns the view model of the selected network.
func (h *SessionHandler) DashboardHandler(c *gin.Context) {
	manager, ok := h.session(c)
	if !ok {
		return
	}
	vm, err := h.dashboards.Dashboard(c.Request.Context(), manager.Snapshot())
	if err != nil {
		h.logger.Error("Failed to build dashboard", "session", c.Param("id"), "error", err)
		respond(c, http.StatusBadGateway, nil, "Failed to load dashboard data: "+err.Error())
		return
	}
	respond(c, http.StatusOK, vm, "Dashboard retrieved successfully.")
}

