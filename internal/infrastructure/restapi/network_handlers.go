package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
)

// NetworkListResponse is the payload of GET /networks.
type NetworkListResponse struct {
	Networks       []entity.NetworkDescriptor `json:"networks"`
	DefaultNetwork string                     `json:"defaultNetwork"`
}

// CatalogHandler serves the static catalogues: networks and connectors.
type CatalogHandler struct {
	registry  port.NetworkRegistry
	connector port.WalletConnector
	logger    port.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(registry port.NetworkRegistry, connector port.WalletConnector, l port.Logger) *CatalogHandler {
	return &CatalogHandler{registry: registry, connector: connector, logger: l}
}

// ListNetworksHandler returns the registry in order.
func (h *CatalogHandler) ListNetworksHandler(c *gin.Context) {
	respond(c, http.StatusOK, NetworkListResponse{
		Networks:       h.registry.All(),
		DefaultNetwork: h.registry.Default().ID,
	}, "Networks retrieved successfully.")
}

// ListConnectorsHandler returns the connectors the wallet backend offers.
func (h *CatalogHandler) ListConnectorsHandler(c *gin.Context) {
	connectors, err := h.connector.ListConnectors(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list connectors", "error", err)
		respondError(c, entity.NewConnectionFailed("listing connectors", err), nil)
		return
	}
	respond(c, http.StatusOK, connectors, "Connectors retrieved successfully.")
}
