package handler

import (
	"net"

	"github.com/gin-gonic/gin"
	"github.com/tsiory/pos-print-relay/internal/application/service"
	"github.com/tsiory/pos-print-relay/internal/config"
	"github.com/tsiory/pos-print-relay/internal/presentation/http/dto/response"
)

// Version is the relay release version reported by the discovery endpoint.
const Version = "1.2.0"

// DiscoveryHandler lets point-of-sale terminals find and identify a relay
// on the local network.
type DiscoveryHandler struct {
	cfg          *config.Config
	printService *service.PrintService
}

// NewDiscoveryHandler creates a new discovery handler.
func NewDiscoveryHandler(cfg *config.Config, printService *service.PrintService) *DiscoveryHandler {
	return &DiscoveryHandler{cfg: cfg, printService: printService}
}

// GetInfo identifies this relay: name, version, reachable address, and the
// attached printer's status.
func (h *DiscoveryHandler) GetInfo(c *gin.Context) {
	response.OK(c, "Relay info retrieved", gin.H{
		"service": h.cfg.App.Name,
		"version": Version,
		"ip":      localIP(),
		"port":    h.cfg.App.Port,
		"printer": h.printService.GetStatus(),
	})
}

// localIP finds the outbound interface address. The dial never sends a
// packet; UDP connect only resolves routing.
func localIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
