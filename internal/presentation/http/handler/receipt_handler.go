package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tsiory/pos-print-relay/internal/application/service"
	"github.com/tsiory/pos-print-relay/internal/presentation/http/dto/response"
)

// ReceiptHandler serves rendered receipt buffers without touching the printer,
// for print agents that drive their own hardware.
type ReceiptHandler struct {
	printService *service.PrintService
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(printService *service.PrintService) *ReceiptHandler {
	return &ReceiptHandler{printService: printService}
}

// GetReceipt renders one order's receipt and returns the raw printer bytes.
// The name "last" resolves to the most recent order, optionally filtered by
// register_id and user_id query parameters.
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	name := c.Param("name")
	if name == "last" {
		name = ""
	}
	registerID, _ := strconv.Atoi(c.Query("register_id"))
	userID, _ := strconv.Atoi(c.Query("user_id"))
	reprint := c.Query("reprint") == "true" || c.Query("reprint") == "1"

	order, data, err := h.printService.RenderReceipt(c.Request.Context(), name, registerID, userID, reprint)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("X-Order-Name", order.Name)
	c.Header("X-Order-Total", fmt.Sprintf("%.2f", order.AmountTotal))
	c.Header("X-Order-Date", order.Date.Format("2006-01-02 15:04:05"))
	c.Data(200, "application/octet-stream", data)
}
