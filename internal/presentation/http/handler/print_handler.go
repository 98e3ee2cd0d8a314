package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tsiory/pos-print-relay/internal/application/service"
	"github.com/tsiory/pos-print-relay/internal/presentation/http/dto/request"
	"github.com/tsiory/pos-print-relay/internal/presentation/http/dto/response"
)

// PrintHandler handles print instructions and printer queries.
type PrintHandler struct {
	printService *service.PrintService
}

// NewPrintHandler creates a new print handler.
func NewPrintHandler(printService *service.PrintService) *PrintHandler {
	return &PrintHandler{printService: printService}
}

// Print renders an order's receipt and sends it to the printer.
func (h *PrintHandler) Print(c *gin.Context) {
	var req request.PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.printService.PrintOrder(c.Request.Context(), req.OrderName, req.RegisterID, req.UserID, req.Reprint)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed successfully", result)
}

// GetStatus returns the current printer connection status.
func (h *PrintHandler) GetStatus(c *gin.Context) {
	status := h.printService.GetStatus()
	response.OK(c, "Printer status retrieved", status)
}

// TestPrint sends a test page to the printer.
func (h *PrintHandler) TestPrint(c *gin.Context) {
	receipt, err := h.printService.TestPrint()
	if err != nil {
		// Return the receipt data anyway (useful when printer type is "none")
		response.OK(c, "Test print completed (printer may be disabled)", gin.H{
			"receipt": receipt,
			"warning": err.Error(),
		})
		return
	}

	response.OK(c, "Test page sent to printer", gin.H{
		"receipt": receipt,
	})
}
