package handler

import (
	"strings"

	"github.com/erp/backoffice/internal/application/document"
	settingapp "github.com/erp/backoffice/internal/application/setting"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DocumentHandler serves document numbering, totals and money formatting
type DocumentHandler struct {
	BaseHandler
	numbering *document.NumberingService
	provider  *settingapp.Provider
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(numbering *document.NumberingService, provider *settingapp.Provider) *DocumentHandler {
	return &DocumentHandler{
		numbering: numbering,
		provider:  provider,
	}
}

// NextNumber POST /documents/:type/number allocates the next display number
func (h *DocumentHandler) NextNumber(c *gin.Context) {
	docType := document.DocumentType(strings.ToLower(c.Param("type")))
	issued, err := h.numbering.Next(c.Request.Context(), docType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.DocumentNumberResponse{
		Type:    string(issued.Type),
		Counter: issued.Counter,
		Number:  issued.Number,
	})
}

// CalculateTotals POST /documents/totals. Formatted amounts are included
// only when the money format settings are complete.
func (h *DocumentHandler) CalculateTotals(c *gin.Context) {
	var req dto.CalculateTotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	items := make([]document.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = document.LineItem{
			ItemName: item.ItemName,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}

	totals, err := document.CalculateTotals(items, req.TaxRate, req.Discount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := dto.TotalsResponse{
		SubTotal:   totals.SubTotal,
		TaxTotal:   totals.TaxTotal,
		Discount:   totals.Discount,
		Total:      totals.Total,
		LineTotals: totals.Lines,
	}

	ctx := c.Request.Context()
	formatter, err := h.provider.MoneyFormatter(ctx)
	if err != nil {
		logger.FromContext(ctx).Debug("Totals returned unformatted", zap.Error(err))
	} else {
		resp.Formatted = &dto.FormattedTotals{
			SubTotal: formatter.Money(totals.SubTotal),
			TaxTotal: formatter.Money(totals.TaxTotal),
			Discount: formatter.Money(totals.Discount),
			Total:    formatter.Money(totals.Total),
		}
	}
	h.Success(c, resp)
}

// FormatMoney GET /money/format?amount=1234.5
func (h *DocumentHandler) FormatMoney(c *gin.Context) {
	raw := c.Query("amount")
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		h.BadRequest(c, "amount must be a decimal number")
		return
	}

	formatter, err := h.provider.MoneyFormatter(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.FormatMoneyResponse{
		Amount:    amount.String(),
		Money:     formatter.Money(amount),
		Formatted: formatter.Amount(amount),
	})
}
