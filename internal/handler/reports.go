package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/dompetkeluarga/backend/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) summary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) trends(c *gin.Context) {
	points, err := h.svc.MonthlyTrend(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (h *Handler) assetGrowth(c *gin.Context) {
	points, err := h.svc.AssetGrowth(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (h *Handler) budgetProgress(c *gin.Context) {
	statuses, err := h.svc.BudgetProgress(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (h *Handler) goalProgress(c *gin.Context) {
	statuses, err := h.svc.GoalProgress(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

func (h *Handler) creditUsage(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	id := c.Param("id")
	for _, wb := range summary.WalletBalances {
		if wb.ID == id {
			if wb.Kind != model.WalletCreditCard {
				c.JSON(http.StatusBadRequest, gin.H{"error": "wallet is not a credit card"})
				return
			}
			c.JSON(http.StatusOK, service.CreditUsage(wb))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func (h *Handler) subscriptionTotals(c *gin.Context) {
	subs, err := h.svc.ListSubscriptions(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	monthly, yearly := service.SubscriptionTotals(subs)
	c.JSON(http.StatusOK, gin.H{"monthly": monthly, "yearly": yearly})
}

func (h *Handler) reconcile(c *gin.Context) {
	res, err := h.rec.Run(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// zakatReport evaluates zakat mal over the current summary. An optional
// goldPrice query parameter (rupiah per gram) overrides the fetched
// spot price.
func (h *Handler) zakatReport(c *gin.Context) {
	var manualPrice int64
	if s := c.Query("goldPrice"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "goldPrice must be a positive integer"})
			return
		}
		manualPrice = v
	}

	summary, err := h.svc.Summary(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.zakat.Calculate(c.Request.Context(), summary, manualPrice))
}

func (h *Handler) goldPrice(c *gin.Context) {
	c.JSON(http.StatusOK, h.gold.PricePerGram(c.Request.Context()))
}

func (h *Handler) exchangeRate(c *gin.Context) {
	currency := strings.ToUpper(c.Param("currency"))
	rate, err := h.fx.Rate(c.Request.Context(), currency)
	if err != nil {
		// A missing rate is not an error the client can act on beyond
		// leaving the value unconverted.
		c.JSON(http.StatusOK, gin.H{"from": currency, "to": "IDR", "rate": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": currency, "to": "IDR", "rate": rate})
}
