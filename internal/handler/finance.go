package handler

import (
	"net/http"
	"time"

	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/dompetkeluarga/backend/internal/store"
	"github.com/gin-gonic/gin"
)

// Wallets

func (h *Handler) listWallets(c *gin.Context) {
	wallets, err := h.svc.ListWallets(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, wallets)
}

func (h *Handler) createWallet(c *gin.Context) {
	var w model.Wallet
	if err := c.ShouldBindJSON(&w); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.svc.CreateWallet(c.Request.Context(), userID(c), &w)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) updateWallet(c *gin.Context) {
	var w model.Wallet
	if err := c.ShouldBindJSON(&w); err != nil {
		badRequest(c, err)
		return
	}
	w.ID = c.Param("id")
	if err := h.svc.UpdateWallet(c.Request.Context(), userID(c), &w); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) deleteWallet(c *gin.Context) {
	if err := h.svc.DeleteWallet(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Transactions

func (h *Handler) listTransactions(c *gin.Context) {
	filter, err := parseTransactionFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	transactions, err := h.svc.ListTransactions(c.Request.Context(), userID(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func parseTransactionFilter(c *gin.Context) (store.TransactionFilter, error) {
	var filter store.TransactionFilter
	filter.WalletID = c.Query("walletId")
	if s := c.Query("start"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}
	if s := c.Query("end"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &t
	}
	return filter, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (h *Handler) createTransaction(c *gin.Context) {
	var t model.Transaction
	if err := c.ShouldBindJSON(&t); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.svc.CreateTransaction(c.Request.Context(), userID(c), &t)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) updateTransaction(c *gin.Context) {
	var t model.Transaction
	if err := c.ShouldBindJSON(&t); err != nil {
		badRequest(c, err)
		return
	}
	t.ID = c.Param("id")
	if err := h.svc.UpdateTransaction(c.Request.Context(), userID(c), &t); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) deleteTransaction(c *gin.Context) {
	if err := h.svc.DeleteTransaction(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Categories

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) createCategory(c *gin.Context) {
	var cat model.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.svc.CreateCategory(c.Request.Context(), userID(c), &cat)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) updateCategory(c *gin.Context) {
	var cat model.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		badRequest(c, err)
		return
	}
	cat.ID = c.Param("id")
	if err := h.svc.UpdateCategory(c.Request.Context(), userID(c), &cat); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	if err := h.svc.DeleteCategory(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Goals

func (h *Handler) listGoals(c *gin.Context) {
	goals, err := h.svc.ListGoals(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

func (h *Handler) createGoal(c *gin.Context) {
	var g model.Goal
	if err := c.ShouldBindJSON(&g); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.svc.CreateGoal(c.Request.Context(), userID(c), &g)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) updateGoal(c *gin.Context) {
	var g model.Goal
	if err := c.ShouldBindJSON(&g); err != nil {
		badRequest(c, err)
		return
	}
	g.ID = c.Param("id")
	if err := h.svc.UpdateGoal(c.Request.Context(), userID(c), &g); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) deleteGoal(c *gin.Context) {
	if err := h.svc.DeleteGoal(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Assets

// createAssetRequest wraps the asset with an optional funding wallet.
// When fundingWalletId is present, the purchase is also recorded as an
// investment transaction against that wallet.
type createAssetRequest struct {
	model.Asset
	FundingWalletID string `json:"fundingWalletId"`
}

func (h *Handler) listAssets(c *gin.Context) {
	assets, err := h.svc.ListAssets(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (h *Handler) createAsset(c *gin.Context) {
	var req createAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.svc.CreateAsset(c.Request.Context(), userID(c), &req.Asset, req.FundingWalletID)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) updateAsset(c *gin.Context) {
	var a model.Asset
	if err := c.ShouldBindJSON(&a); err != nil {
		badRequest(c, err)
		return
	}
	a.ID = c.Param("id")
	if err := h.svc.UpdateAsset(c.Request.Context(), userID(c), &a); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) deleteAsset(c *gin.Context) {
	if err := h.svc.DeleteAsset(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions

func (h *Handler) listSubscriptions(c *gin.Context) {
	subs, err := h.svc.ListSubscriptions(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *Handler) createSubscription(c *gin.Context) {
	var sub model.Subscription
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.svc.CreateSubscription(c.Request.Context(), userID(c), &sub)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) updateSubscription(c *gin.Context) {
	var sub model.Subscription
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, err)
		return
	}
	sub.ID = c.Param("id")
	if err := h.svc.UpdateSubscription(c.Request.Context(), userID(c), &sub); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) deleteSubscription(c *gin.Context) {
	if err := h.svc.DeleteSubscription(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
