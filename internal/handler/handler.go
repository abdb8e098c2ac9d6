package handler

import (
	"errors"
	"net/http"

	"github.com/dompetkeluarga/backend/internal/auth"
	"github.com/dompetkeluarga/backend/internal/pricing"
	"github.com/dompetkeluarga/backend/internal/service"
	"github.com/dompetkeluarga/backend/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler exposes the finance services over a JSON API.
type Handler struct {
	svc       *service.FinanceService
	rec       *service.Reconciler
	zakat     *service.ZakatCalculator
	allocator *service.Allocator
	gold      *pricing.GoldClient
	fx        *pricing.Exchanger
	log       zerolog.Logger
}

func New(
	svc *service.FinanceService,
	rec *service.Reconciler,
	zakat *service.ZakatCalculator,
	allocator *service.Allocator,
	gold *pricing.GoldClient,
	fx *pricing.Exchanger,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		svc:       svc,
		rec:       rec,
		zakat:     zakat,
		allocator: allocator,
		gold:      gold,
		fx:        fx,
		log:       log,
	}
}

// Register mounts all routes on the (already authenticated) group.
func (h *Handler) Register(r *gin.RouterGroup) {
	r.GET("/wallets", h.listWallets)
	r.POST("/wallets", h.createWallet)
	r.PUT("/wallets/:id", h.updateWallet)
	r.DELETE("/wallets/:id", h.deleteWallet)
	r.GET("/wallets/:id/credit-usage", h.creditUsage)

	r.GET("/transactions", h.listTransactions)
	r.POST("/transactions", h.createTransaction)
	r.PUT("/transactions/:id", h.updateTransaction)
	r.DELETE("/transactions/:id", h.deleteTransaction)
	r.GET("/transactions/export", h.exportTransactions)

	r.GET("/categories", h.listCategories)
	r.POST("/categories", h.createCategory)
	r.PUT("/categories/:id", h.updateCategory)
	r.DELETE("/categories/:id", h.deleteCategory)

	r.GET("/goals", h.listGoals)
	r.POST("/goals", h.createGoal)
	r.PUT("/goals/:id", h.updateGoal)
	r.DELETE("/goals/:id", h.deleteGoal)

	r.GET("/assets", h.listAssets)
	r.POST("/assets", h.createAsset)
	r.PUT("/assets/:id", h.updateAsset)
	r.DELETE("/assets/:id", h.deleteAsset)

	r.GET("/subscriptions", h.listSubscriptions)
	r.POST("/subscriptions", h.createSubscription)
	r.PUT("/subscriptions/:id", h.updateSubscription)
	r.DELETE("/subscriptions/:id", h.deleteSubscription)
	r.GET("/subscriptions/totals", h.subscriptionTotals)

	r.GET("/summary", h.summary)
	r.GET("/trends", h.trends)
	r.GET("/asset-growth", h.assetGrowth)
	r.GET("/budget-progress", h.budgetProgress)
	r.GET("/goal-progress", h.goalProgress)

	r.POST("/reconcile", h.reconcile)
	r.GET("/zakat", h.zakatReport)

	r.GET("/prices/gold", h.goldPrice)
	r.GET("/rates/:currency", h.exchangeRate)

	r.GET("/allocator/state", h.allocatorState)
	r.PUT("/allocator/state", h.saveAllocatorState)
	r.DELETE("/allocator/state", h.resetAllocatorState)
	r.GET("/allocator/templates", h.allocatorTemplates)
	r.POST("/allocator/templates", h.saveAllocatorTemplate)
	r.DELETE("/allocator/templates/:id", h.deleteAllocatorTemplate)
	r.POST("/allocator/templates/:id/load", h.loadAllocatorTemplate)
	r.POST("/allocator/apply", h.applyAllocatorBudget)
}

func userID(c *gin.Context) string {
	return auth.UserID(c)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
