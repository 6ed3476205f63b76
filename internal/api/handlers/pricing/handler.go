package pricing

import (
	"context"
	"errors"
	"net/http"
	"time"

	"grocery-pricer/internal/core/preview"
	corePricing "grocery-pricer/internal/core/pricing"
	"grocery-pricer/internal/core/run"
	"grocery-pricer/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RowReader 讀取已計算的食譜價格
type RowReader interface {
	GetRecipe(ctx context.Context, id string) (*corePricing.Recipe, error)
	RecipeStorePrices(ctx context.Context, recipeID, weekOf string) ([]corePricing.RecipeStorePrice, error)
}

// StatusResponse 執行狀態
type StatusResponse struct {
	Lock        run.LockStatus `json:"lock"`
	LastSummary *run.Summary   `json:"last_summary,omitempty"`
}

// RecipePricesResponse 單一食譜在某週的各商店價格
type RecipePricesResponse struct {
	RecipeID       string                         `json:"recipe_id"`
	RecipeName     string                         `json:"recipe_name"`
	WeekOf         string                         `json:"week_of"`
	EstimatedPrice *float64                       `json:"estimated_price,omitempty"`
	CheapestStore  string                         `json:"cheapest_store,omitempty"`
	Prices         []corePricing.RecipeStorePrice `json:"prices"`
}

// Handler 定價相關 API
type Handler struct {
	runner  *run.Runner
	rows    RowReader
	preview *preview.Service
	debug   bool
	now     func() time.Time
}

// NewHandler 創建定價處理程序
func NewHandler(runner *run.Runner, rows RowReader, previewSvc *preview.Service, debug bool) *Handler {
	return &Handler{
		runner:  runner,
		rows:    rows,
		preview: previewSvc,
		debug:   debug,
		now:     time.Now,
	}
}

// Register 註冊路由，adminMW 套用於觸發與重置，previewMW 僅套用於預覽
func (h *Handler) Register(g *gin.RouterGroup, adminMW []gin.HandlerFunc, previewMW ...gin.HandlerFunc) {
	g.POST("/runs", chain(adminMW, h.HandleRun)...)
	g.GET("/runs/status", h.HandleStatus)
	g.POST("/runs/reset", chain(adminMW, h.HandleReset)...)
	g.GET("/recipes/:id/prices", h.HandleRecipePrices)
	g.POST("/preview", chain(previewMW, h.HandlePreview)...)
}

func chain(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	return append(append(out, mw...), h)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	ce := common.AsCustomError(err)
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestid.Get(c)),
		)
	}
	_ = c.Error(err)
	c.JSON(ce.Status, ce.Response(h.debug))
}

// HandleRun 觸發一次價格計算
//
// async=true 時立即回傳 202，結果可由狀態 API 查詢。
func (h *Handler) HandleRun(c *gin.Context) {
	// 計算不隨用戶端斷線而中止
	ctx := context.WithoutCancel(c.Request.Context())

	if c.Query("async") == "true" {
		if h.runner.Lock().IsRunning() {
			h.respondError(c, common.ErrRunInProgress)
			return
		}
		runID := requestid.Get(c)
		go func() {
			if _, err := h.runner.Run(ctx); err != nil {
				common.LogWarn("背景價格計算未成功", zap.Error(err), zap.String("request_id", runID))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"accepted": true, "status_url": "/api/v1/pricing/runs/status"})
		return
	}

	summary, err := h.runner.Run(ctx)
	if err != nil {
		ce := common.AsCustomError(err)
		if errors.Is(err, common.ErrRunInProgress) {
			common.LogInfo("價格計算已在進行中，拒絕新請求", zap.String("request_id", requestid.Get(c)))
		} else {
			common.LogError("價格計算失敗", zap.Error(err), zap.String("request_id", requestid.Get(c)))
		}
		c.JSON(ce.Status, gin.H{
			"error":   ce.Response(h.debug),
			"summary": summary,
		})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// HandleStatus 回傳執行鎖狀態
func (h *Handler) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Lock:        h.runner.Lock().Status(),
		LastSummary: h.runner.LastSummary(),
	})
}

// HandleReset 手動釋放卡住的執行鎖
func (h *Handler) HandleReset(c *gin.Context) {
	reset := h.runner.Lock().ForceReset()
	common.LogWarn("手動重置執行鎖",
		zap.Bool("was_running", reset),
		zap.String("client_ip", c.ClientIP()),
		zap.String("request_id", requestid.Get(c)),
	)
	c.JSON(http.StatusOK, gin.H{"reset": reset})
}

// HandleRecipePrices 查詢食譜在指定週的價格
func (h *Handler) HandleRecipePrices(c *gin.Context) {
	recipeID := c.Param("id")

	weekOf := run.WeekOf(h.now())
	if w := c.Query("week"); w != "" {
		parsed, err := run.ParseWeek(w)
		if err != nil {
			h.respondError(c, common.ErrInvalidRequest.WithErr(err))
			return
		}
		weekOf = parsed
	}

	recipe, err := h.rows.GetRecipe(c.Request.Context(), recipeID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	rows, err := h.rows.RecipeStorePrices(c.Request.Context(), recipeID, weekOf)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if rows == nil {
		rows = []corePricing.RecipeStorePrice{}
	}

	resp := RecipePricesResponse{
		RecipeID:       recipe.ID,
		RecipeName:     recipe.Name,
		WeekOf:         weekOf,
		EstimatedPrice: recipe.EstimatedPrice,
		Prices:         rows,
	}
	var best float64
	for _, row := range rows {
		if row.IsComplete && (resp.CheapestStore == "" || row.TotalCost < best) {
			resp.CheapestStore = row.StoreID
			best = row.TotalCost
		}
	}
	c.JSON(http.StatusOK, resp)
}

// HandlePreview 簡化價格預覽
func (h *Handler) HandlePreview(c *gin.Context) {
	var req preview.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效", zap.Error(err), zap.String("request_id", requestid.Get(c)))
		h.respondError(c, common.ErrInvalidRequest.WithErr(err))
		return
	}

	resp, err := h.preview.Preview(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
