// Package equivalence 提供食材重量換算資料的來源
package equivalence

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"grocery-pricer/internal/core/pricing"
	"grocery-pricer/internal/infrastructure/config"
	"grocery-pricer/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Lister 可列出換算資料的儲存層
type Lister interface {
	ListEquivalences(ctx context.Context) ([]pricing.Equivalence, error)
}

// FromStore 以儲存層作為換算資料來源
func FromStore(l Lister) pricing.EquivalenceLoader {
	return l.ListEquivalences
}

// HTTPSource 透過 HTTP 取得換算資料
type HTTPSource struct {
	client *resty.Client
}

// NewHTTPSource 創建 HTTP 換算資料來源
func NewHTTPSource(cfg config.EquivalenceConfig) *HTTPSource {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "grocery-pricer").
		SetRetryCount(2)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))
	}

	return &HTTPSource{client: client}
}

// Load 取得全部換算資料
func (s *HTTPSource) Load(ctx context.Context) ([]pricing.Equivalence, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get("/equivalences")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch equivalences: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("equivalence source returned %d: %s", resp.StatusCode(), resp.String())
	}

	// 解析回應
	var result struct {
		Equivalences []pricing.Equivalence `json:"equivalences"`
	}
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse equivalences: %w", err)
	}

	common.LogDebug("已取得換算資料", zap.Int("count", len(result.Equivalences)))
	return result.Equivalences, nil
}

// NewLoader 依設定選擇換算資料來源，none 時回傳 nil
func NewLoader(cfg config.EquivalenceConfig, store Lister) (pricing.EquivalenceLoader, error) {
	switch cfg.Source {
	case "", "store":
		if store == nil {
			return nil, fmt.Errorf("equivalence store source requires a repository")
		}
		return FromStore(store), nil
	case "http":
		if cfg.URL == "" {
			return nil, fmt.Errorf("equivalence url is required for http source")
		}
		return NewHTTPSource(cfg).Load, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown equivalence source %q", cfg.Source)
	}
}
