package server

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/sector_radar/internal/conf"
	"github.com/iWorld-y/sector_radar/internal/usecase"
	"github.com/iWorld-y/sector_radar/pkg/analyzer"
	"github.com/iWorld-y/sector_radar/pkg/cache"
	"github.com/iWorld-y/sector_radar/pkg/collector"
	"github.com/iWorld-y/sector_radar/pkg/config"
	drLogger "github.com/iWorld-y/sector_radar/pkg/logger"
	"github.com/iWorld-y/sector_radar/pkg/ratelimit"
	"github.com/iWorld-y/sector_radar/pkg/report"
	"github.com/iWorld-y/sector_radar/pkg/search"
	"github.com/iWorld-y/sector_radar/pkg/search/factory"
)

// NewSearcher 初始化搜索客户端，同时完成流水线日志初始化。
// 搜索未配置时返回 nil，collector 会降级到兜底数据
func NewSearcher(ec *conf.Engine, logger log.Logger) search.Searcher {
	helper := log.NewHelper(logger)

	if ec.Log != nil {
		if err := drLogger.InitLogger(ec.Log.Level, ec.Log.File); err != nil {
			helper.Errorf("failed to init pipeline logger: %v", err)
			_ = drLogger.InitLogger("info", "") // 降级处理
		}
	}

	if ec.Search == nil {
		helper.Warn("search section not configured, collector will run degraded")
		return nil
	}

	// 将 internal/conf 转换为 pkg/config 的搜索配置
	scfg := &config.SearchConfig{Provider: ec.Search.Provider}
	if ec.Search.Tavily != nil {
		scfg.Tavily = config.TavilyConfig{APIKey: ec.Search.Tavily.ApiKey}
	}
	if ec.Search.Searxng != nil {
		scfg.SearXNG = config.SearXNGConfig{
			BaseURL: ec.Search.Searxng.BaseUrl,
			Timeout: int(ec.Search.Searxng.Timeout),
		}
	}

	searcher, err := factory.NewSearcher(scfg)
	if err != nil {
		helper.Warnf("search client unavailable: %v", err)
		return nil
	}
	return searcher
}

// NewChatModel 初始化 LLM。未配置时返回 nil，analyzer 会降级
func NewChatModel(ec *conf.Engine, logger log.Logger) model.ChatModel {
	helper := log.NewHelper(logger)

	var lcfg *config.LLMConfig
	if ec.Llm != nil {
		lcfg = &config.LLMConfig{
			BaseURL: ec.Llm.BaseUrl,
			APIKey:  ec.Llm.ApiKey,
			Model:   ec.Llm.Model,
		}
	}

	cm, err := analyzer.NewChatModel(context.Background(), lcfg)
	if err != nil {
		helper.Errorf("failed to init chat model, analyzer will run degraded: %v", err)
		return nil
	}
	if cm == nil {
		helper.Warn("llm api_key not configured, analyzer will run degraded")
	}
	return cm
}

// NewLLMLimiter LLM 出站调用限流器。Limit 取 RPM/60，Burst 取 QPS
func NewLLMLimiter(ec *conf.Engine) *rate.Limiter {
	rpm, qps := 60, 1
	if ec.Concurrency != nil {
		if ec.Concurrency.Rpm > 0 {
			rpm = int(ec.Concurrency.Rpm)
		}
		if ec.Concurrency.Qps > 0 {
			qps = int(ec.Concurrency.Qps)
		}
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), qps)
}

// NewCollector 创建行情收集器
func NewCollector(searcher search.Searcher) *collector.Collector {
	return collector.New(searcher)
}

// NewAnalyzer 创建 LLM 分析器
func NewAnalyzer(cm model.ChatModel, limiter *rate.Limiter) *analyzer.Analyzer {
	return analyzer.New(cm, limiter)
}

// NewReportCache 创建报告缓存
func NewReportCache(lc *conf.Limits) *cache.Cache {
	ttl := time.Hour
	if lc != nil && lc.CacheTtlSeconds > 0 {
		ttl = time.Duration(lc.CacheTtlSeconds) * time.Second
	}
	return cache.New(ttl)
}

// NewRateLimiter 创建入站请求固定窗口限流器
func NewRateLimiter(lc *conf.Limits) *ratelimit.Limiter {
	limit := ratelimit.DefaultLimit
	if lc != nil && lc.RateLimitPerHour > 0 {
		limit = int(lc.RateLimitPerHour)
	}
	return ratelimit.New(limit, time.Hour)
}

// NewAnalysisUseCase 组装分析流水线
func NewAnalysisUseCase(col *collector.Collector, an *analyzer.Analyzer, c *cache.Cache,
	lc *conf.Limits, logger log.Logger) *usecase.AnalysisUseCase {
	ttl := time.Hour
	if lc != nil && lc.CacheTtlSeconds > 0 {
		ttl = time.Duration(lc.CacheTtlSeconds) * time.Second
	}
	return usecase.NewAnalysisUseCase(col, an, c, report.NewGenerator(), ttl, logger)
}
