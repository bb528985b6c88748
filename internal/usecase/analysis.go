package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/singleflight"

	"github.com/iWorld-y/sector_radar/pkg/model"
	"github.com/iWorld-y/sector_radar/pkg/report"
)

// Collector 行情收集接口。失败在内部降级，不返回错误
type Collector interface {
	Collect(ctx context.Context, sector string) *model.MarketData
}

// Analyzer LLM 分析接口。失败在内部降级，不返回错误
type Analyzer interface {
	Analyze(ctx context.Context, data *model.MarketData) *model.AnalysisResult
}

// ReportCache 报告缓存接口
type ReportCache interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
}

// AnalysisUseCase 分析流水线业务逻辑：缓存 → 收集 → 分析 → 生成报告 → 回写缓存
type AnalysisUseCase struct {
	collector Collector
	analyzer  Analyzer
	cache     ReportCache
	generator *report.Generator
	ttl       time.Duration

	sf  singleflight.Group
	log *log.Helper
}

// NewAnalysisUseCase 创建分析流水线实例
func NewAnalysisUseCase(collector Collector, analyzer Analyzer, cache ReportCache,
	generator *report.Generator, ttl time.Duration, logger log.Logger) *AnalysisUseCase {
	return &AnalysisUseCase{
		collector: collector,
		analyzer:  analyzer,
		cache:     cache,
		generator: generator,
		ttl:       ttl,
		log:       log.NewHelper(logger),
	}
}

// Analyze 执行一次行业分析。sector 必须是已通过校验的行业名。
// 同一行业的并发请求通过 singleflight 合并，只触发一次外部调用。
func (uc *AnalysisUseCase) Analyze(ctx context.Context, sector string) (*model.Analysis, error) {
	if cached, ok := uc.cache.Get(sector); ok {
		uc.log.Infof("returning cached report for %s", sector)
		return &model.Analysis{
			Sector:      sector,
			Report:      cached,
			GeneratedAt: time.Now().UTC(),
			Cached:      true,
		}, nil
	}

	v, err, _ := uc.sf.Do(sector, func() (interface{}, error) {
		return uc.run(ctx, sector)
	})
	if err != nil {
		return nil, err
	}

	analysis, ok := v.(*model.Analysis)
	if !ok {
		return nil, fmt.Errorf("unexpected pipeline result type %T", v)
	}
	return analysis, nil
}

// run 完整执行收集、分析、报告三个阶段。阶段严格串行
func (uc *AnalysisUseCase) run(ctx context.Context, sector string) (*model.Analysis, error) {
	uc.log.Infof("step 1: collecting market data for %s", sector)
	data := uc.collector.Collect(ctx, sector)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	uc.log.Infof("step 2: analyzing data for %s", sector)
	result := uc.analyzer.Analyze(ctx, data)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	uc.log.Infof("step 3: generating markdown report for %s", sector)
	generatedAt := time.Now().UTC()
	md := uc.generator.Build(data, result, generatedAt)

	uc.cache.Set(sector, md, uc.ttl)

	return &model.Analysis{
		Sector:      sector,
		Report:      md,
		GeneratedAt: generatedAt,
		Degraded:    data.Degraded || result.Degraded,
	}, nil
}
