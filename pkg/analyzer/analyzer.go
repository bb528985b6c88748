package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/sector_radar/pkg/config"
	"github.com/iWorld-y/sector_radar/pkg/logger"
	dm "github.com/iWorld-y/sector_radar/pkg/model"
)

const (
	// generateTimeout 单次 LLM 调用超时
	generateTimeout = 60 * time.Second
	// minInsightLen 低于该长度视为无效回复，走兜底分析
	minInsightLen = 100
	// maxPromptSnippets 进入 prompt 的摘要条数上限
	maxPromptSnippets = 10
)

const systemPrompt = "You are an expert financial analyst and market researcher specializing in Indian markets and trade opportunities. Answer in markdown only, without meta commentary."

const promptTemplate = `Analyze the %s sector in India and provide a trade opportunity analysis.

**Market Data Collected:**
%s

**Required Report Structure (markdown, ## headers):**

## Market Overview
Current state of the sector: size, dynamics, key segments, recent developments.

## Key Market Trends
4-6 major trends with specific examples from the data.

## Trade Opportunities
Specific, actionable opportunities: export targets, import substitution, investment areas, partnerships.

## Growth Drivers
4-6 key factors driving growth.

## Risks & Challenges
Regulatory, competitive, economic and supply chain risks.

## Investment Recommendations
Entry strategies, segments to watch, timing, risk mitigation.

**Guidelines:** use concrete numbers and examples from the provided data, professional analytical tone, no generic placeholder text. Start directly with the Market Overview section.`

// Analyzer LLM 分析器
type Analyzer struct {
	cm      model.ChatModel
	limiter *rate.Limiter
}

// New 创建分析器实例。cm 为 nil 表示未配置 LLM，分析时直接走兜底
func New(cm model.ChatModel, limiter *rate.Limiter) *Analyzer {
	return &Analyzer{cm: cm, limiter: limiter}
}

// NewChatModel 根据配置初始化 LLM。未配置 api_key 时返回 nil 而不报错，
// 由调用方降级处理
func NewChatModel(ctx context.Context, cfg *config.LLMConfig) (model.ChatModel, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, nil
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("init chat model failed: %w", err)
	}
	return cm, nil
}

// Configured 返回 LLM 是否已配置
func (a *Analyzer) Configured() bool {
	return a.cm != nil
}

// Analyze 将收集到的行情摘要交给 LLM 生成分析文本。
// 调用失败不向上抛错，返回兜底分析并置 Degraded 标记；单次往返，不重试。
func (a *Analyzer) Analyze(ctx context.Context, data *dm.MarketData) *dm.AnalysisResult {
	result := &dm.AnalysisResult{
		Sector:     data.Sector,
		AnalyzedAt: time.Now().UTC(),
	}

	if a.cm == nil {
		logger.Log.Warnf("LLM 未配置，使用兜底分析 [%s]", data.Sector)
		result.Insights = fallbackInsights(data.Sector)
		result.Degraded = true
		return result
	}

	gctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	if a.limiter != nil {
		if err := a.limiter.Wait(gctx); err != nil {
			logger.Log.Errorf("等待限流器失败 [%s]: %v", data.Sector, err)
			result.Insights = fallbackInsights(data.Sector)
			result.Degraded = true
			return result
		}
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: buildPrompt(data)},
	}

	resp, err := a.cm.Generate(gctx, messages)
	if err != nil {
		logger.Log.Errorf("LLM 调用失败 [%s]: %v", data.Sector, err)
		result.Insights = fallbackInsights(data.Sector)
		result.Degraded = true
		return result
	}

	insights := strings.TrimSpace(resp.Content)
	if len(insights) < minInsightLen {
		logger.Log.Warnf("LLM 返回内容过短 [%s]: %d chars", data.Sector, len(insights))
		result.Insights = fallbackInsights(data.Sector)
		result.Degraded = true
		return result
	}

	logger.Log.Infof("行业 [%s] 生成 %d 字符分析", data.Sector, len(insights))
	result.Insights = insights
	return result
}

// buildPrompt 拼装分析 prompt
func buildPrompt(data *dm.MarketData) string {
	var sb strings.Builder
	for i, s := range data.Snippets {
		if i >= maxPromptSnippets {
			break
		}
		if s.Title != "" {
			fmt.Fprintf(&sb, "**%s**\n", s.Title)
		}
		sb.WriteString(s.Content)
		if s.URL != "" {
			fmt.Fprintf(&sb, "\nSource: %s", s.URL)
		}
		sb.WriteString("\n\n")
	}
	return fmt.Sprintf(promptTemplate, data.Sector, strings.TrimSpace(sb.String()))
}

// fallbackInsights LLM 不可用时的通用兜底分析
func fallbackInsights(sector string) string {
	return fmt.Sprintf(`## Market Overview
The %[1]s sector in India represents a significant opportunity for investors and traders, with steady growth driven by macroeconomic factors.

## Key Market Trends
- Increasing domestic demand
- Government policy support
- Digital transformation
- Focus on quality and innovation

## Trade Opportunities
- Export potential to emerging markets
- Import substitution opportunities
- Value chain integration

## Growth Drivers
- Rising middle class
- Infrastructure development
- Favorable demographics
- Policy reforms

## Risks & Challenges
- Regulatory changes
- Competition intensity
- Global market volatility
- Supply chain dependencies

## Investment Recommendations
- Conduct thorough due diligence
- Monitor regulatory developments
- Diversify portfolio exposure

*Note: this is a generic analysis produced without a live model. Configure the LLM credential for real-time insights.*`, sector)
}
