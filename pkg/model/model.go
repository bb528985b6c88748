package model

import "time"

// Snippet 单条搜索摘要（标题 + 摘录）
type Snippet struct {
	Title   string
	URL     string
	Content string
}

// MarketData 行情收集结果
type MarketData struct {
	Sector      string
	Query       string
	Snippets    []Snippet
	CollectedAt time.Time
	Degraded    bool // 外部搜索失败时使用兜底数据
}

// AnalysisResult LLM 分析结果
type AnalysisResult struct {
	Sector     string
	Insights   string // LLM 返回的原始 Markdown 文本
	AnalyzedAt time.Time
	Degraded   bool // LLM 调用失败时使用兜底分析
}

// Analysis 对外返回的完整分析报告
type Analysis struct {
	Sector      string
	Report      string
	GeneratedAt time.Time
	Degraded    bool
	Cached      bool // 是否来自缓存
}
