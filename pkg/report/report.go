package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/iWorld-y/sector_radar/pkg/model"
)

// Generator Markdown 报告生成器。纯格式化，相同输入产出字节级一致的报告
type Generator struct{}

// NewGenerator 创建生成器实例
func NewGenerator() *Generator {
	return &Generator{}
}

// Build 将收集结果与分析结果组装为一篇 Markdown 报告。
// 固定章节顺序：标题、概要、数据来源、分析、降级提示、生成时间。
func (g *Generator) Build(data *model.MarketData, result *model.AnalysisResult, generatedAt time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Trade Opportunity Report: %s\n\n", titleCase(data.Sector))

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "Market analysis for the **%s** sector in India, based on %d collected data points.\n\n",
		data.Sector, len(data.Snippets))

	sb.WriteString("## Data Sources\n\n")
	for _, s := range data.Snippets {
		switch {
		case s.Title != "" && s.URL != "":
			fmt.Fprintf(&sb, "- [%s](%s)\n", s.Title, s.URL)
		case s.Title != "":
			fmt.Fprintf(&sb, "- %s\n", s.Title)
		default:
			fmt.Fprintf(&sb, "- %s\n", firstLine(s.Content))
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Analysis\n\n")
	sb.WriteString(strings.TrimSpace(result.Insights))
	sb.WriteString("\n\n")

	if data.Degraded || result.Degraded {
		sb.WriteString("> **Note:** parts of this report were produced in degraded mode because an external data source was unavailable. Figures may be generic.\n\n")
	}

	fmt.Fprintf(&sb, "---\n_Generated at %s_\n", generatedAt.UTC().Format(time.RFC3339))

	return sb.String()
}

// titleCase 首字母大写，连字符转空格，仅用于报告标题
func titleCase(sector string) string {
	words := strings.Split(strings.ReplaceAll(sector, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// firstLine 取内容首行作为来源条目
func firstLine(content string) string {
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	const max = 120
	if len(content) > max {
		content = content[:max] + "…"
	}
	return content
}
