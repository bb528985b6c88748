package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/sector_radar/pkg/logger"
	"github.com/iWorld-y/sector_radar/pkg/model"
	"github.com/iWorld-y/sector_radar/pkg/search"
)

const (
	// maxSnippets 单次分析使用的摘要条数上限
	maxSnippets = 8
	// maxSnippetLen 单条摘要长度上限，避免 prompt 过长
	maxSnippetLen = 2000
	// minContentLen 摘要太短时尝试抓取正文补充
	minContentLen = 200

	searchTimeout = 30 * time.Second
	fetchTimeout  = 10 * time.Second
)

// Collector 行情数据收集器
type Collector struct {
	searcher search.Searcher
}

// New 创建收集器实例
func New(searcher search.Searcher) *Collector {
	return &Collector{searcher: searcher}
}

// Collect 为指定行业收集搜索摘要。
// 外部搜索失败不向上抛错，而是返回兜底数据并置 Degraded 标记；
// 每次请求只尝试一次搜索，不做重试。
func (c *Collector) Collect(ctx context.Context, sector string) *model.MarketData {
	query := buildQuery(sector)
	data := &model.MarketData{
		Sector:      sector,
		Query:       query,
		CollectedAt: time.Now().UTC(),
	}

	if c.searcher == nil {
		logger.Log.Warnf("搜索客户端未配置，使用兜底数据 [%s]", sector)
		data.Snippets = fallbackSnippets(sector)
		data.Degraded = true
		return data
	}

	sctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	resp, err := c.searcher.Search(sctx, &search.Request{
		Query:      query,
		Topic:      "general",
		MaxResults: maxSnippets,
	})
	if err != nil {
		logger.Log.Errorf("搜索行业失败 [%s]: %v", sector, err)
		data.Snippets = fallbackSnippets(sector)
		data.Degraded = true
		return data
	}

	for _, item := range resp.Results {
		content := item.Content
		// 摘要太短时抓取正文补充
		if len(content) < minContentLen {
			if fetched, err := fetchAndCleanContent(item.URL); err == nil && len(fetched) > len(content) {
				content = fetched
			}
		}
		if len(content) > maxSnippetLen {
			content = content[:maxSnippetLen]
		}
		if content == "" && item.Title == "" {
			continue
		}
		data.Snippets = append(data.Snippets, model.Snippet{
			Title:   item.Title,
			URL:     item.URL,
			Content: content,
		})
		if len(data.Snippets) >= maxSnippets {
			break
		}
	}

	if len(data.Snippets) == 0 {
		logger.Log.Warnf("行业 [%s] 未找到有效搜索结果，使用兜底数据", sector)
		data.Snippets = fallbackSnippets(sector)
		data.Degraded = true
		return data
	}

	logger.Log.Infof("行业 [%s] 收集到 %d 条摘要", sector, len(data.Snippets))
	return data
}

// buildQuery 拼装搜索查询
func buildQuery(sector string) string {
	return fmt.Sprintf("%s sector India market analysis trends opportunities investment trade export import", sector)
}

// fetchAndCleanContent 抓取并提取网页正文
func fetchAndCleanContent(url string) (string, error) {
	article, err := readability.FromURL(url, fetchTimeout)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

// fallbackSnippets 外部搜索不可用时的通用兜底数据
func fallbackSnippets(sector string) []model.Snippet {
	lines := []string{
		fmt.Sprintf("The %s sector in India has shown significant growth potential.", sector),
		fmt.Sprintf("Recent market trends indicate increasing investment in %s.", sector),
		fmt.Sprintf("Government initiatives are supporting %s development.", sector),
		fmt.Sprintf("Export opportunities exist for %s products and services.", sector),
		fmt.Sprintf("Digital transformation is reshaping the %s industry.", sector),
	}

	snippets := make([]model.Snippet, 0, len(lines))
	for _, line := range lines {
		snippets = append(snippets, model.Snippet{Content: line})
	}
	return snippets
}
