package conf

import "fmt"

// Bootstrap 服务启动配置
type Bootstrap struct {
	Server *Server `json:"server"`
	Auth   *Auth   `json:"auth"`
	Limits *Limits `json:"limits"`
	Engine *Engine `json:"engine"`
}

// Server HTTP 服务配置
type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

// Auth API Key 鉴权配置
type Auth struct {
	ApiKeys []string `json:"api_keys"`
}

// Limits 限流与缓存配置
type Limits struct {
	RateLimitPerHour int32 `json:"rate_limit_per_hour"`
	CacheTtlSeconds  int32 `json:"cache_ttl_seconds"`
}

// Engine 分析流水线配置
type Engine struct {
	Llm         *LLM         `json:"llm"`
	Search      *Search      `json:"search"`
	Concurrency *Concurrency `json:"concurrency"`
	Log         *Log         `json:"log"`
}

type LLM struct {
	BaseUrl string `json:"base_url"`
	ApiKey  string `json:"api_key"`
	Model   string `json:"model"`
}

type Search struct {
	Provider string   `json:"provider"`
	Tavily   *Tavily  `json:"tavily"`
	Searxng  *SearXNG `json:"searxng"`
}

type Tavily struct {
	ApiKey string `json:"api_key"`
}

type SearXNG struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// Validate 启动时校验配置，缺失关键字段直接拒绝启动
func (b *Bootstrap) Validate() error {
	if b.Auth == nil || len(b.Auth.ApiKeys) == 0 {
		return fmt.Errorf("config: auth.api_keys must not be empty")
	}
	for i, k := range b.Auth.ApiKeys {
		if k == "" {
			return fmt.Errorf("config: auth.api_keys[%d] is empty", i)
		}
	}
	if b.Limits != nil {
		if b.Limits.RateLimitPerHour < 0 {
			return fmt.Errorf("config: limits.rate_limit_per_hour must not be negative")
		}
		if b.Limits.CacheTtlSeconds < 0 {
			return fmt.Errorf("config: limits.cache_ttl_seconds must not be negative")
		}
	}
	if b.Engine == nil {
		return fmt.Errorf("config: engine section is required")
	}
	return nil
}
