package server

import (
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/sector_radar/internal/conf"
	"github.com/iWorld-y/sector_radar/internal/service"
	"github.com/iWorld-y/sector_radar/pkg/ratelimit"
)

// NewHTTPServer 构建 HTTP 服务并挂载路由。
// /analyze 走 鉴权 → 限流 → 业务 的中间件链，/ 和 /health 公开
func NewHTTPServer(c *conf.Server, a *conf.Auth, limiter *ratelimit.Limiter,
	s *service.AnalysisService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
	}

	srv := http.NewServer(opts...)

	keys := make(map[string]struct{}, len(a.ApiKeys))
	for _, k := range a.ApiKeys {
		keys[k] = struct{}{}
	}

	srv.HandleFunc("/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/" {
			service.WriteJSON(w, nethttp.StatusNotFound, &service.ErrorResponse{Error: "not found"})
			return
		}
		s.Root(w, r)
	})
	srv.HandleFunc("/health", s.Health)

	analyze := recoverMiddleware(logger,
		authMiddleware(keys, logger,
			rateLimitMiddleware(limiter, logger,
				nethttp.HandlerFunc(s.AnalyzeSector))))
	srv.Handle("/analyze/{sector}", analyze)

	return srv
}
