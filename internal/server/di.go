package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/sector_radar/internal/service"
)

// ProviderSet 是 HTTP 服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Pipeline providers
	NewSearcher,
	NewChatModel,
	NewLLMLimiter,
	NewCollector,
	NewAnalyzer,
	NewReportCache,
	NewRateLimiter,
	NewAnalysisUseCase,

	// Service providers
	service.NewAnalysisService,
)
