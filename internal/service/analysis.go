package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/gorilla/mux"

	"github.com/iWorld-y/sector_radar/internal/conf"
	"github.com/iWorld-y/sector_radar/internal/usecase"
	"github.com/iWorld-y/sector_radar/pkg/validator"
)

const (
	// Name 服务名称
	Name = "sector_radar"
	// Version 服务版本号
	Version = "1.0.0"
	// Description 服务描述
	Description = "Market analysis and trade opportunity insights for Indian sectors"
)

// AnalysisResponse 分析接口成功响应
type AnalysisResponse struct {
	Success     bool   `json:"success"`
	Sector      string `json:"sector"`
	Report      string `json:"report"`
	GeneratedAt string `json:"generated_at"`
	Message     string `json:"message,omitempty"`
}

// ErrorResponse 统一错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// AnalysisService HTTP 服务层，负责参数校验和状态码映射
type AnalysisService struct {
	uc            *usecase.AnalysisUseCase
	rateLimitDesc string
	llmConfigured bool
	log           *log.Helper
}

// NewAnalysisService 创建服务实例
func NewAnalysisService(uc *usecase.AnalysisUseCase, lc *conf.Limits, ec *conf.Engine, logger log.Logger) *AnalysisService {
	perHour := int32(10)
	if lc != nil && lc.RateLimitPerHour > 0 {
		perHour = lc.RateLimitPerHour
	}
	return &AnalysisService{
		uc:            uc,
		rateLimitDesc: formatRateLimit(perHour),
		llmConfigured: ec != nil && ec.Llm != nil && ec.Llm.ApiKey != "",
		log:           log.NewHelper(logger),
	}
}

// Root GET / 服务元信息，无需鉴权
func (s *AnalysisService) Root(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"name":        Name,
		"version":     Version,
		"description": Description,
		"endpoints": map[string]string{
			"analyze": "/analyze/{sector}",
			"health":  "/health",
		},
		"authentication": "X-API-Key header required for /analyze",
		"rate_limit":     s.rateLimitDesc,
		"sectors":        "any sector name, e.g. pharmaceuticals, technology, real-estate",
	})
}

// Health GET /health 存活探针，无需鉴权
func (s *AnalysisService) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"llm_configured": s.llmConfigured,
	})
}

// AnalyzeSector GET /analyze/{sector} 核心分析接口。
// 鉴权与限流由 server 层中间件完成，这里只做校验和流水线调用
func (s *AnalysisService) AnalyzeSector(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["sector"]

	sector, err := validator.Sanitize(raw)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	s.log.Infof("analyzing sector: %s", sector)

	analysis, err := s.uc.Analyze(r.Context(), sector)
	if err != nil {
		// 内部细节不外露
		s.log.Errorf("analysis pipeline failed for %s: %v", sector, err)
		WriteJSON(w, http.StatusInternalServerError, &ErrorResponse{Error: "internal server error"})
		return
	}

	message := "Analysis completed successfully"
	if analysis.Cached {
		message = "Analysis retrieved from cache"
	}

	WriteJSON(w, http.StatusOK, &AnalysisResponse{
		Success:     true,
		Sector:      analysis.Sector,
		Report:      analysis.Report,
		GeneratedAt: analysis.GeneratedAt.Format(time.RFC3339),
		Message:     message,
	})
}

// WriteJSON 写出 JSON 响应
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func formatRateLimit(perHour int32) string {
	return fmt.Sprintf("%d requests per hour per API key", perHour)
}
