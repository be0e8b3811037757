package router

import (
	"resume-matcher/internal/api/handler"
	"resume-matcher/internal/api/middleware"

	"github.com/cloudwego/hertz/pkg/route"
	"github.com/rs/zerolog"
)

// Options 路由选项
type Options struct {
	APIKey string          // 为空时不启用鉴权
	Logger *zerolog.Logger // 为nil时不记录访问日志
}

// RegisterRoutes 注册 /api/v1 下的全部路由
func RegisterRoutes(r *route.Engine, h *handler.Handler, opts Options) {
	r.Use(middleware.RequestID())
	if opts.Logger != nil {
		r.Use(middleware.AccessLog(opts.Logger))
	}

	api := r.Group("/api/v1")
	// 健康检查先于鉴权注册，不需要API Key
	api.GET("/health", h.Health)
	if opts.APIKey != "" {
		api.Use(middleware.APIKeyAuth(opts.APIKey))
	}

	resumes := api.Group("/resumes")
	resumes.POST("/extract", h.ExtractResume)
	resumes.POST("/upload", h.UploadResume)
	resumes.POST("", h.CreateResume)
	resumes.GET("", h.ListResumes)
	resumes.GET("/search", h.SearchResumes)
	resumes.GET("/:id", h.GetResume)
	resumes.DELETE("/:id", h.DeleteResume)
	resumes.POST("/:id/tags", h.AddTags)
	resumes.DELETE("/:id/tags/:tag", h.RemoveTag)

	api.GET("/tags", h.ListTags)
	api.POST("/jobs/parse", h.ParseJob)
	api.POST("/match", h.Match)
	api.POST("/match/batch", h.MatchBatch)
	api.POST("/analysis/keywords", h.AnalyzeKeywords)
}
