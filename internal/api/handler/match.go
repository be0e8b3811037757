package handler

import (
	"context"
	"errors"
	"strings"

	"resume-matcher/internal/processor"
	"resume-matcher/internal/storage"
	"resume-matcher/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// ParseJobRequest POST /jobs/parse 请求体
type ParseJobRequest struct {
	Text string `json:"text"`
}

// ParseJobResponse 解析结果，配置存储时附带岗位ID
type ParseJobResponse struct {
	JobID string                     `json:"job_id,omitempty"`
	Job   types.JobDescriptionRecord `json:"job"`
}

// ParseJob POST /jobs/parse
func (h *Handler) ParseJob(ctx context.Context, c *app.RequestContext) {
	var req ParseJobRequest
	if err := c.BindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeError(c, consts.StatusBadRequest, "需要提供text")
		return
	}

	resp := ParseJobResponse{Job: h.parseJob(ctx, req.Text)}
	if h.repo != nil {
		id, err := h.repo.SaveJobDescription(ctx, req.Text, resp.Job)
		if err != nil {
			h.writeStorageError(c, err, "保存岗位描述失败")
			return
		}
		resp.JobID = id
	}
	c.JSON(consts.StatusOK, resp)
}

// MatchRequest POST /match 请求体
// resume_id 与 resume 二选一，jd_text 与 job 二选一
type MatchRequest struct {
	ResumeID string                      `json:"resume_id"`
	Resume   *types.ResumeRecord         `json:"resume"`
	JDText   string                      `json:"jd_text"`
	Job      *types.JobDescriptionRecord `json:"job"`
}

var (
	errMissingResume = errors.New("需要提供resume_id或resume")
	errMissingJob    = errors.New("需要提供jd_text或job")
)

func (h *Handler) resolveResume(ctx context.Context, id string, inline *types.ResumeRecord) (types.ResumeRecord, error) {
	if inline != nil {
		return *inline, nil
	}
	if id == "" {
		return types.ResumeRecord{}, errMissingResume
	}
	if h.repo == nil {
		return types.ResumeRecord{}, storage.ErrNotFound
	}
	return h.repo.GetResume(ctx, id)
}

func (h *Handler) resolveJob(ctx context.Context, text string, inline *types.JobDescriptionRecord) (types.JobDescriptionRecord, error) {
	if inline != nil {
		return *inline, nil
	}
	if strings.TrimSpace(text) == "" {
		return types.JobDescriptionRecord{}, errMissingJob
	}
	return h.parseJob(ctx, text), nil
}

func (h *Handler) writeResolveError(c *app.RequestContext, err error) {
	if errors.Is(err, errMissingResume) || errors.Is(err, errMissingJob) {
		writeError(c, consts.StatusBadRequest, err.Error())
		return
	}
	h.writeStorageError(c, err, "读取简历失败")
}

// Match POST /match
// 简历来自存储且给出岗位原文时，岗位和匹配报告会一并保存
func (h *Handler) Match(ctx context.Context, c *app.RequestContext) {
	var req MatchRequest
	if err := c.BindJSON(&req); err != nil {
		writeError(c, consts.StatusBadRequest, "请求体格式错误")
		return
	}
	resume, err := h.resolveResume(ctx, req.ResumeID, req.Resume)
	if err != nil {
		h.writeResolveError(c, err)
		return
	}
	jd, err := h.resolveJob(ctx, req.JDText, req.Job)
	if err != nil {
		h.writeResolveError(c, err)
		return
	}

	report := h.proc.Match(ctx, resume, jd)
	if h.repo != nil && req.Resume == nil && req.Job == nil {
		h.persistReports(ctx, req.JDText, jd, report)
	}
	c.JSON(consts.StatusOK, report)
}

// persistReports 保存岗位和报告，失败只记录日志
func (h *Handler) persistReports(ctx context.Context, jdText string, jd types.JobDescriptionRecord, reports ...types.MatchReport) {
	jobID, err := h.repo.SaveJobDescription(ctx, jdText, jd)
	if err != nil {
		h.logger.Warn().Err(err).Msg("保存岗位描述失败")
		return
	}
	for _, r := range reports {
		if err := h.repo.SaveMatchReport(ctx, jobID, r); err != nil {
			h.logger.Warn().Err(err).Str("resume_id", r.ResumeID).Msg("保存匹配报告失败")
		}
	}
}

// MatchBatchRequest POST /match/batch 请求体，resume_ids为空时匹配全部简历
type MatchBatchRequest struct {
	JDText    string   `json:"jd_text"`
	ResumeIDs []string `json:"resume_ids"`
}

// MatchBatch POST /match/batch
func (h *Handler) MatchBatch(ctx context.Context, c *app.RequestContext) {
	if !h.requireRepo(c) {
		return
	}
	var req MatchBatchRequest
	if err := c.BindJSON(&req); err != nil || strings.TrimSpace(req.JDText) == "" {
		writeError(c, consts.StatusBadRequest, "需要提供jd_text")
		return
	}
	jd := h.parseJob(ctx, req.JDText)

	var source processor.ResumeSource = h.repo
	if len(req.ResumeIDs) > 0 {
		records := make(processor.SliceSource, 0, len(req.ResumeIDs))
		for _, id := range req.ResumeIDs {
			r, err := h.repo.GetResume(ctx, id)
			if err != nil {
				h.writeStorageError(c, err, "读取简历失败")
				return
			}
			records = append(records, r)
		}
		source = records
	}

	reports, err := h.proc.MatchBatch(ctx, jd, source)
	if err != nil {
		h.writeStorageError(c, err, "批量匹配失败")
		return
	}
	h.persistReports(ctx, req.JDText, jd, reports...)
	c.JSON(consts.StatusOK, utils.H{"job": jd, "reports": reports})
}

// KeywordsRequest POST /analysis/keywords 请求体
// resume_text 会先经过文本提取
type KeywordsRequest struct {
	ResumeID   string                      `json:"resume_id"`
	Resume     *types.ResumeRecord         `json:"resume"`
	ResumeText string                      `json:"resume_text"`
	JDText     string                      `json:"jd_text"`
	Job        *types.JobDescriptionRecord `json:"job"`
}

// AnalyzeKeywords POST /analysis/keywords
func (h *Handler) AnalyzeKeywords(ctx context.Context, c *app.RequestContext) {
	var req KeywordsRequest
	if err := c.BindJSON(&req); err != nil {
		writeError(c, consts.StatusBadRequest, "请求体格式错误")
		return
	}
	if req.Resume == nil && strings.TrimSpace(req.ResumeText) != "" {
		r := h.proc.ExtractText(req.ResumeText)
		req.Resume = &r
	}
	resume, err := h.resolveResume(ctx, req.ResumeID, req.Resume)
	if err != nil {
		h.writeResolveError(c, err)
		return
	}
	jd, err := h.resolveJob(ctx, req.JDText, req.Job)
	if err != nil {
		h.writeResolveError(c, err)
		return
	}
	c.JSON(consts.StatusOK, h.proc.AnalyzeKeywords(resume, jd))
}
