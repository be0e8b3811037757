package handler

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"resume-matcher/internal/parser"
	"resume-matcher/internal/storage"
	"resume-matcher/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// readUpload 读取multipart中的file字段
func (h *Handler) readUpload(c *app.RequestContext) (string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeError(c, consts.StatusBadRequest, "文件未找到")
		return "", nil, false
	}
	if fileHeader.Size > h.maxUploadBytes {
		writeError(c, consts.StatusRequestEntityTooLarge, "文件超过大小限制")
		return "", nil, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, consts.StatusInternalServerError, "打开文件失败")
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		writeError(c, consts.StatusInternalServerError, "读取文件失败")
		return "", nil, false
	}
	if int64(len(data)) > h.maxUploadBytes {
		writeError(c, consts.StatusRequestEntityTooLarge, "文件超过大小限制")
		return "", nil, false
	}
	return fileHeader.Filename, data, true
}

// ExtractResume POST /resumes/extract 同步提取
// 可选表单字段 kind 覆盖按扩展名推断的类型
func (h *Handler) ExtractResume(ctx context.Context, c *app.RequestContext) {
	name, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	var (
		kind types.DocumentKind
		err  error
	)
	if declared := string(c.FormValue("kind")); declared != "" {
		kind, err = parser.ParseKind(declared)
	} else {
		kind, err = parser.KindFromFileName(name)
	}
	if err != nil {
		writeError(c, consts.StatusUnprocessableEntity, err.Error())
		return
	}

	record, err := h.proc.Extract(ctx, types.RawDocument{Data: data, Kind: kind, FileName: name})
	if err != nil {
		if errors.Is(err, parser.ErrUnsupportedFormat) || errors.Is(err, parser.ErrExtractionFailure) {
			writeError(c, consts.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("filename", name).Msg("简历提取失败")
		writeError(c, consts.StatusInternalServerError, "简历提取失败")
		return
	}
	c.JSON(consts.StatusOK, record)
}

// UploadResume POST /resumes/upload 异步提取
func (h *Handler) UploadResume(ctx context.Context, c *app.RequestContext) {
	if h.uploader == nil {
		writeError(c, consts.StatusServiceUnavailable, "未配置异步上传")
		return
	}
	name, data, ok := h.readUpload(c)
	if !ok {
		return
	}
	res, err := h.uploader.Upload(ctx, name, data)
	if err != nil {
		if errors.Is(err, parser.ErrUnsupportedFormat) {
			writeError(c, consts.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("filename", name).Msg("提交简历失败")
		writeError(c, consts.StatusInternalServerError, "提交简历失败")
		return
	}
	c.JSON(consts.StatusAccepted, res)
}

// CreateResumeRequest POST /resumes 请求体，提供text时先做文本提取
type CreateResumeRequest struct {
	Text   string              `json:"text"`
	Resume *types.ResumeRecord `json:"resume"`
	Tags   []string            `json:"tags"`
}

// CreateResume POST /resumes
func (h *Handler) CreateResume(ctx context.Context, c *app.RequestContext) {
	if !h.requireRepo(c) {
		return
	}
	var req CreateResumeRequest
	if err := c.BindJSON(&req); err != nil {
		writeError(c, consts.StatusBadRequest, "请求体格式错误")
		return
	}

	var record types.ResumeRecord
	switch {
	case req.Resume != nil:
		record = *req.Resume
	case strings.TrimSpace(req.Text) != "":
		record = h.proc.ExtractText(req.Text)
	default:
		writeError(c, consts.StatusBadRequest, "需要提供resume或text")
		return
	}
	record.ID = ""

	if err := h.repo.SaveResume(ctx, &record); err != nil {
		h.writeStorageError(c, err, "保存简历失败")
		return
	}
	if len(req.Tags) > 0 {
		tagged, err := h.repo.AddTags(ctx, record.ID, req.Tags)
		if err != nil {
			h.writeStorageError(c, err, "添加标签失败")
			return
		}
		record = tagged
	}
	c.JSON(consts.StatusCreated, record)
}

// ListResumesResponse 分页结果
type ListResumesResponse struct {
	Total  int64                `json:"total"`
	Offset int                  `json:"offset"`
	Limit  int                  `json:"limit"`
	Items  []types.ResumeRecord `json:"items"`
}

func queryInt(c *app.RequestContext, key string, def, max int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

// ListResumes GET /resumes?offset=&limit=
func (h *Handler) ListResumes(ctx context.Context, c *app.RequestContext) {
	if !h.requireRepo(c) {
		return
	}
	offset := queryInt(c, "offset", 0, 0)
	limit := queryInt(c, "limit", 20, 100)
	if limit == 0 {
		limit = 20
	}

	items, total, err := h.repo.ListResumes(ctx, offset, limit)
	if err != nil {
		h.writeStorageError(c, err, "查询简历失败")
		return
	}
	c.JSON(consts.StatusOK, ListResumesResponse{Total: total, Offset: offset, Limit: limit, Items: items})
}

// GetResume GET /resumes/:id
func (h *Handler) GetResume(ctx context.Context, c *app.RequestContext) {
	if !h.requireRepo(c) {
		return
	}
	record, err := h.repo.GetResume(ctx, c.Param("id"))
	if err != nil {
		h.writeStorageError(c, err, "查询简历失败")
		return
	}
	c.JSON(consts.StatusOK, record)
}

// DeleteResume DELETE /resumes/:id
func (h *Handler) DeleteResume(ctx context.Context, c *app.RequestContext) {
	if !h.requireRepo(c) {
		return
	}
	if err := h.repo.DeleteResume(ctx, c.Param("id")); err != nil {
		h.writeStorageError(c, err, "删除简历失败")
		return
	}
	c.Status(consts.StatusNoContent)
}

// SearchResumes GET /resumes/search?skill=&education=&limit=
func (h *Handler) SearchResumes(ctx context.Context, c *app.RequestContext) {
	if !h.requireRepo(c) {
		return
	}
	q := storage.ResumeQuery{
		Skill:     c.Query("skill"),
		Education: c.Query("education"),
		Limit:     queryInt(c, "limit", 0, 500),
	}
	items, err := h.repo.SearchResumes(ctx, q)
	if err != nil {
		h.writeStorageError(c, err, "检索简历失败")
		return
	}
	c.JSON(consts.StatusOK, utils.H{"items": items, "count": len(items)})
}
