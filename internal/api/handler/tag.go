package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// AddTagsRequest POST /resumes/:id/tags 请求体
type AddTagsRequest struct {
	Tags []string `json:"tags"`
}

// AddTags POST /resumes/:id/tags
func (h *Handler) AddTags(ctx context.Context, c *app.RequestContext) {
	if !h.requireRepo(c) {
		return
	}
	var req AddTagsRequest
	if err := c.BindJSON(&req); err != nil || len(req.Tags) == 0 {
		writeError(c, consts.StatusBadRequest, "需要提供tags")
		return
	}
	record, err := h.repo.AddTags(ctx, c.Param("id"), req.Tags)
	if err != nil {
		h.writeStorageError(c, err, "添加标签失败")
		return
	}
	c.JSON(consts.StatusOK, record)
}

// RemoveTag DELETE /resumes/:id/tags/:tag
func (h *Handler) RemoveTag(ctx context.Context, c *app.RequestContext) {
	if !h.requireRepo(c) {
		return
	}
	record, err := h.repo.RemoveTag(ctx, c.Param("id"), c.Param("tag"))
	if err != nil {
		h.writeStorageError(c, err, "移除标签失败")
		return
	}
	c.JSON(consts.StatusOK, record)
}

// ListTags GET /tags
func (h *Handler) ListTags(ctx context.Context, c *app.RequestContext) {
	if !h.requireRepo(c) {
		return
	}
	tags, err := h.repo.ListTags(ctx)
	if err != nil {
		h.writeStorageError(c, err, "查询标签失败")
		return
	}
	c.JSON(consts.StatusOK, utils.H{"tags": tags})
}
