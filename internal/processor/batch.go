package processor

import (
	"context"
	"fmt"
	"sort"

	"resume-matcher/internal/types"
)

// ResumeSource 可遍历的已持久化简历集合
type ResumeSource interface {
	EachResume(ctx context.Context, fn func(types.ResumeRecord) error) error
}

// SliceSource 内存中的简历集合
type SliceSource []types.ResumeRecord

// EachResume 实现 ResumeSource
func (s SliceSource) EachResume(ctx context.Context, fn func(types.ResumeRecord) error) error {
	for _, r := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

// MatchBatch 对集合中的每份简历计算匹配报告，按匹配百分比降序排列，百分比相同保持原顺序
func (p *Processor) MatchBatch(ctx context.Context, jd types.JobDescriptionRecord, source ResumeSource) ([]types.MatchReport, error) {
	reports := []types.MatchReport{}
	err := source.EachResume(ctx, func(r types.ResumeRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		reports = append(reports, p.engine.Score(ctx, r, jd))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("遍历简历失败: %w", err)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].MatchPercentage > reports[j].MatchPercentage
	})
	p.logger.Info().Int("resumes", len(reports)).Str("title", jd.Title).Msg("批量匹配完成")
	return reports, nil
}
