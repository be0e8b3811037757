// Package extractor 从章节映射中提取联系方式、技能、教育、经历、项目等结构化字段
// 所有提取函数在找不到目标章节时返回空结果，从不返回错误
package extractor

import (
	"resume-matcher/internal/logger"
	"resume-matcher/internal/segmenter"
	"resume-matcher/internal/types"

	"github.com/rs/zerolog"
)

// Extractor 聚合各字段提取器
type Extractor struct {
	contact *ContactExtractor
	logger  *zerolog.Logger
}

// Option Extractor选项
type Option func(*Extractor)

// WithLocationFinder 替换地点识别实现
func WithLocationFinder(f LocationFinder) Option {
	return func(e *Extractor) {
		e.contact = NewContactExtractor(f)
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *zerolog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New 创建Extractor
func New(opts ...Option) *Extractor {
	e := &Extractor{
		contact: NewContactExtractor(nil),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract 切分章节后提取全部字段，RawText 保存输入文本
func (e *Extractor) Extract(text string) types.ResumeRecord {
	sections := segmenter.Split(text)
	return e.ExtractSections(sections, text)
}

// ExtractSections 在已切分的章节上提取全部字段
func (e *Extractor) ExtractSections(sections *segmenter.SectionMap, text string) types.ResumeRecord {
	record := types.ResumeRecord{
		ContactInfo:    e.contact.Extract(sections, text),
		Summary:        ExtractSummary(sections),
		Skills:         ExtractSkills(sections),
		Education:      ExtractEducation(sections),
		Experience:     ExtractExperience(sections),
		Projects:       ExtractProjects(sections),
		Certifications: ExtractCertifications(sections),
		Languages:      ExtractLanguages(sections),
		RawText:        text,
		Tags:           []types.Tag{},
	}

	e.logger.Debug().
		Strs("sections", sections.Keys()).
		Int("skills", len(record.Skills)).
		Int("education", len(record.Education)).
		Int("experience", len(record.Experience)).
		Int("projects", len(record.Projects)).
		Msg("字段提取完成")
	return record
}
