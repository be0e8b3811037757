// Package processor 对外暴露简历提取、岗位解析和匹配评分的统一入口
package processor

import (
	"context"
	"time"

	"resume-matcher/internal/extractor"
	"resume-matcher/internal/jdparser"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/matcher"
	"resume-matcher/internal/parser"
	"resume-matcher/internal/scoring"
	"resume-matcher/internal/types"

	"github.com/rs/zerolog"
)

// Processor 聚合核心组件，除只读的词表和Embedder外不持有共享可变状态
type Processor struct {
	acquirer  *parser.Acquirer
	extractor *extractor.Extractor
	jdParser  *jdparser.Parser
	matcher   *matcher.Matcher
	engine    *scoring.Engine
	logger    *zerolog.Logger
	now       func() time.Time
}

// New 创建Processor，未指定的组件使用默认实现
// 默认的文本获取器只支持DOCX和TXT，PDF/DOC需要通过 WithAcquirer 注入
func New(opts ...Option) *Processor {
	p := &Processor{logger: logger.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.acquirer == nil {
		p.acquirer = parser.NewAcquirer(parser.WithAcquirerLogger(p.logger))
	}
	if p.extractor == nil {
		p.extractor = extractor.New(extractor.WithLogger(p.logger))
	}
	if p.jdParser == nil {
		p.jdParser = jdparser.New(jdparser.WithLogger(p.logger))
	}
	if p.matcher == nil {
		p.matcher = matcher.New(matcher.WithLogger(p.logger))
	}
	p.engine = scoring.NewEngine(p.matcher, scoring.WithLogger(p.logger))
	return p
}

// Extract 把原始文档转换为结构化简历
// TXT走轻量解析，只填充联系方式和词表技能
func (p *Processor) Extract(ctx context.Context, doc types.RawDocument) (types.ResumeRecord, error) {
	start := p.now()
	kind, err := parser.ParseKind(string(doc.Kind))
	if err != nil {
		p.logger.Warn().Err(err).Str("file_name", doc.FileName).Str("kind", string(doc.Kind)).Msg("不支持的文档类型")
		return types.ResumeRecord{}, err
	}
	doc.Kind = kind

	text, meta, err := p.acquirer.Acquire(ctx, doc)
	if err != nil {
		p.logger.Warn().Err(err).Str("file_name", doc.FileName).Str("kind", string(doc.Kind)).Msg("简历文本获取失败")
		return types.ResumeRecord{}, err
	}

	var record types.ResumeRecord
	if kind == types.KindTXT {
		record = extractor.ParseLightweight(text)
	} else {
		record = p.extractor.Extract(text)
	}

	record.File = types.FileMeta{
		FileName: doc.FileName,
		FileType: kind,
		FileSize: int64(len(doc.Data)),
	}
	now := p.now()
	record.CreatedAt, record.UpdatedAt = now, now

	p.logger.Info().
		Str("file_name", doc.FileName).
		Str("kind", string(doc.Kind)).
		Interface("strategy", meta["strategy"]).
		Int("text_length", len(text)).
		Int("skills", len(record.Skills)).
		Dur("duration", now.Sub(start)).
		Msg("简历提取完成")
	return record, nil
}

// ExtractText 在已有纯文本上运行完整的字段提取
func (p *Processor) ExtractText(text string) types.ResumeRecord {
	record := p.extractor.Extract(parser.CleanText(text))
	now := p.now()
	record.CreatedAt, record.UpdatedAt = now, now
	return record
}

// ParseJobDescription 解析岗位描述，从不失败
func (p *Processor) ParseJobDescription(text string) types.JobDescriptionRecord {
	return p.jdParser.Parse(text)
}

// Match 计算一份简历与岗位的匹配报告
func (p *Processor) Match(ctx context.Context, resume types.ResumeRecord, jd types.JobDescriptionRecord) types.MatchReport {
	return p.engine.Score(ctx, resume, jd)
}

// AnalyzeKeywords 基于关键词集合的快速对比
func (p *Processor) AnalyzeKeywords(resume types.ResumeRecord, jd types.JobDescriptionRecord) types.KeywordAnalysis {
	return scoring.AnalyzeKeywords(resume, jd)
}
