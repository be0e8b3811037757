package processor

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"resume-matcher/internal/config"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/parser"
	"resume-matcher/internal/types"

	"baliance.com/gooxml/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestProcessor() *Processor {
	return New(WithClock(func() time.Time { return fixedNow }))
}

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	doc := document.New()
	for _, p := range paragraphs {
		doc.AddParagraph().AddRun().AddText(p)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Save(&buf), "生成测试DOCX失败")
	return buf.Bytes()
}

func TestExtractTXTUsesLightweightParser(t *testing.T) {
	p := newTestProcessor()
	data := []byte("John Smith\njohn@example.com\nSKILLS\nLanguages: Go, Python")

	record, err := p.Extract(context.Background(), types.RawDocument{Data: data, Kind: types.KindTXT, FileName: "cv.txt"})
	require.NoError(t, err)

	assert.Equal(t, "John Smith", record.ContactInfo.Name)
	assert.Equal(t, "john@example.com", record.ContactInfo.Email)
	assert.Equal(t, []string{"go", "python"}, record.SkillNames(), "轻量解析只返回词表技能")
	assert.Empty(t, record.Experience)
	assert.Equal(t, types.FileMeta{FileName: "cv.txt", FileType: types.KindTXT, FileSize: int64(len(data))}, record.File)
	assert.Equal(t, fixedNow, record.CreatedAt)
	assert.Equal(t, fixedNow, record.UpdatedAt)
}

func TestExtractNormalisesDeclaredKind(t *testing.T) {
	p := newTestProcessor()
	data := []byte("John Smith\njohn@example.com\nSKILLS\nLanguages: Go, Python")

	for _, declared := range []types.DocumentKind{"TXT", ".txt", " Txt "} {
		record, err := p.Extract(context.Background(), types.RawDocument{Data: data, Kind: declared, FileName: "cv"})
		require.NoError(t, err, "声明类型 %q 应可识别", declared)
		assert.Equal(t, types.KindTXT, record.File.FileType, "FileType应保存规范化后的类型")
		assert.Equal(t, []string{"go", "python"}, record.SkillNames(), "%q 应走轻量解析", declared)
	}
}

func TestExtractDOCXRunsFullPipeline(t *testing.T) {
	p := newTestProcessor()
	data := buildDocx(t,
		"Jane Roe",
		"jane@example.com",
		"SKILLS",
		"Languages: Go, Python",
		"EDUCATION",
		"MIT 2016-2020",
	)

	record, err := p.Extract(context.Background(), types.RawDocument{Data: data, Kind: types.KindDOCX, FileName: "cv.docx"})
	require.NoError(t, err)

	assert.Equal(t, "Jane Roe", record.ContactInfo.Name)
	assert.Equal(t, "jane@example.com", record.ContactInfo.Email)
	assert.Equal(t, []types.SkillEntry{
		{Name: "Go", Category: "languages"},
		{Name: "Python", Category: "languages"},
	}, record.Skills)
	require.Len(t, record.Education, 1)
	assert.Equal(t, "MIT", record.Education[0].Institution)
	assert.Equal(t, types.KindDOCX, record.File.FileType)
}

func TestExtractUnsupportedKind(t *testing.T) {
	_, err := newTestProcessor().Extract(context.Background(), types.RawDocument{Data: []byte("x"), Kind: "odt"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, parser.ErrUnsupportedFormat), "未知类型应透传UnsupportedFormat")
}

func TestExtractPDFWithoutExtractorFails(t *testing.T) {
	_, err := newTestProcessor().Extract(context.Background(), types.RawDocument{Data: []byte("%PDF-1.4"), Kind: types.KindPDF})
	require.Error(t, err, "默认获取器未配置PDF提取器")
}

func TestExtractText(t *testing.T) {
	record := newTestProcessor().ExtractText("Jane Roe\r\nSKILLS\r\nCloud: Docker, AWS")
	assert.Equal(t, "Jane Roe", record.ContactInfo.Name)
	assert.Equal(t, []string{"Docker", "AWS"}, record.SkillNames())
	assert.Equal(t, fixedNow, record.CreatedAt)
}

func TestParseJDAndMatch(t *testing.T) {
	p := newTestProcessor()
	jd := p.ParseJobDescription("Senior Backend Developer\nRequired:\n- 5+ years of Python\n- Docker\n\nPreferred:\n- AWS")
	require.NotEmpty(t, jd.RequiredSkills)

	resume := types.ResumeRecord{ID: "r-1", Skills: types.WrapSkillNames([]string{"Python", "Docker", "AWS"})}
	report := p.Match(context.Background(), resume, jd)

	assert.Equal(t, "r-1", report.ResumeID)
	assert.Equal(t, 100.0, report.MatchPercentage)
	assert.Empty(t, report.MissingSkills)
	assert.Equal(t, types.TierStrongMatch, report.Recommendation)
}

func TestAnalyzeKeywords(t *testing.T) {
	p := newTestProcessor()
	jd := p.ParseJobDescription("Backend Engineer\nRequired:\n- Python\n- Docker")
	resume := types.ResumeRecord{Skills: types.WrapSkillNames([]string{"python"})}

	analysis := p.AnalyzeKeywords(resume, jd)
	assert.Greater(t, analysis.MatchPercentage, 0.0)
	assert.Less(t, analysis.MatchPercentage, 1.0)
	assert.NotEmpty(t, analysis.MissingSkills)
}

func TestMatchBatchSortsDescending(t *testing.T) {
	p := newTestProcessor()
	jd := types.JobDescriptionRecord{RequiredSkills: []types.RequiredSkill{
		{Name: "python", Importance: types.ImportanceRequired, Weight: 1},
		{Name: "go", Importance: types.ImportanceRequired, Weight: 1},
	}}
	source := SliceSource{
		{ID: "none", Skills: types.WrapSkillNames([]string{"cobol"})},
		{ID: "half", Skills: types.WrapSkillNames([]string{"python"})},
		{ID: "full", Skills: types.WrapSkillNames([]string{"python", "go"})},
		{ID: "half-2", Skills: types.WrapSkillNames([]string{"go"})},
	}

	reports, err := p.MatchBatch(context.Background(), jd, source)
	require.NoError(t, err)
	require.Len(t, reports, 4)

	ids := make([]string, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ResumeID)
	}
	assert.Equal(t, []string{"full", "half", "half-2", "none"}, ids, "同分保持输入顺序")
}

func TestMatchBatchEmptySource(t *testing.T) {
	reports, err := newTestProcessor().MatchBatch(context.Background(), types.JobDescriptionRecord{}, SliceSource(nil))
	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.NotNil(t, reports)
}

func TestMatchBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestProcessor().MatchBatch(ctx, types.JobDescriptionRecord{}, SliceSource{{ID: "a"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewFromConfigWithoutEmbedding(t *testing.T) {
	cfg := &config.Config{
		PDF:     config.PDFConfig{Primary: "eino", MinTextLength: 100},
		Matcher: config.MatcherConfig{SimilarityThreshold: 0.7},
	}
	p, err := NewFromConfig(context.Background(), cfg, logger.Named)
	require.NoError(t, err)
	assert.False(t, p.matcher.HasEmbedder(), "未启用向量化时不应配置Embedder")
}
