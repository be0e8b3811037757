package models

import (
	"encoding/json"
	"strings"
	"time"

	"resume-matcher/internal/types"

	"gorm.io/datatypes"
)

// 简历处理状态
const (
	StatusPendingExtraction = "PENDING_EXTRACTION"
	StatusExtracted         = "EXTRACTED"
	StatusExtractionFailed  = "EXTRACTION_FAILED"
)

// Resume 简历主表，结构化字段整体存为JSON，便于检索的字段单独成列
type Resume struct {
	ResumeID         string         `gorm:"type:char(36);primaryKey"`
	CandidateName    string         `gorm:"type:varchar(255)"`
	Email            string         `gorm:"type:varchar(255);index:idx_resumes_email"`
	Phone            string         `gorm:"type:varchar(50)"`
	Location         string         `gorm:"type:varchar(255)"`
	ProfileJSON      datatypes.JSON `gorm:"type:json"`
	RawText          string         `gorm:"type:longtext"`
	RawTextMD5       string         `gorm:"type:char(32);index:idx_resumes_raw_text_md5"`
	OriginalFilename string         `gorm:"type:varchar(255)"`
	FileType         string         `gorm:"type:varchar(10)"`
	FileSize         int64          `gorm:"default:0"`
	OriginalPathOSS  string         `gorm:"type:varchar(1024)"`
	ParsedTextPath   string         `gorm:"type:varchar(1024)"`
	ProcessingStatus string         `gorm:"type:varchar(50);default:'EXTRACTED';index:idx_resumes_processing_status"`
	ExtractorVersion string         `gorm:"type:varchar(50)"`
	CreatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Skills  []ResumeSkill  `gorm:"foreignKey:ResumeID;references:ResumeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Degrees []ResumeDegree `gorm:"foreignKey:ResumeID;references:ResumeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tags    []Tag          `gorm:"many2many:resume_tags;foreignKey:ResumeID;joinForeignKey:ResumeID;references:ID;joinReferences:TagID"`
}

func (Resume) TableName() string {
	return "resumes"
}

// ResumeSkill 技能检索表
type ResumeSkill struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	ResumeID  string `gorm:"type:char(36);not null;index:idx_rsk_resume_id"`
	Name      string `gorm:"type:varchar(255);not null"`
	NameLower string `gorm:"type:varchar(255);not null;index:idx_rsk_name_lower"`
	Category  string `gorm:"type:varchar(100)"`
}

func (ResumeSkill) TableName() string {
	return "resume_skills"
}

// ResumeDegree 学历检索表
type ResumeDegree struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	ResumeID     string `gorm:"type:char(36);not null;index:idx_rdg_resume_id"`
	Institution  string `gorm:"type:varchar(255)"`
	Degree       string `gorm:"type:varchar(255)"`
	DegreeLower  string `gorm:"type:varchar(255);index:idx_rdg_degree_lower"`
	FieldOfStudy string `gorm:"type:varchar(255)"`
}

func (ResumeDegree) TableName() string {
	return "resume_degrees"
}

// Tag 标签表，名称唯一
type Tag struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_tags_name_unique"`
	CreatedAt time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
}

func (Tag) TableName() string {
	return "tags"
}

// JobDescription 已解析的岗位描述
type JobDescription struct {
	JobID           string         `gorm:"type:char(36);primaryKey"`
	JobTitle        string         `gorm:"type:varchar(255);not null"`
	DescriptionText string         `gorm:"type:text;not null"`
	TextSHA256      string         `gorm:"type:char(64);uniqueIndex:idx_jd_text_sha256_unique"`
	StructuredJSON  datatypes.JSON `gorm:"type:json"`
	CreatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
}

func (JobDescription) TableName() string {
	return "job_descriptions"
}

// MatchResult 简历-岗位匹配报告
type MatchResult struct {
	MatchID         uint64         `gorm:"primaryKey;autoIncrement"`
	ResumeID        string         `gorm:"type:char(36);index:idx_mr_resume_id"`
	JobID           string         `gorm:"type:char(36);index:idx_mr_job_id_percentage,priority:1"`
	MatchPercentage float64        `gorm:"type:double;index:idx_mr_job_id_percentage,priority:2"`
	Recommendation  string         `gorm:"type:varchar(50)"`
	ReportJSON      datatypes.JSON `gorm:"type:json"`
	CreatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
}

func (MatchResult) TableName() string {
	return "match_results"
}

// ToJSON 序列化任意值为 datatypes.JSON
func ToJSON(v interface{}) (datatypes.JSON, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// NewResume 把结构化简历转换为数据库模型
// 标签不在这里处理，由仓库按名称关联
func NewResume(r types.ResumeRecord) (*Resume, error) {
	profile := r
	profile.ID = ""
	profile.RawText = ""
	profile.Tags = nil
	profileJSON, err := ToJSON(profile)
	if err != nil {
		return nil, err
	}

	m := &Resume{
		ResumeID:         r.ID,
		CandidateName:    r.ContactInfo.Name,
		Email:            r.ContactInfo.Email,
		Phone:            r.ContactInfo.Phone,
		Location:         r.ContactInfo.Location,
		ProfileJSON:      profileJSON,
		RawText:          r.RawText,
		OriginalFilename: r.File.FileName,
		FileType:         string(r.File.FileType),
		FileSize:         r.File.FileSize,
		ProcessingStatus: StatusExtracted,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	for _, s := range r.Skills {
		m.Skills = append(m.Skills, ResumeSkill{
			ResumeID:  r.ID,
			Name:      s.Name,
			NameLower: strings.ToLower(s.Name),
			Category:  s.Category,
		})
	}
	for _, e := range r.Education {
		m.Degrees = append(m.Degrees, ResumeDegree{
			ResumeID:     r.ID,
			Institution:  e.Institution,
			Degree:       e.Degree,
			DegreeLower:  strings.ToLower(e.Degree),
			FieldOfStudy: e.FieldOfStudy,
		})
	}
	return m, nil
}

// ToRecord 还原为结构化简历
func (m *Resume) ToRecord() (types.ResumeRecord, error) {
	var r types.ResumeRecord
	if len(m.ProfileJSON) > 0 {
		if err := json.Unmarshal(m.ProfileJSON, &r); err != nil {
			return types.ResumeRecord{}, err
		}
	}
	r.ID = m.ResumeID
	r.RawText = m.RawText
	r.CreatedAt = m.CreatedAt
	r.UpdatedAt = m.UpdatedAt
	r.Tags = make([]types.Tag, 0, len(m.Tags))
	for _, t := range m.Tags {
		r.Tags = append(r.Tags, types.Tag{ID: t.ID, Name: t.Name})
	}
	return r, nil
}
