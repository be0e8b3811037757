package types

import "time"

// DocumentKind 简历原始文档的声明类型
type DocumentKind string

const (
	KindPDF  DocumentKind = "pdf"
	KindDOC  DocumentKind = "doc"
	KindDOCX DocumentKind = "docx"
	KindTXT  DocumentKind = "txt"
)

// RawDocument 一次性消费的原始文档
type RawDocument struct {
	Data     []byte       // 文档字节
	Kind     DocumentKind // 声明的文件类型
	FileName string       // 原始文件名，可为空
}

// ContactInfo 联系方式，未找到的字段保持为空字符串
type ContactInfo struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`
}

// IsEmpty 所有字段均未找到时返回true
func (c ContactInfo) IsEmpty() bool {
	return c == ContactInfo{}
}

// SkillEntry 技能条目
type SkillEntry struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// EducationEntry 教育经历条目
type EducationEntry struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	GPA          string `json:"gpa,omitempty"`
}

// ExperienceEntry 工作经历条目
type ExperienceEntry struct {
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Current     bool     `json:"current"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"skills"`
}

// ProjectEntry 项目经历条目
type ProjectEntry struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	URL          string   `json:"url,omitempty"`
}

// LanguageEntry 语言及熟练程度
type LanguageEntry struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency,omitempty"`
}

// Tag 简历标签
type Tag struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// FileMeta 原始文件信息
type FileMeta struct {
	FileName string       `json:"file_name,omitempty"`
	FileType DocumentKind `json:"file_type,omitempty"`
	FileSize int64        `json:"file_size,omitempty"`
}

// ResumeRecord 一份简历的完整结构化结果，构建后不再修改
type ResumeRecord struct {
	ID             string            `json:"id,omitempty"`
	ContactInfo    ContactInfo       `json:"contact_info"`
	Summary        string            `json:"summary,omitempty"`
	Skills         []SkillEntry      `json:"skills"`
	Education      []EducationEntry  `json:"education"`
	Experience     []ExperienceEntry `json:"experience"`
	Projects       []ProjectEntry    `json:"projects"`
	Certifications []string          `json:"certifications"`
	Languages      []LanguageEntry   `json:"languages"`
	RawText        string            `json:"raw_text,omitempty"`
	File           FileMeta          `json:"file"`
	Tags           []Tag             `json:"tags"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// SkillNames 按原顺序返回技能名称
func (r *ResumeRecord) SkillNames() []string {
	names := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		names = append(names, s.Name)
	}
	return names
}

// WrapSkillNames 把只有名称的技能包装成SkillEntry
func WrapSkillNames(names []string) []SkillEntry {
	entries := make([]SkillEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, SkillEntry{Name: n})
	}
	return entries
}
