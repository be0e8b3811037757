package storage

import "time"

// ResumeUploadMessage 异步提取任务，原始文件已在MinIO中
type ResumeUploadMessage struct {
	ResumeID         string    `json:"resume_id"`
	OriginalFilename string    `json:"original_filename"`
	FileType         string    `json:"file_type"`
	OriginalPathOSS  string    `json:"original_path_oss"`
	RawFileMD5       string    `json:"raw_file_md5,omitempty"` // 失败时用于回滚去重记录
	SubmittedAt      time.Time `json:"submitted_at"`
}

// ResumeExtractedEvent 简历提取完成事件
type ResumeExtractedEvent struct {
	ResumeID      string    `json:"resume_id"`
	CandidateName string    `json:"candidate_name,omitempty"`
	SkillCount    int       `json:"skill_count"`
	ExtractedAt   time.Time `json:"extracted_at"`
}

// MatchCompletedEvent 匹配完成事件
type MatchCompletedEvent struct {
	ResumeID        string    `json:"resume_id"`
	JobID           string    `json:"job_id"`
	MatchPercentage float64   `json:"match_percentage"`
	Recommendation  string    `json:"recommendation"`
	CompletedAt     time.Time `json:"completed_at"`
}
