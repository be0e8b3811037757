package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-matcher/internal/types"

	_ "modernc.org/sqlite"
)

// LocalStore 基于SQLite的本地持久化，供命令行和测试使用
type LocalStore struct {
	db *sql.DB
}

const localSchema = `
CREATE TABLE IF NOT EXISTS resumes (
	id           TEXT PRIMARY KEY,
	profile_json TEXT NOT NULL,
	raw_text     TEXT,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS resume_skills (
	resume_id  TEXT NOT NULL,
	name_lower TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rsk_resume_id ON resume_skills(resume_id);
CREATE TABLE IF NOT EXISTS resume_degrees (
	resume_id    TEXT NOT NULL,
	degree_lower TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rdg_resume_id ON resume_degrees(resume_id);
CREATE TABLE IF NOT EXISTS tags (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS resume_tags (
	resume_id TEXT NOT NULL,
	tag_id    INTEGER NOT NULL,
	PRIMARY KEY (resume_id, tag_id)
);
CREATE TABLE IF NOT EXISTS job_descriptions (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	text_sha256 TEXT NOT NULL UNIQUE,
	jd_json     TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS match_results (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	resume_id        TEXT NOT NULL,
	job_id           TEXT NOT NULL,
	match_percentage REAL NOT NULL,
	recommendation   TEXT NOT NULL,
	report_json      TEXT NOT NULL,
	created_at       TEXT NOT NULL
);
`

// OpenLocalStore 打开或创建SQLite库，path为 ":memory:" 时使用内存库
func OpenLocalStore(path string) (*LocalStore, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("localstore: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("localstore: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite单写者，内存库也只能共享一个连接
	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("localstore: init schema: %w", err)
	}
	return &LocalStore{db: db}, nil
}

// Close 关闭数据库
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// 定长格式保证按字符串排序即按时间排序
const localTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(localTimeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(localTimeLayout, s)
	return t
}

func (s *LocalStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SaveResume 实现 ResumeRepository
func (s *LocalStore) SaveResume(ctx context.Context, r *types.ResumeRecord) error {
	if r.ID == "" {
		id, err := NewRecordID()
		if err != nil {
			return err
		}
		r.ID = id
	}
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	profile := *r
	profile.ID, profile.RawText, profile.Tags = "", "", nil
	body, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("localstore: marshal resume: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO resumes (id, profile_json, raw_text, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET profile_json = excluded.profile_json, raw_text = excluded.raw_text, updated_at = excluded.updated_at`,
			r.ID, string(body), r.RawText, formatTime(r.CreatedAt), formatTime(r.UpdatedAt)); err != nil {
			return fmt.Errorf("localstore: upsert resume: %w", err)
		}
		if err := s.replaceSearchRows(ctx, tx, *r); err != nil {
			return err
		}
		if len(r.Tags) == 0 {
			return nil
		}
		names := make([]string, 0, len(r.Tags))
		for _, t := range r.Tags {
			names = append(names, t.Name)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM resume_tags WHERE resume_id = ?`, r.ID); err != nil {
			return err
		}
		return attachTags(ctx, tx, r.ID, names)
	})
}

func (s *LocalStore) replaceSearchRows(ctx context.Context, tx *sql.Tx, r types.ResumeRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM resume_skills WHERE resume_id = ?`, r.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM resume_degrees WHERE resume_id = ?`, r.ID); err != nil {
		return err
	}
	for _, sk := range r.Skills {
		if _, err := tx.ExecContext(ctx, `INSERT INTO resume_skills (resume_id, name_lower) VALUES (?, ?)`, r.ID, strings.ToLower(sk.Name)); err != nil {
			return err
		}
	}
	for _, e := range r.Education {
		if _, err := tx.ExecContext(ctx, `INSERT INTO resume_degrees (resume_id, degree_lower) VALUES (?, ?)`, r.ID, strings.ToLower(e.Degree)); err != nil {
			return err
		}
	}
	return nil
}

func attachTags(ctx context.Context, tx *sql.Tx, resumeID string, names []string) error {
	for _, name := range normalizeTagNames(names) {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tags (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("localstore: create tag %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO resume_tags (resume_id, tag_id) SELECT ?, id FROM tags WHERE name = ?`,
			resumeID, name); err != nil {
			return fmt.Errorf("localstore: attach tag %s: %w", name, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResume(row rowScanner) (types.ResumeRecord, error) {
	var (
		id, body, created, updated string
		raw                        sql.NullString
	)
	if err := row.Scan(&id, &body, &raw, &created, &updated); err != nil {
		return types.ResumeRecord{}, err
	}
	var r types.ResumeRecord
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return types.ResumeRecord{}, fmt.Errorf("localstore: decode resume %s: %w", id, err)
	}
	r.ID = id
	r.RawText = raw.String
	r.CreatedAt = parseTime(created)
	r.UpdatedAt = parseTime(updated)
	return r, nil
}

const resumeColumns = `id, profile_json, raw_text, created_at, updated_at`

func (s *LocalStore) tagsOf(ctx context.Context, q interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}, resumeID string) ([]types.Tag, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT t.id, t.name FROM tags t JOIN resume_tags rt ON rt.tag_id = t.id WHERE rt.resume_id = ? ORDER BY t.name`, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []types.Tag{}
	for rows.Next() {
		var t types.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetResume 实现 ResumeRepository
func (s *LocalStore) GetResume(ctx context.Context, id string) (types.ResumeRecord, error) {
	r, err := scanResume(s.db.QueryRowContext(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.ResumeRecord{}, ErrNotFound
	}
	if err != nil {
		return types.ResumeRecord{}, err
	}
	if r.Tags, err = s.tagsOf(ctx, s.db, id); err != nil {
		return types.ResumeRecord{}, err
	}
	return r, nil
}

func (s *LocalStore) queryResumes(ctx context.Context, query string, args ...interface{}) ([]types.ResumeRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("localstore: query resumes: %w", err)
	}
	records := []types.ResumeRecord{}
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 单连接下需要先关闭结果集再查询标签
	for i := range records {
		tags, err := s.tagsOf(ctx, s.db, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Tags = tags
	}
	return records, nil
}

// ListResumes 实现 ResumeRepository，按创建时间倒序
func (s *LocalStore) ListResumes(ctx context.Context, offset, limit int) ([]types.ResumeRecord, int64, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resumes`).Scan(&total); err != nil {
		return nil, 0, err
	}
	records, err := s.queryResumes(ctx,
		`SELECT `+resumeColumns+` FROM resumes ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	return records, total, err
}

// DeleteResume 实现 ResumeRepository
func (s *LocalStore) DeleteResume(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM resumes WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		for _, stmt := range []string{
			`DELETE FROM resume_skills WHERE resume_id = ?`,
			`DELETE FROM resume_degrees WHERE resume_id = ?`,
			`DELETE FROM resume_tags WHERE resume_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// SearchResumes 实现 ResumeRepository
func (s *LocalStore) SearchResumes(ctx context.Context, q ResumeQuery) ([]types.ResumeRecord, error) {
	var where []string
	var args []interface{}
	if q.Skill != "" {
		where = append(where, `id IN (SELECT resume_id FROM resume_skills WHERE name_lower LIKE ? ESCAPE '\')`)
		args = append(args, likePattern(q.Skill))
	}
	if q.Education != "" {
		where = append(where, `id IN (SELECT resume_id FROM resume_degrees WHERE degree_lower LIKE ? ESCAPE '\')`)
		args = append(args, likePattern(q.Education))
	}

	query := `SELECT ` + resumeColumns + ` FROM resumes`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	return s.queryResumes(ctx, query, args...)
}

func (s *LocalStore) resumeExists(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM resumes WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// AddTags 实现 ResumeRepository
func (s *LocalStore) AddTags(ctx context.Context, id string, names []string) (types.ResumeRecord, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.resumeExists(ctx, tx, id); err != nil {
			return err
		}
		return attachTags(ctx, tx, id, names)
	})
	if err != nil {
		return types.ResumeRecord{}, err
	}
	return s.GetResume(ctx, id)
}

// RemoveTag 实现 ResumeRepository
func (s *LocalStore) RemoveTag(ctx context.Context, id string, name string) (types.ResumeRecord, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.resumeExists(ctx, tx, id); err != nil {
			return err
		}
		var tagID int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM resume_tags WHERE resume_id = ? AND tag_id = ?`, id, tagID)
		return err
	})
	if err != nil {
		return types.ResumeRecord{}, err
	}
	return s.GetResume(ctx, id)
}

// ListTags 实现 ResumeRepository
func (s *LocalStore) ListTags(ctx context.Context) ([]types.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []types.Tag{}
	for rows.Next() {
		var t types.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// EachResume 实现 ResumeRepository
func (s *LocalStore) EachResume(ctx context.Context, fn func(types.ResumeRecord) error) error {
	records, err := s.queryResumes(ctx, `SELECT `+resumeColumns+` FROM resumes ORDER BY created_at, id`)
	if err != nil {
		return err
	}
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

// SaveJobDescription 实现 MatchRepository
func (s *LocalStore) SaveJobDescription(ctx context.Context, text string, jd types.JobDescriptionRecord) (string, error) {
	hash := TextHash(text)
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM job_descriptions WHERE text_sha256 = ?`, hash).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	if id, err = NewRecordID(); err != nil {
		return "", err
	}
	body, err := json.Marshal(jd)
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO job_descriptions (id, title, text_sha256, jd_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, jd.Title, hash, string(body), formatTime(time.Now())); err != nil {
		return "", fmt.Errorf("localstore: insert job description: %w", err)
	}
	return id, nil
}

// SaveMatchReport 实现 MatchRepository
func (s *LocalStore) SaveMatchReport(ctx context.Context, jobID string, report types.MatchReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO match_results (resume_id, job_id, match_percentage, recommendation, report_json, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		report.ResumeID, jobID, report.MatchPercentage, report.Recommendation, string(body), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("localstore: insert match report: %w", err)
	}
	return nil
}

// MatchReports 返回岗位的匹配报告，按匹配百分比降序
func (s *LocalStore) MatchReports(ctx context.Context, jobID string) ([]types.MatchReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT report_json FROM match_results WHERE job_id = ? ORDER BY match_percentage DESC, id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []types.MatchReport{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var r types.MatchReport
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
