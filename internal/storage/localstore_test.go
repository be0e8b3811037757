package storage_test

import (
	"context"
	"testing"
	"time"

	"resume-matcher/internal/storage"
	"resume-matcher/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemoryStore(t *testing.T) *storage.LocalStore {
	t.Helper()
	store, err := storage.OpenLocalStore(":memory:")
	require.NoError(t, err, "打开内存SQLite不应出错")
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResume(name string, skills []string, degree string) *types.ResumeRecord {
	r := &types.ResumeRecord{
		ContactInfo: types.ContactInfo{Name: name, Email: "someone@example.com"},
		Skills:      types.WrapSkillNames(skills),
		RawText:     name + " resume text",
		File:        types.FileMeta{FileName: "cv.txt", FileType: types.KindTXT, FileSize: 42},
	}
	if degree != "" {
		r.Education = []types.EducationEntry{{Institution: "State University", Degree: degree}}
	}
	return r
}

func TestLocalStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	r := sampleResume("Jane Doe", []string{"Python", "Docker"}, "Bachelor of Science")
	require.NoError(t, store.SaveResume(ctx, r), "保存简历不应出错")
	assert.NotEmpty(t, r.ID, "保存后应回写ID")
	assert.False(t, r.CreatedAt.IsZero(), "应设置创建时间")

	got, err := store.GetResume(ctx, r.ID)
	require.NoError(t, err, "读取简历不应出错")
	assert.Equal(t, "Jane Doe", got.ContactInfo.Name, "姓名应一致")
	assert.Equal(t, []string{"Python", "Docker"}, got.SkillNames(), "技能应按顺序保存")
	assert.Equal(t, "Jane Doe resume text", got.RawText, "原始文本应保存")
	assert.Equal(t, types.KindTXT, got.File.FileType, "文件类型应保存")
	assert.Empty(t, got.Tags, "新简历没有标签")
	assert.WithinDuration(t, r.CreatedAt, got.CreatedAt, time.Millisecond, "创建时间应保存")

	_, err = store.GetResume(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound, "不存在的ID应返回ErrNotFound")
}

func TestLocalStore_UpdateReplacesSearchRows(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	r := sampleResume("Jane Doe", []string{"Python"}, "")
	require.NoError(t, store.SaveResume(ctx, r))

	r.Skills = types.WrapSkillNames([]string{"Rust"})
	require.NoError(t, store.SaveResume(ctx, r), "更新简历不应出错")

	found, err := store.SearchResumes(ctx, storage.ResumeQuery{Skill: "python"})
	require.NoError(t, err)
	assert.Empty(t, found, "旧技能应被替换")

	found, err = store.SearchResumes(ctx, storage.ResumeQuery{Skill: "rust"})
	require.NoError(t, err)
	require.Len(t, found, 1, "新技能应可检索")
	assert.Equal(t, r.ID, found[0].ID)
}

func TestLocalStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		r := sampleResume(name, []string{"Go"}, "")
		require.NoError(t, store.SaveResume(ctx, r))
		ids = append(ids, r.ID)
	}

	page, total, err := store.ListResumes(ctx, 0, 2)
	require.NoError(t, err, "分页查询不应出错")
	assert.Equal(t, int64(3), total, "总数应为3")
	require.Len(t, page, 2, "第一页应有2条")
	assert.Equal(t, "C", page[0].ContactInfo.Name, "应按创建时间倒序")

	page, _, err = store.ListResumes(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1, "第二页应有1条")
	assert.Equal(t, "A", page[0].ContactInfo.Name)

	require.NoError(t, store.DeleteResume(ctx, ids[0]), "删除不应出错")
	assert.ErrorIs(t, store.DeleteResume(ctx, ids[0]), storage.ErrNotFound, "重复删除应返回ErrNotFound")

	_, total, err = store.ListResumes(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "删除后剩2条")
}

func TestLocalStore_Search(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	py := sampleResume("Py Dev", []string{"Python", "Django"}, "Master of Science")
	js := sampleResume("JS Dev", []string{"JavaScript", "React"}, "Bachelor of Arts")
	pct := sampleResume("Odd Dev", []string{"100%_coverage"}, "")
	for _, r := range []*types.ResumeRecord{py, js, pct} {
		require.NoError(t, store.SaveResume(ctx, r))
	}

	tests := []struct {
		name  string
		query storage.ResumeQuery
		want  []string
	}{
		{"技能子串大小写不敏感", storage.ResumeQuery{Skill: "PYTH"}, []string{py.ID}},
		{"学历子串", storage.ResumeQuery{Education: "bachelor"}, []string{js.ID}},
		{"技能和学历同时满足", storage.ResumeQuery{Skill: "react", Education: "master"}, []string{}},
		{"通配符按字面匹配", storage.ResumeQuery{Skill: "%_"}, []string{pct.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := store.SearchResumes(ctx, tt.query)
			require.NoError(t, err)
			ids := []string{}
			for _, r := range found {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	all, err := store.SearchResumes(ctx, storage.ResumeQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, all, 2, "空条件受Limit限制")
}

func TestLocalStore_Tags(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	r := sampleResume("Tagged", []string{"Go"}, "")
	require.NoError(t, store.SaveResume(ctx, r))

	got, err := store.AddTags(ctx, r.ID, []string{"backend", " backend ", "", "senior"})
	require.NoError(t, err, "添加标签不应出错")
	require.Len(t, got.Tags, 2, "空白和重复标签应被忽略")
	assert.Equal(t, "backend", got.Tags[0].Name)
	assert.Equal(t, "senior", got.Tags[1].Name)

	got, err = store.AddTags(ctx, r.ID, []string{"senior"})
	require.NoError(t, err)
	assert.Len(t, got.Tags, 2, "重复添加不产生新关联")

	tags, err := store.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2, "全局标签应有2个")

	got, err = store.RemoveTag(ctx, r.ID, "backend")
	require.NoError(t, err, "移除标签不应出错")
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "senior", got.Tags[0].Name)

	_, err = store.RemoveTag(ctx, r.ID, "unknown")
	assert.ErrorIs(t, err, storage.ErrNotFound, "未知标签应返回ErrNotFound")

	_, err = store.AddTags(ctx, "missing", []string{"x"})
	assert.ErrorIs(t, err, storage.ErrNotFound, "未知简历应返回ErrNotFound")
}

func TestLocalStore_EachResume(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	for _, name := range []string{"first", "second"} {
		require.NoError(t, store.SaveResume(ctx, sampleResume(name, nil, "")))
	}

	var names []string
	err := store.EachResume(ctx, func(r types.ResumeRecord) error {
		names = append(names, r.ContactInfo.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, names, "应按创建顺序遍历")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = store.EachResume(cancelled, func(types.ResumeRecord) error { return nil })
	assert.Error(t, err, "取消的上下文应中止遍历")
}

func TestLocalStore_JobDescriptionAndReports(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	jd := types.JobDescriptionRecord{Title: "Backend Engineer"}
	id1, err := store.SaveJobDescription(ctx, "we need python", jd)
	require.NoError(t, err)
	id2, err := store.SaveJobDescription(ctx, "we need python", jd)
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "相同文本应复用岗位ID")

	id3, err := store.SaveJobDescription(ctx, "we need rust", jd)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3, "不同文本应生成新岗位")

	require.NoError(t, store.SaveMatchReport(ctx, id1, types.MatchReport{ResumeID: "r1", MatchPercentage: 40, Recommendation: types.TierConsider}))
	require.NoError(t, store.SaveMatchReport(ctx, id1, types.MatchReport{ResumeID: "r2", MatchPercentage: 90, Recommendation: types.TierStrongMatch}))

	reports, err := store.MatchReports(ctx, id1)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "r2", reports[0].ResumeID, "应按匹配度降序")
	assert.Equal(t, types.TierStrongMatch, reports[0].Recommendation)
}
