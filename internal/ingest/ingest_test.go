package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"resume-matcher/internal/parser"
	"resume-matcher/internal/storage"
	"resume-matcher/internal/storage/models"
	"resume-matcher/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	originals map[string][]byte
	texts     map[string]string
	failPut   bool
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{originals: map[string][]byte{}, texts: map[string]string{}}
}

func (f *fakeObjects) UploadOriginal(_ context.Context, id, ext string, data []byte) (string, error) {
	if f.failPut {
		return "", errors.New("minio down")
	}
	key := "resume/" + id + "/original" + ext
	f.originals[key] = data
	return key, nil
}

func (f *fakeObjects) UploadText(_ context.Context, id, text string) (string, error) {
	key := "resume/" + id + "/text.txt"
	f.texts[key] = text
	return key, nil
}

func (f *fakeObjects) GetOriginal(_ context.Context, key string) ([]byte, error) {
	data, ok := f.originals[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

type fakeStore struct {
	mu       sync.Mutex
	status   map[string]string
	saved    map[string]types.ResumeRecord
	archives map[string]storage.ArchiveInfo
}

func newFakeStore() *fakeStore {
	return &fakeStore{status: map[string]string{}, saved: map[string]types.ResumeRecord{}, archives: map[string]storage.ArchiveInfo{}}
}

func (f *fakeStore) CreatePendingResume(_ context.Context, id string, _ types.FileMeta, archive storage.ArchiveInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[id] = models.StatusPendingExtraction
	f.archives[id] = archive
	return nil
}

func (f *fakeStore) UpdateProcessingStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[id] = status
	return nil
}

func (f *fakeStore) SaveResumeWithArchive(_ context.Context, r *types.ResumeRecord, archive storage.ArchiveInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[r.ID] = models.StatusExtracted
	f.saved[r.ID] = *r
	f.archives[r.ID] = archive
	return nil
}

type fakePublisher struct {
	messages [][]byte
	fail     bool
}

func (f *fakePublisher) PublishJSON(_ context.Context, _, _ string, data interface{}, _ bool) error {
	if f.fail {
		return errors.New("broker down")
	}
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	f.messages = append(f.messages, body)
	return nil
}

type fakeDeduper struct {
	seen map[string]string
}

func (f *fakeDeduper) CheckAndSetFileMD5(_ context.Context, md5, id string) (bool, string, error) {
	if existing, ok := f.seen[md5]; ok {
		return true, existing, nil
	}
	f.seen[md5] = id
	return false, "", nil
}

func (f *fakeDeduper) RemoveFileMD5(_ context.Context, md5 string) error {
	delete(f.seen, md5)
	return nil
}

type stubExtractor struct {
	err error
}

func (s stubExtractor) Extract(_ context.Context, doc types.RawDocument) (types.ResumeRecord, error) {
	if s.err != nil {
		return types.ResumeRecord{}, s.err
	}
	return types.ResumeRecord{
		ContactInfo: types.ContactInfo{Name: "Jane Doe"},
		Skills:      types.WrapSkillNames([]string{"Python"}),
		RawText:     string(doc.Data),
		File:        types.FileMeta{FileName: doc.FileName, FileType: doc.Kind},
	}, nil
}

func TestUploadThenProcess(t *testing.T) {
	ctx := context.Background()
	objects, store, pub := newFakeObjects(), newFakeStore(), &fakePublisher{}
	dedup := &fakeDeduper{seen: map[string]string{}}

	svc := NewUploadService(objects, store, pub, "resume.events", "resume.uploaded", WithDeduper(dedup))
	res, err := svc.Upload(ctx, "jane.txt", []byte("Jane Doe\njane@example.com"))
	require.NoError(t, err, "上传不应出错")
	assert.Equal(t, StatusSubmitted, res.Status)
	assert.NotEmpty(t, res.ResumeID)
	assert.Equal(t, models.StatusPendingExtraction, store.status[res.ResumeID], "上传后应为待提取状态")
	require.Len(t, pub.messages, 1, "应投递一条提取任务")

	worker := NewExtractionWorker(objects, store, stubExtractor{}, WithWorkerDeduper(dedup))
	assert.True(t, worker.Handle(ctx, pub.messages[0]), "提取成功应确认消息")

	saved, ok := store.saved[res.ResumeID]
	require.True(t, ok, "应保存简历")
	assert.Equal(t, "Jane Doe", saved.ContactInfo.Name)
	assert.Equal(t, models.StatusExtracted, store.status[res.ResumeID])
	archive := store.archives[res.ResumeID]
	assert.Equal(t, "resume/"+res.ResumeID+"/text.txt", archive.TextPath, "应记录文本归档路径")
	assert.Len(t, archive.RawTextMD5, 32)
}

func TestUpload_Duplicate(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewUploadService(newFakeObjects(), newFakeStore(), pub, "x", "y", WithDeduper(&fakeDeduper{seen: map[string]string{}}))

	first, err := svc.Upload(ctx, "a.pdf", []byte("same bytes"))
	require.NoError(t, err)
	second, err := svc.Upload(ctx, "b.pdf", []byte("same bytes"))
	require.NoError(t, err)

	assert.Equal(t, StatusDuplicateFile, second.Status, "相同内容应判定为重复")
	assert.Equal(t, first.ResumeID, second.ResumeID, "重复上传返回已有ID")
	assert.Len(t, pub.messages, 1, "重复文件不再投递")
}

func TestUpload_Failures(t *testing.T) {
	ctx := context.Background()

	_, err := NewUploadService(newFakeObjects(), newFakeStore(), &fakePublisher{}, "x", "y").Upload(ctx, "cv.exe", []byte("x"))
	assert.ErrorIs(t, err, parser.ErrUnsupportedFormat, "不支持的扩展名应报错")

	dedup := &fakeDeduper{seen: map[string]string{}}
	objects := newFakeObjects()
	objects.failPut = true
	_, err = NewUploadService(objects, newFakeStore(), &fakePublisher{}, "x", "y", WithDeduper(dedup)).Upload(ctx, "cv.pdf", []byte("x"))
	assert.Error(t, err, "归档失败应报错")
	assert.Empty(t, dedup.seen, "失败后应回滚MD5")

	store := newFakeStore()
	res, err := NewUploadService(newFakeObjects(), store, &fakePublisher{fail: true}, "x", "y", WithDeduper(dedup)).Upload(ctx, "cv.pdf", []byte("x"))
	assert.Error(t, err, "投递失败应报错")
	assert.Empty(t, res.ResumeID)
	assert.Empty(t, dedup.seen, "投递失败后应回滚MD5")
	for _, status := range store.status {
		assert.Equal(t, models.StatusExtractionFailed, status, "投递失败应标记提取失败")
	}
}

func TestWorker_ExtractionFailureAcks(t *testing.T) {
	ctx := context.Background()
	objects, store := newFakeObjects(), newFakeStore()
	dedup := &fakeDeduper{seen: map[string]string{"abc": "r1"}}
	objects.originals["resume/r1/original.pdf"] = []byte("%PDF")

	worker := NewExtractionWorker(objects, store, stubExtractor{err: parser.ErrExtractionFailure}, WithWorkerDeduper(dedup))
	body, _ := json.Marshal(storage.ResumeUploadMessage{ResumeID: "r1", FileType: "pdf", OriginalPathOSS: "resume/r1/original.pdf", RawFileMD5: "abc"})

	assert.True(t, worker.Handle(ctx, body), "文档提取失败不应重试")
	assert.Equal(t, models.StatusExtractionFailed, store.status["r1"])
	assert.Empty(t, dedup.seen, "提取失败应回滚MD5")
}

func TestWorker_MissingObjectAndBadMessage(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	worker := NewExtractionWorker(newFakeObjects(), store, stubExtractor{})

	assert.True(t, worker.Handle(ctx, []byte("{not json")), "无法解析的消息应直接确认")

	body, _ := json.Marshal(storage.ResumeUploadMessage{ResumeID: "r2", FileType: "pdf", OriginalPathOSS: "missing"})
	assert.True(t, worker.Handle(ctx, body), "原始文件不存在不应重试")
	assert.Equal(t, models.StatusExtractionFailed, store.status["r2"])
}
