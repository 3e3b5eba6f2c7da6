package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/resumeparser/api/http/handlers"
	"github.com/artem13815/resumeparser/pkg/health"
	"github.com/artem13815/resumeparser/pkg/health/checkers"
	sqliterepo "github.com/artem13815/resumeparser/pkg/repository/sqlite"
	"github.com/artem13815/resumeparser/pkg/resume"
	"github.com/artem13815/resumeparser/pkg/storage/local"
	sqlitestore "github.com/artem13815/resumeparser/pkg/storage/sqlite"
)

type stubExtractor struct{ text string }

func (s stubExtractor) ExtractText(context.Context, []byte) (string, error) { return s.text, nil }

type stubModel struct {
	reply string
	err   error
	calls int
}

func (s *stubModel) Ask(context.Context, string, string) (string, error) {
	s.calls++
	return s.reply, s.err
}

type testEnv struct {
	app       *fiber.App
	model     *stubModel
	uploadDir string
}

func newTestEnv(t *testing.T, reply string, maxBytes int64) *testEnv {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := sqlitestore.Open(ctx, filepath.Join(dir, "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo, err := sqliterepo.NewResumeRepository(ctx, db)
	require.NoError(t, err)

	uploadDir := filepath.Join(dir, "uploads")
	files, err := local.NewFileStore(uploadDir)
	require.NoError(t, err)

	model := &stubModel{reply: reply}
	svc := resume.NewUploadService(stubExtractor{text: "Jane Doe\nGo developer"}, model, repo, log)

	app := NewApp(Options{MaxUploadBytes: maxBytes, FrontendOrigin: "http://localhost:5173"}, log)
	Register(app,
		handlers.NewHealthHandler(health.NewService(checkers.NewSQLiteChecker(db, 0))),
		handlers.NewResumesHandler(svc, repo, files, maxBytes, log),
		uploadDir,
	)
	return &testEnv{app: app, model: model, uploadDir: uploadDir}
}

func (e *testEnv) do(t *testing.T, method, target string, body io.Reader, contentType string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func (e *testEnv) upload(t *testing.T, field, fileName, partType string, data []byte) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+fileName+`"`)
	h.Set("Content-Type", partType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return e.do(t, fiber.MethodPost, "/api/upload", &buf, w.FormDataContentType())
}

const janeReply = "```json\n" + `{
  "personal": {"name": "Jane Doe", "email": "jane@x.io", "phone": null, "linkedin": null},
  "summary": "Go developer",
  "work_experience": [],
  "education": [],
  "projects": [],
  "certifications": [],
  "technical_skills": ["Go", "SQL"],
  "soft_skills": [],
  "ai_feedback": {"rating_out_of_10": 7, "improvement_areas": ["Add metrics"], "suggested_skills_to_learn": ["Kubernetes"]}
}` + "\n```"

func TestUploadAndRead(t *testing.T) {
	env := newTestEnv(t, janeReply, 1<<20)

	status, body := env.upload(t, "resume", "cv.pdf", "application/pdf", []byte("%PDF-1.4 fake"))
	require.Equal(t, fiber.StatusOK, status, string(body))

	var up struct {
		ID     int64          `json:"id"`
		Parsed map[string]any `json:"parsed"`
	}
	require.NoError(t, json.Unmarshal(body, &up))
	assert.Positive(t, up.ID)
	assert.Equal(t, "Go developer", up.Parsed["summary"])

	status, body = env.do(t, fiber.MethodGet, "/api/resumes/"+strconv.FormatInt(up.ID, 10), nil, "")
	require.Equal(t, fiber.StatusOK, status)
	var rec resume.Record
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, up.ID, rec.ID)
	require.NotNil(t, rec.Name)
	assert.Equal(t, "Jane Doe", *rec.Name)
	assert.Equal(t, []string{"Go", "SQL"}, rec.TechnicalSkills)
	require.NotNil(t, rec.Rating)
	assert.Equal(t, 7, *rec.Rating)
	require.NotNil(t, rec.Feedback)
	assert.Equal(t, "Add metrics", *rec.Feedback)
	assert.Equal(t, "Jane Doe\nGo developer", rec.RawText)
	assert.True(t, strings.HasSuffix(rec.FileName, "-cv.pdf"))
	assert.Contains(t, string(body), `"certifications":[]`)

	stored, err := os.ReadFile(filepath.Join(env.uploadDir, rec.FileName))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(stored))

	status, body = env.do(t, fiber.MethodGet, "/uploads/"+rec.FileName, nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "%PDF-1.4 fake", string(body))

	status, body = env.do(t, fiber.MethodGet, "/api/resumes", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	var list []resume.Summary
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, up.ID, list[0].ID)
	assert.Equal(t, rec.FileName, list[0].FileName)
}

func TestUploadFallback(t *testing.T) {
	reply := "Sorry, I cannot produce JSON for this document."
	env := newTestEnv(t, reply, 1<<20)

	status, body := env.upload(t, "resume", "cv.pdf", "application/pdf", []byte("%PDF"))
	require.Equal(t, fiber.StatusOK, status)

	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, resume.FallbackWarning, out["warning"])
	assert.Equal(t, reply, out["raw"])
	id, ok := out["id"].(float64)
	require.True(t, ok)

	status, body = env.do(t, fiber.MethodGet, "/api/resumes/"+strconv.FormatInt(int64(id), 10), nil, "")
	require.Equal(t, fiber.StatusOK, status)
	var rec resume.Record
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, reply, rec.RawText)
	assert.Nil(t, rec.Name)
	assert.Nil(t, rec.Rating)
	assert.Equal(t, []string{}, rec.TechnicalSkills)
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		partType string
		data     []byte
	}{
		{name: "not a pdf", field: "resume", partType: "text/plain", data: []byte("hello")},
		{name: "wrong field", field: "file", partType: "application/pdf", data: []byte("%PDF")},
		{name: "too large", field: "resume", partType: "application/pdf", data: bytes.Repeat([]byte("a"), 64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, janeReply, 32)

			status, body := env.upload(t, tt.field, "cv.pdf", tt.partType, tt.data)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Contains(t, string(body), `"error"`)
			assert.Zero(t, env.model.calls)

			status, body = env.do(t, fiber.MethodGet, "/api/resumes", nil, "")
			require.Equal(t, fiber.StatusOK, status)
			assert.JSONEq(t, `[]`, string(body))
		})
	}
}

func TestUploadNotMultipart(t *testing.T) {
	env := newTestEnv(t, janeReply, 1<<20)
	status, _ := env.do(t, fiber.MethodPost, "/api/upload", strings.NewReader(`{}`), fiber.MIMEApplicationJSON)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestUploadCompletionFailure(t *testing.T) {
	env := newTestEnv(t, "", 1<<20)
	env.model.err = errors.New("model unavailable")

	status, body := env.upload(t, "resume", "cv.pdf", "application/pdf", []byte("%PDF"))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Contains(t, string(body), "model unavailable")

	_, body = env.do(t, fiber.MethodGet, "/api/resumes", nil, "")
	assert.JSONEq(t, `[]`, string(body))
}

func TestListIdempotent(t *testing.T) {
	env := newTestEnv(t, janeReply, 1<<20)
	for i := 0; i < 2; i++ {
		status, _ := env.upload(t, "resume", "cv.pdf", "application/pdf", []byte("%PDF"))
		require.Equal(t, fiber.StatusOK, status)
	}
	_, first := env.do(t, fiber.MethodGet, "/api/resumes", nil, "")
	_, second := env.do(t, fiber.MethodGet, "/api/resumes", nil, "")
	assert.JSONEq(t, string(first), string(second))

	var list []resume.Summary
	require.NoError(t, json.Unmarshal(first, &list))
	require.Len(t, list, 2)
	assert.Greater(t, list[0].ID, list[1].ID)
}

func TestGetByIDErrors(t *testing.T) {
	env := newTestEnv(t, janeReply, 1<<20)

	status, body := env.do(t, fiber.MethodGet, "/api/resumes/abc", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"invalid id"}`, string(body))

	status, body = env.do(t, fiber.MethodGet, "/api/resumes/1.5", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"invalid id"}`, string(body))

	for _, id := range []string{"999", "0", "-3"} {
		status, body = env.do(t, fiber.MethodGet, "/api/resumes/"+id, nil, "")
		assert.Equal(t, fiber.StatusNotFound, status, id)
		assert.JSONEq(t, `{"error":"Not found"}`, string(body), id)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, janeReply, 1<<20)

	status, body := env.do(t, fiber.MethodGet, "/api/health", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	status, body = env.do(t, fiber.MethodGet, "/api/ready", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"ready"}`, string(body))
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, janeReply, 1<<20)
	status, body := env.do(t, fiber.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, string(body), `"error"`)
}
