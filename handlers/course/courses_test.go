package course

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teachme/platform-api/database/dbtest"
	"github.com/teachme/platform-api/model"
	"github.com/teachme/platform-api/services/storage"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func setup(t *testing.T) (*fiber.App, *gorm.DB, string) {
	t.Helper()
	db := dbtest.Open(t)
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir, storage.PublicPrefix)
	require.NoError(t, err)

	h := NewCourseHandler(db, store)
	app := fiber.New()
	app.Get("/courses", h.ListCourses)
	app.Get("/courses/my-courses", h.ListMyCourses)
	app.Post("/courses", h.CreateCourse)
	app.Get("/courses/:id", h.GetCourse)
	app.Patch("/courses/:id", h.UpdateCourse)
	app.Post("/courses/:id/modules", h.CreateModule)
	app.Post("/courses/:id/videos", h.UploadVideo)
	app.Post("/modules/:id/videos", h.UploadVideo)
	return app, db, dir
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, path, title, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if title != "" {
		require.NoError(t, w.WriteField("title", title))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestListCoursesOnlyPublished(t *testing.T) {
	app, db, _ := setup(t)
	published := dbtest.CreateCourse(t, db, "Public", 10, true)
	dbtest.CreateCourse(t, db, "Draft", 10, false)

	status, env := send(t, app, jsonRequest(t, http.MethodGet, "/courses", nil))
	require.Equal(t, http.StatusOK, status)

	var courses []model.Course
	require.NoError(t, json.Unmarshal(env.Data, &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, published.ID, courses[0].ID)
	for _, c := range courses {
		assert.True(t, c.IsPublished)
	}

	status, env = send(t, app, jsonRequest(t, http.MethodGet, "/courses/my-courses", nil))
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &courses))
	assert.Len(t, courses, 2)
}

func TestListCoursesPagination(t *testing.T) {
	app, db, _ := setup(t)
	for _, title := range []string{"A", "B", "C"} {
		dbtest.CreateCourse(t, db, title, 0, true)
	}

	status, env := send(t, app, jsonRequest(t, http.MethodGet, "/courses?skip=1&limit=1", nil))
	require.Equal(t, http.StatusOK, status)
	var courses []model.Course
	require.NoError(t, json.Unmarshal(env.Data, &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, "B", courses[0].Title)
}

func TestListCoursesEmptyIsArray(t *testing.T) {
	app, _, _ := setup(t)
	status, env := send(t, app, jsonRequest(t, http.MethodGet, "/courses", nil))
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestCreateAndGetCourseOutline(t *testing.T) {
	app, _, _ := setup(t)

	status, env := send(t, app, jsonRequest(t, http.MethodPost, "/courses", map[string]any{
		"title": "Concurrency in Go", "description": "Channels and friends", "price": 1999, "is_published": true,
	}))
	require.Equal(t, http.StatusCreated, status)
	var created model.Course
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 1999, created.Price)

	path := "/courses/" + itoa(created.ID)
	status, _ = send(t, app, jsonRequest(t, http.MethodPost, path+"/modules", map[string]any{"title": "Second", "order": 2}))
	require.Equal(t, http.StatusCreated, status)
	status, env = send(t, app, jsonRequest(t, http.MethodPost, path+"/modules", map[string]any{"title": "First", "order": 1}))
	require.Equal(t, http.StatusCreated, status)
	var module model.Module
	require.NoError(t, json.Unmarshal(env.Data, &module))

	status, _ = send(t, app, uploadRequest(t, "/modules/"+itoa(module.ID)+"/videos", "Intro", "intro.MP4", []byte("frames")))
	require.Equal(t, http.StatusCreated, status)

	status, env = send(t, app, jsonRequest(t, http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, status)
	var got model.Course
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got.Modules, 2)
	assert.Equal(t, "First", got.Modules[0].Title)
	assert.Equal(t, "Second", got.Modules[1].Title)
	require.Len(t, got.Modules[0].Videos, 1)
	assert.True(t, strings.HasSuffix(got.Modules[0].Videos[0].URL, ".mp4"))
	assert.Empty(t, got.Modules[1].Videos)
}

func TestCreateCourseValidation(t *testing.T) {
	app, _, _ := setup(t)
	status, _ := send(t, app, jsonRequest(t, http.MethodPost, "/courses", map[string]any{"price": 10}))
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = send(t, app, jsonRequest(t, http.MethodPost, "/courses", map[string]any{"title": "x", "price": -1}))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestGetCourseNotFound(t *testing.T) {
	app, _, _ := setup(t)
	status, env := send(t, app, jsonRequest(t, http.MethodGet, "/courses/999", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Course not found", env.Error.Message)
}

func TestPatchPriceOnly(t *testing.T) {
	app, db, _ := setup(t)
	desc := "Original description"
	course := &model.Course{Title: "Original", Description: &desc, Price: 100, IsPublished: true}
	require.NoError(t, db.Create(course).Error)
	old := time.Now().Add(-time.Hour).UTC()
	require.NoError(t, db.Model(course).UpdateColumn("updated_at", old).Error)

	status, env := send(t, app, jsonRequest(t, http.MethodPatch, "/courses/"+itoa(course.ID), map[string]any{"price": 500}))
	require.Equal(t, http.StatusOK, status)

	var got model.Course
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 500, got.Price)
	assert.Equal(t, "Original", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Original description", *got.Description)
	assert.True(t, got.IsPublished)
	assert.True(t, got.UpdatedAt.After(old))

	var stored model.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	assert.Equal(t, 500, stored.Price)
	assert.Equal(t, "Original", stored.Title)
	assert.True(t, stored.IsPublished)
}

func TestPatchNullClearsDescription(t *testing.T) {
	app, db, _ := setup(t)
	desc := "to clear"
	course := &model.Course{Title: "Clearable", Description: &desc, Price: 10, IsPublished: true}
	require.NoError(t, db.Create(course).Error)

	status, env := send(t, app, jsonRequest(t, http.MethodPatch, "/courses/"+itoa(course.ID), map[string]any{"description": nil}))
	require.Equal(t, http.StatusOK, status)

	var got model.Course
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Nil(t, got.Description)

	var stored model.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	assert.Nil(t, stored.Description)
	assert.Equal(t, "Clearable", stored.Title)
	assert.Equal(t, 10, stored.Price)
}

func TestPatchNullRequiredFieldRejected(t *testing.T) {
	app, db, _ := setup(t)
	course := dbtest.CreateCourse(t, db, "Keep", 100, true)

	for _, field := range []string{"title", "price", "is_published"} {
		t.Run(field, func(t *testing.T) {
			status, env := send(t, app, jsonRequest(t, http.MethodPatch, "/courses/"+itoa(course.ID), map[string]any{field: nil}))
			assert.Equal(t, http.StatusUnprocessableEntity, status)
			assert.False(t, env.Success)
		})
	}

	var stored model.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	assert.Equal(t, "Keep", stored.Title)
	assert.Equal(t, 100, stored.Price)
	assert.True(t, stored.IsPublished)
}

func TestPatchCanUnpublish(t *testing.T) {
	app, db, _ := setup(t)
	course := dbtest.CreateCourse(t, db, "Live", 100, true)

	status, _ := send(t, app, jsonRequest(t, http.MethodPatch, "/courses/"+itoa(course.ID), map[string]any{"is_published": false}))
	require.Equal(t, http.StatusOK, status)

	var stored model.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	assert.False(t, stored.IsPublished)
	assert.Equal(t, 100, stored.Price)
}

func TestPatchMissingCourse(t *testing.T) {
	app, _, _ := setup(t)
	status, _ := send(t, app, jsonRequest(t, http.MethodPatch, "/courses/404", map[string]any{"price": 1}))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateModuleMissingCourse(t *testing.T) {
	app, _, _ := setup(t)
	status, env := send(t, app, jsonRequest(t, http.MethodPost, "/courses/404/modules", map[string]any{"title": "Orphan"}))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Course not found", env.Error.Message)
}

func TestUploadVideoPathsAreUnique(t *testing.T) {
	app, db, dir := setup(t)
	course := dbtest.CreateCourse(t, db, "Media", 0, true)
	module := model.Module{Title: "Clips", CourseID: course.ID}
	require.NoError(t, db.Create(&module).Error)

	seen := map[string]bool{}
	for _, path := range []string{"/modules/" + itoa(module.ID) + "/videos", "/courses/" + itoa(module.ID) + "/videos"} {
		status, env := send(t, app, uploadRequest(t, path, "Lesson", "lesson.mp4", []byte("video-bytes")))
		require.Equal(t, http.StatusCreated, status)

		var video model.Video
		require.NoError(t, json.Unmarshal(env.Data, &video))
		assert.True(t, strings.HasPrefix(video.URL, storage.PublicPrefix+"/"))
		assert.True(t, strings.HasSuffix(video.URL, ".mp4"))
		assert.False(t, seen[video.URL], "duplicate path %s", video.URL)
		seen[video.URL] = true
		assert.Equal(t, module.ID, video.ModuleID)

		data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(video.URL, storage.PublicPrefix+"/")))
		require.NoError(t, err)
		assert.Equal(t, "video-bytes", string(data))
	}
}

func TestUploadVideoErrors(t *testing.T) {
	app, db, dir := setup(t)
	course := dbtest.CreateCourse(t, db, "Media", 0, true)
	module := model.Module{Title: "Clips", CourseID: course.ID}
	require.NoError(t, db.Create(&module).Error)

	status, env := send(t, app, uploadRequest(t, "/modules/999/videos", "Lost", "lost.mp4", []byte("x")))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Module not found", env.Error.Message)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	status, _ = send(t, app, uploadRequest(t, "/modules/"+itoa(module.ID)+"/videos", "", "a.mp4", []byte("x")))
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = send(t, app, uploadRequest(t, "/modules/"+itoa(module.ID)+"/videos", "No file", "", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
