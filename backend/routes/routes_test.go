package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"skillforge/backend/config"
	"skillforge/backend/models"
	"skillforge/backend/storage"
	"skillforge/backend/utils"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{JWTSecret: "testsecret", MediaBaseURL: "/media"}
	store, err := storage.NewDiskStore(t.TempDir(), cfg.MediaBaseURL)
	require.NoError(t, err)

	app := fiber.New()
	SetupRoutes(app, db, cfg, log.New(io.Discard, "", 0), store)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func register(t *testing.T, app *fiber.App, email, userType string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":      email,
		"password":   "secret123",
		"first_name": "Test",
		"last_name":  "User",
		"user_type":  userType,
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestLearningFlow(t *testing.T) {
	app, db := newTestApp(t)

	teacherToken := register(t, app, "teacher@test.io", "teacher")
	studentToken := register(t, app, "student@test.io", "student")

	// Teacher authors and publishes a course.
	status, body := doJSON(t, app, http.MethodPost, "/api/courses", teacherToken, fiber.Map{
		"title":    "Go from Zero",
		"category": "Programming",
		"level":    "Beginner",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPut, "/api/courses/1/published", teacherToken,
		fiber.Map{"published": true})
	require.Equal(t, http.StatusOK, status)

	// Students cannot author courses.
	status, _ = doJSON(t, app, http.MethodPost, "/api/courses", studentToken,
		fiber.Map{"title": "Nope"})
	assert.Equal(t, http.StatusForbidden, status)

	// Enrollment is idempotent.
	status, _ = doJSON(t, app, http.MethodPost, "/api/courses/1/enroll", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, body = doJSON(t, app, http.MethodPost, "/api/courses/1/enroll", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Already enrolled in this course", body["message"])

	// Unenroll then re-enroll: the second enroll must succeed for real,
	// not trip over a leftover row from the first enrollment.
	status, _ = doJSON(t, app, http.MethodDelete, "/api/courses/1/enroll", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, body = doJSON(t, app, http.MethodPost, "/api/courses/1/enroll", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Successfully enrolled in course", body["message"])
	var enrolled int64
	require.NoError(t, db.Model(&models.Enrollment{}).
		Where("user_email = ? AND course_id = ?", "student@test.io", 1).
		Count(&enrolled).Error)
	require.Equal(t, int64(1), enrolled)

	// One video to watch.
	require.NoError(t, db.Create(&models.Video{ID: "v1", CourseID: 1, Name: "intro.mp4", DurationSeconds: 100}).Error)

	status, body = doJSON(t, app, http.MethodPut, "/api/courses/1/videos/v1/progress", studentToken,
		fiber.Map{"current_time": 60.0, "duration": 100.0})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 60.0, body["percentage"])
	assert.Equal(t, false, body["completed"])

	status, body = doJSON(t, app, http.MethodGet, "/api/courses/1/progress", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 60.0, body["percentage"])
	assert.Equal(t, true, body["review_eligible"])

	// The player resumes from the saved position.
	status, body = doJSON(t, app, http.MethodGet, "/api/courses/1/player", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	videos := body["videos"].([]interface{})
	require.Len(t, videos, 1)
	assert.Equal(t, 60.0, videos[0].(map[string]interface{})["resume_position"])
	assert.Equal(t, 10.0, body["autosave_interval_seconds"])

	// Rate, then review; stars snapshot the rounded rating.
	status, _ = doJSON(t, app, http.MethodPut, "/api/courses/1/rating", studentToken,
		fiber.Map{"value": 4.5})
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, http.MethodPost, "/api/courses/1/reviews", studentToken,
		fiber.Map{"content": "Really solid introduction to Go"})
	require.Equal(t, http.StatusOK, status)
	review := body["review"].(map[string]interface{})
	assert.Equal(t, 5.0, review["Stars"])

	// The creator cannot rate their own course.
	status, _ = doJSON(t, app, http.MethodPut, "/api/courses/1/rating", teacherToken,
		fiber.Map{"value": 5})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = doJSON(t, app, http.MethodGet, "/api/courses/1/reviews", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["total"])
	reviewCard := body["reviews"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Today", reviewCard["posted"])

	// Discussion thread.
	status, body = doJSON(t, app, http.MethodPost, "/api/courses/1/comments", studentToken,
		fiber.Map{"content": "When is part two coming?"})
	require.Equal(t, http.StatusOK, status)
	commentID := body["comment"].(map[string]interface{})["ID"].(string)

	status, body = doJSON(t, app, http.MethodPost, "/api/comments/"+commentID+"/like", teacherToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, 1.0, body["likes"])
}

func TestAuthRequired(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodGet, "/api/courses/catalog", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/user/profile", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestDuplicateRegistration(t *testing.T) {
	app, _ := newTestApp(t)

	register(t, app, "dup@test.io", "student")
	status, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":      "dup@test.io",
		"password":   "secret123",
		"first_name": "Test",
		"last_name":  "User",
	})
	assert.Equal(t, http.StatusConflict, status)
}

func TestAdminSuspension(t *testing.T) {
	app, db := newTestApp(t)

	studentToken := register(t, app, "student@test.io", "student")
	adminToken := register(t, app, "admin@test.io", "student")
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "admin@test.io").
		Update("user_type", models.UserTypeAdmin).Error)

	// Students cannot reach admin routes.
	status, _ := doJSON(t, app, http.MethodGet, "/api/admin/users", studentToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, _ = doJSON(t, app, http.MethodPut, "/api/admin/users/student@test.io/status", adminToken,
		fiber.Map{"status": "suspended"})
	require.Equal(t, http.StatusOK, status)

	// Suspension takes effect on the student's next request.
	status, _ = doJSON(t, app, http.MethodGet, "/api/user/profile", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Admins cannot suspend themselves.
	status, _ = doJSON(t, app, http.MethodPut, "/api/admin/users/admin@test.io/status", adminToken,
		fiber.Map{"status": "suspended"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestVideoUpload(t *testing.T) {
	app, db := newTestApp(t)

	teacherToken := register(t, app, "teacher@test.io", "teacher")

	status, _ := doJSON(t, app, http.MethodPost, "/api/courses", teacherToken, fiber.Map{
		"title": "Go from Zero",
	})
	require.Equal(t, http.StatusOK, status)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="video"; filename="Intro Lesson.mp4"`)
	header.Set("Content-Type", "video/mp4")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake video bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("duration", "120"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/courses/1/videos", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", teacherToken)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var video models.Video
	require.NoError(t, db.Where("course_id = ?", 1).First(&video).Error)
	assert.Equal(t, "Intro Lesson.mp4", video.Name)
	assert.Equal(t, 120.0, video.DurationSeconds)
	assert.Equal(t, 0, video.Position)
	assert.Contains(t, video.VideoURL, "/media/teacher_at_test_io/")
}
