package services

import (
	"io"
	"log"
	"skillforge/backend/models"
	"skillforge/backend/utils"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// A pooled second connection would get its own empty memory DB.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, utils.Migrate(db))
	return db
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func seedUser(t *testing.T, db *gorm.DB, email, userType string) *models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		UserType:     userType,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedCourse(t *testing.T, db *gorm.DB, creatorEmail string) *models.Course {
	t.Helper()
	course := models.Course{
		Title:        "Go from Zero",
		Category:     "Programming",
		Level:        "Beginner",
		CreatorEmail: creatorEmail,
		CreatorName:  "Test User",
		Published:    true,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func seedVideo(t *testing.T, db *gorm.DB, courseID uint, id string, position int) *models.Video {
	t.Helper()
	video := models.Video{
		ID:              id,
		CourseID:        courseID,
		Name:            id + ".mp4",
		DurationSeconds: 100,
		Position:        position,
	}
	require.NoError(t, db.Create(&video).Error)
	return &video
}

func seedEnrollment(t *testing.T, db *gorm.DB, email string, courseID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.Enrollment{UserEmail: email, CourseID: courseID}).Error)
}
