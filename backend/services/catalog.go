package services

import (
	"log"
	"skillforge/backend/models"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Catalog sort orders.
const (
	CatalogSortNewest = "newest"
	CatalogSortRating = "rating"
	CatalogSortTitle  = "title"
)

type CatalogService struct {
	DB      *gorm.DB
	Log     *log.Logger
	Reviews *ReviewService
}

func NewCatalogService(db *gorm.DB, logger *log.Logger, reviews *ReviewService) *CatalogService {
	return &CatalogService{DB: db, Log: logger, Reviews: reviews}
}

// CatalogEntry is the read-only course card shown in search results.
type CatalogEntry struct {
	ID            uint    `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Level         string  `json:"level"`
	Thumbnail     string  `json:"thumbnail"`
	CreatorName   string  `json:"creator_name"`
	CreatorEmail  string  `json:"creator_email"`
	VideoCount    int     `json:"video_count"`
	Enrollments   int     `json:"enrollments"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
}

// CourseStats backs the teacher dashboard: one row per owned course.
type CourseStats struct {
	CourseID      uint    `json:"course_id"`
	Title         string  `json:"title"`
	Published     bool    `json:"published"`
	VideoCount    int     `json:"video_count"`
	Enrollments   int     `json:"enrollments"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// Search composes a filtered, sorted view over published courses.
// Store failures degrade to an empty result.
func (s *CatalogService) Search(query, category, level, sortBy string) []CatalogEntry {
	dbQuery := s.DB.Model(&models.Course{}).Where("published = ?", true)

	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		dbQuery = dbQuery.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ? OR LOWER(creator_name) LIKE ?",
			like, like, like, like,
		)
	}
	if category != "" && category != "all" {
		dbQuery = dbQuery.Where("category = ?", category)
	}
	if level != "" && level != "all" {
		dbQuery = dbQuery.Where("level = ?", level)
	}

	switch sortBy {
	case CatalogSortTitle:
		dbQuery = dbQuery.Order("title ASC")
	default:
		dbQuery = dbQuery.Order("created_at DESC")
	}

	var courses []models.Course
	if err := dbQuery.Find(&courses).Error; err != nil {
		s.Log.Printf("catalog search failed: %v", err)
		return nil
	}

	entries := make([]CatalogEntry, 0, len(courses))
	for _, course := range courses {
		entry := CatalogEntry{
			ID:           course.ID,
			Title:        course.Title,
			Description:  course.Description,
			Category:     course.Category,
			Level:        course.Level,
			Thumbnail:    course.Thumbnail,
			CreatorName:  course.CreatorName,
			CreatorEmail: course.CreatorEmail,
		}
		entry.VideoCount = int(s.count(&models.Video{}, "course_id = ?", course.ID))
		entry.Enrollments = int(s.count(&models.Enrollment{}, "course_id = ?", course.ID))
		entry.RatingCount = int(s.count(&models.Rating{}, "course_id = ? AND video_id = ''", course.ID))
		entry.AverageRating = s.Reviews.AverageRating(course.ID, "")
		entries = append(entries, entry)
	}

	if sortBy == CatalogSortRating {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].AverageRating > entries[j].AverageRating
		})
	}

	return entries
}

// TeacherStats aggregates enrollment, rating and review figures for
// every course a teacher owns, published or not.
func (s *CatalogService) TeacherStats(creatorEmail string) []CourseStats {
	var courses []models.Course
	if err := s.DB.Where("creator_email = ?", creatorEmail).Order("created_at DESC").Find(&courses).Error; err != nil {
		s.Log.Printf("teacher stats failed for %s: %v", creatorEmail, err)
		return nil
	}

	stats := make([]CourseStats, 0, len(courses))
	for _, course := range courses {
		stats = append(stats, CourseStats{
			CourseID:      course.ID,
			Title:         course.Title,
			Published:     course.Published,
			VideoCount:    int(s.count(&models.Video{}, "course_id = ?", course.ID)),
			Enrollments:   int(s.count(&models.Enrollment{}, "course_id = ?", course.ID)),
			AverageRating: s.Reviews.AverageRating(course.ID, ""),
			ReviewCount:   int(s.count(&models.Review{}, "course_id = ?", course.ID)),
		})
	}
	return stats
}

func (s *CatalogService) count(model interface{}, query string, args ...interface{}) int64 {
	var count int64
	s.DB.Model(model).Where(query, args...).Count(&count)
	return count
}
