package services

import (
	"skillforge/backend/models"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewFixture(t *testing.T) (*ReviewService, *models.Course) {
	t.Helper()
	db := testDB(t)
	progress := NewProgressService(db, testLogger())
	svc := NewReviewService(db, testLogger(), progress)

	owner := seedUser(t, db, "owner@test.io", models.UserTypeTeacher)
	seedUser(t, db, "teacher2@test.io", models.UserTypeTeacher)
	seedUser(t, db, "student@test.io", models.UserTypeStudent)
	seedUser(t, db, "outsider@test.io", models.UserTypeStudent)

	course := seedCourse(t, db, owner.Email)
	seedVideo(t, db, course.ID, "v1", 0)
	seedEnrollment(t, db, "student@test.io", course.ID)
	return svc, course
}

// watchCourse pushes the student past the review threshold.
func watchCourse(svc *ReviewService, courseID uint, email string) {
	svc.Progress.RecordTick(email, courseID, "v1", 60, 100)
}

func TestCanRate(t *testing.T) {
	svc, course := reviewFixture(t)

	assert.False(t, svc.CanRate(course.ID, "owner@test.io"), "creator cannot rate own course")
	assert.True(t, svc.CanRate(course.ID, "teacher2@test.io"), "other teachers may rate")
	assert.True(t, svc.CanRate(course.ID, "student@test.io"), "enrolled student may rate")
	assert.False(t, svc.CanRate(course.ID, "outsider@test.io"), "unenrolled student may not rate")
	assert.False(t, svc.CanRate(9999, "student@test.io"), "missing course")
}

func TestSetRatingOverwrites(t *testing.T) {
	svc, course := reviewFixture(t)

	require.NoError(t, svc.SetRating(course.ID, "", "student@test.io", 3))
	require.NoError(t, svc.SetRating(course.ID, "", "student@test.io", 5))

	assert.Equal(t, 5.0, svc.UserRating(course.ID, "", "student@test.io"))
	assert.Equal(t, 5.0, svc.AverageRating(course.ID, ""))
}

func TestSetRatingRange(t *testing.T) {
	svc, course := reviewFixture(t)

	var validationErr *ValidationError
	assert.ErrorAs(t, svc.SetRating(course.ID, "", "student@test.io", 5.5), &validationErr)
	assert.ErrorAs(t, svc.SetRating(course.ID, "", "student@test.io", -1), &validationErr)
}

func TestCourseRatingStats(t *testing.T) {
	svc, course := reviewFixture(t)

	for email, value := range map[string]float64{
		"student@test.io":  5,
		"teacher2@test.io": 5,
		"outsider@test.io": 4,
		"owner@test.io":    3,
	} {
		require.NoError(t, svc.SetRating(course.ID, "", email, value))
	}

	stats := svc.CourseRatingStats(course.ID)
	assert.Equal(t, 4, stats.Count)
	assert.InDelta(t, 4.25, stats.Average, 0.0001)

	assert.Equal(t, 2, stats.Distribution[4].Count) // 5 stars
	assert.Equal(t, 1, stats.Distribution[3].Count) // 4 stars
	assert.Equal(t, 1, stats.Distribution[2].Count) // 3 stars
	assert.Equal(t, 50.0, stats.Distribution[4].Percentage)
	assert.Equal(t, 25.0, stats.Distribution[3].Percentage)
	assert.Equal(t, 0.0, stats.Distribution[0].Percentage)
}

func TestCourseRatingStatsClampsLowBin(t *testing.T) {
	svc, course := reviewFixture(t)

	require.NoError(t, svc.SetRating(course.ID, "", "student@test.io", 0.2))

	stats := svc.CourseRatingStats(course.ID)
	assert.Equal(t, 1, stats.Distribution[0].Count, "sub-0.5 ratings land in the 1-star bin")
}

func TestSubmitReviewGates(t *testing.T) {
	svc, course := reviewFixture(t)

	// Not enough watched yet.
	_, err := svc.SubmitReview(course.ID, "student@test.io", "Really solid introduction")
	var eligibilityErr *EligibilityError
	require.ErrorAs(t, err, &eligibilityErr)

	watchCourse(svc, course.ID, "student@test.io")

	// Eligible, but no rating on file.
	_, err = svc.SubmitReview(course.ID, "student@test.io", "Really solid introduction")
	var missingRatingErr *MissingRatingError
	require.ErrorAs(t, err, &missingRatingErr)

	require.NoError(t, svc.SetRating(course.ID, "", "student@test.io", 4.4))

	review, err := svc.SubmitReview(course.ID, "student@test.io", "Really solid introduction")
	require.NoError(t, err)
	assert.Equal(t, 4, review.Stars)
	assert.Equal(t, "Test User", review.UserName)

	// One review per user per course.
	_, err = svc.SubmitReview(course.ID, "student@test.io", "Trying to review again")
	require.ErrorAs(t, err, &eligibilityErr)
}

func TestSubmitReviewValidation(t *testing.T) {
	svc, course := reviewFixture(t)

	var validationErr *ValidationError
	_, err := svc.SubmitReview(course.ID, "student@test.io", "short")
	assert.ErrorAs(t, err, &validationErr)

	// Limits count characters: five Cyrillic letters are ten bytes but
	// still below the minimum.
	_, err = svc.SubmitReview(course.ID, "student@test.io", "отзыв")
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.SubmitReview(course.ID, "student@test.io", strings.Repeat("a", ReviewMaxLength+1))
	assert.ErrorAs(t, err, &validationErr)
}

func TestReviewStarsSnapshot(t *testing.T) {
	svc, course := reviewFixture(t)

	watchCourse(svc, course.ID, "student@test.io")
	require.NoError(t, svc.SetRating(course.ID, "", "student@test.io", 5))

	review, err := svc.SubmitReview(course.ID, "student@test.io", "Excellent course overall")
	require.NoError(t, err)

	// Re-rating does not rewrite the published review.
	require.NoError(t, svc.SetRating(course.ID, "", "student@test.io", 1))

	reviews, err := svc.ListReviews(course.ID, 0)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, review.ID, reviews[0].ID)
	assert.Equal(t, 5, reviews[0].Stars)
}

func TestListReviewsStarFilter(t *testing.T) {
	svc, course := reviewFixture(t)

	watchCourse(svc, course.ID, "student@test.io")
	require.NoError(t, svc.SetRating(course.ID, "", "student@test.io", 5))
	_, err := svc.SubmitReview(course.ID, "student@test.io", "Excellent course overall")
	require.NoError(t, err)

	require.NoError(t, svc.SetRating(course.ID, "", "teacher2@test.io", 3))
	_, err = svc.SubmitReview(course.ID, "teacher2@test.io", "Decent but shallow in places")
	require.NoError(t, err)

	all, err := svc.ListReviews(course.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	fives, err := svc.ListReviews(course.ID, 5)
	require.NoError(t, err)
	require.Len(t, fives, 1)
	assert.Equal(t, "student@test.io", fives[0].UserEmail)
}

func TestEditAndDeleteReviewAuthorOnly(t *testing.T) {
	svc, course := reviewFixture(t)

	watchCourse(svc, course.ID, "student@test.io")
	require.NoError(t, svc.SetRating(course.ID, "", "student@test.io", 4))
	review, err := svc.SubmitReview(course.ID, "student@test.io", "Excellent course overall")
	require.NoError(t, err)

	var eligibilityErr *EligibilityError
	_, err = svc.EditReview(review.ID, "teacher2@test.io", "Hijacked review content")
	require.ErrorAs(t, err, &eligibilityErr)

	edited, err := svc.EditReview(review.ID, "student@test.io", "Excellent course, updated thoughts")
	require.NoError(t, err)
	assert.True(t, edited.Edited)

	require.ErrorAs(t, svc.DeleteReview(review.ID, "teacher2@test.io"), &eligibilityErr)
	require.NoError(t, svc.DeleteReview(review.ID, "student@test.io"))

	reviews, err := svc.ListReviews(course.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestMarkHelpfulToggleAndSwitch(t *testing.T) {
	svc, course := reviewFixture(t)

	watchCourse(svc, course.ID, "student@test.io")
	require.NoError(t, svc.SetRating(course.ID, "", "student@test.io", 4))
	review, err := svc.SubmitReview(course.ID, "student@test.io", "Excellent course overall")
	require.NoError(t, err)

	voted, err := svc.MarkHelpful(review.ID, "teacher2@test.io", models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.HelpfulUp)
	assert.Equal(t, models.VoteUp, svc.UserHelpfulVote(review.ID, "teacher2@test.io"))

	// Same vote again toggles off.
	voted, err = svc.MarkHelpful(review.ID, "teacher2@test.io", models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 0, voted.HelpfulUp)
	assert.Equal(t, "", svc.UserHelpfulVote(review.ID, "teacher2@test.io"))

	// Up then down moves the tally between counters.
	_, err = svc.MarkHelpful(review.ID, "teacher2@test.io", models.VoteUp)
	require.NoError(t, err)
	voted, err = svc.MarkHelpful(review.ID, "teacher2@test.io", models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 0, voted.HelpfulUp)
	assert.Equal(t, 1, voted.HelpfulDown)
}

func TestReplyToReview(t *testing.T) {
	svc, course := reviewFixture(t)

	watchCourse(svc, course.ID, "student@test.io")
	require.NoError(t, svc.SetRating(course.ID, "", "student@test.io", 4))
	review, err := svc.SubmitReview(course.ID, "student@test.io", "Excellent course overall")
	require.NoError(t, err)

	var eligibilityErr *EligibilityError
	_, err = svc.ReplyToReview(review.ID, "outsider@test.io", "Students cannot reply")
	require.ErrorAs(t, err, &eligibilityErr)

	reply, err := svc.ReplyToReview(review.ID, "owner@test.io", "Thanks for the feedback!")
	require.NoError(t, err)
	assert.Equal(t, review.ID, reply.ReviewID)
}

func TestReplyToOwnReviewForbidden(t *testing.T) {
	svc, course := reviewFixture(t)

	require.NoError(t, svc.SetRating(course.ID, "", "teacher2@test.io", 4))
	review, err := svc.SubmitReview(course.ID, "teacher2@test.io", "Good pacing throughout")
	require.NoError(t, err)

	var eligibilityErr *EligibilityError
	_, err = svc.ReplyToReview(review.ID, "teacher2@test.io", "Replying to myself")
	assert.ErrorAs(t, err, &eligibilityErr)
}
