package services

// Error taxonomy shared by the business layer. Controllers map these
// onto HTTP statuses; everything else bubbles up as a store failure.

// ValidationError means the input itself is out of bounds (text
// length, rating range).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// EligibilityError means the caller lacks permission under a business
// rule (not enrolled, not the owner, already reviewed).
type EligibilityError struct {
	Msg string
}

func (e *EligibilityError) Error() string { return e.Msg }

// NotFoundError means the referenced subject is absent.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// ConflictError means a duplicate unique-key write.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// MissingRatingError means a review was submitted before the author
// rated the course; the review's stars are always sourced from a
// pre-existing rating.
type MissingRatingError struct {
	Msg string
}

func (e *MissingRatingError) Error() string { return e.Msg }
