package repository

import (
	"context"
	"database/sql"
)

// EnrollmentRepository owns the set of courses a user has access to.
// Membership is monotonic: this repository only ever adds.
type EnrollmentRepository interface {
	// AddEnrollment grants access with set semantics; re-adding is a no-op.
	AddEnrollment(ctx context.Context, userID, courseID string) error
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
	ListCourseIDs(ctx context.Context, userID string) ([]string, error)
}

type enrollmentRepo struct {
	db *sql.DB
}

// NewEnrollmentRepo creates a new EnrollmentRepository.
func NewEnrollmentRepo(db *sql.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

// AddEnrollment inserts the membership fact, ignoring duplicates.
func (r *enrollmentRepo) AddEnrollment(ctx context.Context, userID, courseID string) error {
	query := `
		INSERT INTO enrollments (user_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, course_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, userID, courseID)
	return err
}

// IsEnrolled reports whether the user has access to the course.
func (r *enrollmentRepo) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListCourseIDs retrieves the ids of all courses the user has access to.
func (r *enrollmentRepo) ListCourseIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT course_id FROM enrollments WHERE user_id = $1 ORDER BY enrolled_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
