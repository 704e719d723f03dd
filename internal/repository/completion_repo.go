package repository

import (
	"context"
	"database/sql"
)

// CompletionRepository tracks the per (user, course) set of completed lesson
// ids. Stale ids from removed lessons are tolerated and never pruned here.
type CompletionRepository interface {
	AddLesson(ctx context.Context, userID, courseID, lessonID string) error
	RemoveLesson(ctx context.Context, userID, courseID, lessonID string) error
	ListLessons(ctx context.Context, userID, courseID string) ([]string, error)
}

type completionRepo struct {
	db *sql.DB
}

// NewCompletionRepo creates a new CompletionRepository.
func NewCompletionRepo(db *sql.DB) CompletionRepository {
	return &completionRepo{db: db}
}

// AddLesson records a completed lesson with set semantics.
func (r *completionRepo) AddLesson(ctx context.Context, userID, courseID, lessonID string) error {
	query := `
		INSERT INTO completions (user_id, course_id, lesson_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, course_id, lesson_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, userID, courseID, lessonID)
	return err
}

// RemoveLesson deletes a completion mark; absent marks are a no-op.
func (r *completionRepo) RemoveLesson(ctx context.Context, userID, courseID, lessonID string) error {
	query := `DELETE FROM completions WHERE user_id = $1 AND course_id = $2 AND lesson_id = $3`
	_, err := r.db.ExecContext(ctx, query, userID, courseID, lessonID)
	return err
}

// ListLessons retrieves the completed lesson ids, ordered for display.
func (r *completionRepo) ListLessons(ctx context.Context, userID, courseID string) ([]string, error) {
	query := `
		SELECT lesson_id FROM completions
		WHERE user_id = $1 AND course_id = $2
		ORDER BY completed_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, courseID)
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
