package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"eschool/internal/apperr"
	"eschool/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// CourseRepository defines the interface for interacting with course data.
// The lesson sequence is stored on the course row; ReplaceLessons is the only
// write path for it and carries the caller's expected version.
type CourseRepository interface {
	CreateCourse(ctx context.Context, c *model.Course) error
	GetCourseByID(ctx context.Context, courseID string) (*model.Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*model.Course, error)
	// UpdateCourseFields writes the patchable fields (name, description,
	// category, price, paid, image). Slug and instructor are immutable here.
	UpdateCourseFields(ctx context.Context, c *model.Course) error
	// ReplaceLessons swaps the whole lesson sequence, conditioned on
	// expectedVersion. Fails with a conflict when the sequence changed since
	// it was read.
	ReplaceLessons(ctx context.Context, c *model.Course, expectedVersion int64) error
	SetPublished(ctx context.Context, courseID string, published bool) error
	ListPublished(ctx context.Context) ([]model.Course, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]model.Course, error)
	ListByIDs(ctx context.Context, courseIDs []string) ([]model.Course, error)
}

type courseRepo struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewCourseRepo creates a new CourseRepository.
func NewCourseRepo(db *sql.DB, logger zerolog.Logger) CourseRepository {
	return &courseRepo{db: db, logger: logger.With().Str("repository", "CourseRepository").Logger()}
}

const courseColumns = `
	id, slug, name, description, category, price, paid, published,
	instructor_id, image, lessons, version, created_at, updated_at
`

func scanCourse(row interface{ Scan(...any) error }) (*model.Course, error) {
	var c model.Course
	var image, lessons []byte
	err := row.Scan(
		&c.ID,
		&c.Slug,
		&c.Name,
		&c.Description,
		&c.Category,
		&c.Price,
		&c.Paid,
		&c.Published,
		&c.InstructorID,
		&image,
		&lessons,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(image) > 0 {
		c.Image = &model.BlobRef{}
		if err := json.Unmarshal(image, c.Image); err != nil {
			return nil, fmt.Errorf("unmarshal course image: %w", err)
		}
	}
	c.Lessons = []model.Lesson{}
	if len(lessons) > 0 {
		if err := json.Unmarshal(lessons, &c.Lessons); err != nil {
			return nil, fmt.Errorf("unmarshal course lessons: %w", err)
		}
	}
	return &c, nil
}

func marshalCourseBlobs(c *model.Course) (image, lessons []byte, err error) {
	if c.Image != nil {
		image, err = json.Marshal(c.Image)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal course image: %w", err)
		}
	}
	if c.Lessons == nil {
		c.Lessons = []model.Lesson{}
	}
	lessons, err = json.Marshal(c.Lessons)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal course lessons: %w", err)
	}
	return image, lessons, nil
}

// CreateCourse inserts a new course and fills in generated fields. A unique
// violation on the slug surfaces as a DuplicateSlug kind.
func (r *courseRepo) CreateCourse(ctx context.Context, c *model.Course) error {
	image, lessons, err := marshalCourseBlobs(c)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO courses (id, slug, name, description, category, price, paid, published, instructor_id, image, lessons)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING version, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		c.ID, c.Slug, c.Name, c.Description, c.Category, c.Price, c.Paid, c.Published, c.InstructorID, image, lessons,
	).Scan(&c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Wrap(apperr.ErrDuplicateSlug, "create course", err)
		}
		return err
	}
	return nil
}

// GetCourseByID retrieves a course by its ID. Returns (nil, nil) when absent.
func (r *courseRepo) GetCourseByID(ctx context.Context, courseID string) (*model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	c, err := scanCourse(r.db.QueryRowContext(ctx, query, courseID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// GetCourseBySlug retrieves a course by its slug. Returns (nil, nil) when absent.
func (r *courseRepo) GetCourseBySlug(ctx context.Context, slug string) (*model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE slug = $1`
	c, err := scanCourse(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// UpdateCourseFields updates the patchable course fields and refreshes
// updated_at on the passed struct.
func (r *courseRepo) UpdateCourseFields(ctx context.Context, c *model.Course) error {
	var image []byte
	var err error
	if c.Image != nil {
		image, err = json.Marshal(c.Image)
		if err != nil {
			return fmt.Errorf("marshal course image: %w", err)
		}
	}
	query := `
		UPDATE courses
		SET name = $1, description = $2, category = $3, price = $4, paid = $5, image = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		c.Name, c.Description, c.Category, c.Price, c.Paid, image, c.ID,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.ErrNotFound, "course not found")
	}
	return err
}

// ReplaceLessons writes the lesson sequence with a compare-and-swap on the
// course version. Zero rows updated on an existing course means a concurrent
// writer won; the caller gets a Conflict.
func (r *courseRepo) ReplaceLessons(ctx context.Context, c *model.Course, expectedVersion int64) error {
	if c.Lessons == nil {
		c.Lessons = []model.Lesson{}
	}
	lessons, err := json.Marshal(c.Lessons)
	if err != nil {
		return fmt.Errorf("marshal course lessons: %w", err)
	}
	query := `
		UPDATE courses
		SET lessons = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
		RETURNING version, updated_at
	`
	err = r.db.QueryRowContext(ctx, query, lessons, c.ID, expectedVersion).
		Scan(&c.Version, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Warn().Str("course_id", c.ID).Int64("expected_version", expectedVersion).
			Msg("Stale lesson write rejected")
		return apperr.New(apperr.ErrConflict, "lesson sequence changed since read")
	}
	return err
}

// SetPublished flips the published flag.
func (r *courseRepo) SetPublished(ctx context.Context, courseID string, published bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE courses SET published = $1, updated_at = NOW() WHERE id = $2`,
		published, courseID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.New(apperr.ErrNotFound, "course not found")
	}
	return nil
}

// ListPublished retrieves all published courses.
func (r *courseRepo) ListPublished(ctx context.Context) ([]model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE published = TRUE ORDER BY created_at DESC`
	return r.listCourses(ctx, query)
}

// ListByInstructor retrieves all courses owned by the given instructor.
func (r *courseRepo) ListByInstructor(ctx context.Context, instructorID string) ([]model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE instructor_id = $1 ORDER BY name ASC`
	return r.listCourses(ctx, query, instructorID)
}

// ListByIDs retrieves the courses matching the given ids.
func (r *courseRepo) ListByIDs(ctx context.Context, courseIDs []string) ([]model.Course, error) {
	if len(courseIDs) == 0 {
		return []model.Course{}, nil
	}
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ANY($1) ORDER BY name ASC`
	return r.listCourses(ctx, query, courseIDs)
}

func (r *courseRepo) listCourses(ctx context.Context, query string, args ...any) ([]model.Course, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}
