package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/filter"
	"github.com/fastygo/taskflow/repository"
)

const taskColumns = `id, title, description, is_complete, due_date, assigned_to, created_by, created_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, q repository.TaskQuery) ([]domain.Task, error) {
	query, args, err := buildTaskListQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, title, description, is_complete, due_date, assigned_to, created_by, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
	RETURNING created_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.IsComplete,
		nullDue(task.DueDate),
		nullString(task.AssignedTo),
		task.CreatedBy,
		nullTime(task.CreatedAt),
	).Scan(&task.CreatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) SetComplete(ctx context.Context, id string, complete bool) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}
	query := `UPDATE tasks SET is_complete = $2 WHERE id = $1 RETURNING ` + taskColumns
	row := r.pool.QueryRow(ctx, query, id, complete)
	return scanTask(row)
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrTaskNotFound
	}
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// buildTaskListQuery translates a filter kind into SQL predicates equivalent to filter.Matches.
func buildTaskListQuery(q repository.TaskQuery) (string, []interface{}, error) {
	kind := q.Filter
	if kind == "" {
		kind = filter.All
	}
	if !kind.Valid() {
		return "", nil, domain.ErrInvalidFilter
	}

	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}
	start, end := filter.Bounds(now)

	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch kind {
	case filter.AssignedToMe:
		where = append(where, "assigned_to = "+arg(q.UserID))
	case filter.CreatedByMe:
		where = append(where, "created_by = "+arg(q.UserID))
	case filter.Overdue:
		where = append(where,
			"assigned_to = "+arg(q.UserID),
			"due_date < "+arg(start),
			"is_complete = FALSE",
		)
	case filter.DueToday:
		where = append(where,
			"due_date >= "+arg(start),
			"due_date < "+arg(end),
		)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY due_date ASC, created_at ASC")
	b.WriteString(" LIMIT " + arg(clampLimit(q.Limit)))
	b.WriteString(" OFFSET " + arg(clampOffset(q.Offset)))

	return b.String(), args, nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		due        *time.Time
		assignedTo *string
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.IsComplete,
		&due,
		&assignedTo,
		&task.CreatedBy,
		&task.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.DueDate = due
	if assignedTo != nil {
		task.AssignedTo = *assignedTo
	}

	return &task, nil
}
