package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskmaster.com/taskmaster/internal/constants"
	model "taskmaster.com/taskmaster/pkg/models"
)

type TaskRepository struct {
	db *gorm.DB
}

type NewTask struct {
	OwnerID     string
	Title       string
	Description string
	Priority    constants.TaskPriority
	Status      constants.TaskStatus
	DueDate     *time.Time
}

type TaskFilter struct {
	Status   constants.TaskStatus
	Priority constants.TaskPriority
}

// TaskChanges holds the columns an update writes. A nil field is left alone;
// ClearDueDate sets due_date to NULL.
type TaskChanges struct {
	Title        *string
	Description  *string
	Priority     *constants.TaskPriority
	Status       *constants.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
}

func (c TaskChanges) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if c.Title != nil {
		cols["title"] = *c.Title
	}
	if c.Description != nil {
		cols["description"] = *c.Description
	}
	if c.Priority != nil {
		cols["priority"] = *c.Priority
	}
	if c.Status != nil {
		cols["status"] = *c.Status
	}
	if c.ClearDueDate {
		cols["due_date"] = nil
	} else if c.DueDate != nil {
		cols["due_date"] = *c.DueDate
	}
	return cols
}

var priorityOrder = buildPriorityOrder()

func buildPriorityOrder() string {
	var b strings.Builder
	b.WriteString("CASE priority")
	for _, p := range constants.Priorities() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, p.Rank())
	}
	fmt.Fprintf(&b, " ELSE %d END", len(constants.Priorities())+1)
	return b.String()
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) CreateTask(ctx context.Context, in NewTask) (*model.Task, error) {
	task := &model.Task{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		DueDate:     in.DueDate,
	}

	if err := r.db.WithContext(ctx).Omit("Owner").Create(task).Error; err != nil {
		return nil, err
	}

	return task, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, ownerID, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns the owner's tasks by priority rank, then due date with
// undated tasks last.
func (r *TaskRepository) List(ctx context.Context, ownerID string, filter TaskFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	tasks := make([]model.Task, 0)
	err := query.
		Order(priorityOrder).
		Order("due_date IS NULL").
		Order("due_date asc").
		Order("created_at asc").
		Find(&tasks).Error
	return tasks, err
}

// Update applies changes to the task only when ownerID owns it.
func (r *TaskRepository) Update(ctx context.Context, ownerID, id string, changes TaskChanges) (*model.Task, error) {
	cols := changes.columns()
	if len(cols) == 0 {
		return r.FindByID(ctx, ownerID, id)
	}

	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(cols)
	if res.Error != nil {
		return nil, res.Error
	}

	// RowsAffected is not trusted here: MySQL counts only rows whose values
	// changed. The owner-scoped read decides not found.
	return r.FindByID(ctx, ownerID, id)
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
