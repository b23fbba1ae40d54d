package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskmaster.com/taskmaster/internal/constants"
	dto "taskmaster.com/taskmaster/internal/data_models"
	apperrors "taskmaster.com/taskmaster/internal/errors"
	repository "taskmaster.com/taskmaster/internal/repositories"
	"taskmaster.com/taskmaster/internal/validators"
	model "taskmaster.com/taskmaster/pkg/models"
)

type TaskService struct {
	repo   *repository.TaskRepository
	logger *logrus.Logger
}

func NewTaskService(repo *repository.TaskRepository, logger *logrus.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		logger: logger,
	}
}

func (s *TaskService) ListTasks(ctx context.Context, ownerID string, filter dto.TaskFilter) ([]model.Task, error) {
	if err := validators.ValidateTaskFilter(&filter); err != nil {
		return nil, err
	}

	tasks, err := s.repo.List(ctx, ownerID, repository.TaskFilter{
		Status:   constants.TaskStatus(filter.Status),
		Priority: constants.TaskPriority(filter.Priority),
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, ownerID, id string) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, notFound(err, "get task")
	}
	return task, nil
}

func (s *TaskService) CreateTask(ctx context.Context, ownerID string, req *dto.CreateTaskRequest) (*model.Task, error) {
	if err := validators.ValidateCreateTaskRequest(req); err != nil {
		return nil, err
	}

	in := repository.NewTask{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    constants.DefaultPriority,
		Status:      constants.DefaultStatus,
		DueDate:     req.DueDate.Value,
	}
	if req.Priority != "" {
		in.Priority = constants.TaskPriority(req.Priority)
	}
	if req.Status != "" {
		in.Status = constants.TaskStatus(req.Status)
	}

	task, err := s.repo.CreateTask(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": ownerID, "task_id": task.ID}).Info("task created")
	return task, nil
}

// UpdateTask changes only the fields present in req; the rest keep their
// stored values.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, id string, req *dto.UpdateTaskRequest) (*model.Task, error) {
	if err := validators.ValidateUpdateTaskRequest(req); err != nil {
		return nil, err
	}

	changes := repository.TaskChanges{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Priority != nil {
		p := constants.TaskPriority(*req.Priority)
		changes.Priority = &p
	}
	if req.Status != nil {
		st := constants.TaskStatus(*req.Status)
		changes.Status = &st
	}
	if req.DueDate.Set {
		changes.DueDate = req.DueDate.Value
		changes.ClearDueDate = req.DueDate.Value == nil
	}

	task, err := s.repo.Update(ctx, ownerID, id, changes)
	if err != nil {
		return nil, notFound(err, "update task")
	}

	s.logger.WithFields(logrus.Fields{"user_id": ownerID, "task_id": id}).Info("task updated")
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return notFound(err, "delete task")
	}

	s.logger.WithFields(logrus.Fields{"user_id": ownerID, "task_id": id}).Info("task deleted")
	return nil
}

// notFound hides whether a task is missing or owned by someone else.
func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrTaskNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
