package validators

import (
	"strings"

	dto "taskmaster.com/taskmaster/internal/data_models"
)

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	r.Title = strings.TrimSpace(r.Title)
	return Struct(r)
}

func ValidateUpdateTaskRequest(r *dto.UpdateTaskRequest) error {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
	}
	return Struct(r)
}

func ValidateTaskFilter(f *dto.TaskFilter) error {
	return Struct(f)
}
