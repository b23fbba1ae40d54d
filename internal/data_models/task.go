package dto

type CreateTaskRequest struct {
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description"`
	Priority    string       `json:"priority" validate:"omitempty,taskpriority"`
	Status      string       `json:"status" validate:"omitempty,taskstatus"`
	DueDate     OptionalDate `json:"due_date"`
}

// UpdateTaskRequest is a partial update: nil fields keep their stored value.
type UpdateTaskRequest struct {
	Title       *string      `json:"title" validate:"omitnil,required"`
	Description *string      `json:"description"`
	Priority    *string      `json:"priority" validate:"omitnil,taskpriority"`
	Status      *string      `json:"status" validate:"omitnil,taskstatus"`
	DueDate     OptionalDate `json:"due_date"`
}

type TaskFilter struct {
	Status   string `query:"status" validate:"omitempty,taskstatus"`
	Priority string `query:"priority" validate:"omitempty,taskpriority"`
}
