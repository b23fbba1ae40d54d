package validators

import (
	"strings"

	dto "taskmaster.com/taskmaster/internal/data_models"
)

// ValidateRegisterRequest trims username and email in place before checking them.
func ValidateRegisterRequest(r *dto.RegisterRequest) error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	return Struct(r)
}

func ValidateLoginRequest(r *dto.LoginRequest) error {
	r.Email = strings.TrimSpace(r.Email)
	return Struct(r)
}
