package dto

type RegisterRequest struct {
	Username string `json:"username" validate:"min=3,max=64"`
	Email    string `json:"email" validate:"max=255,emailshape"`
	Password string `json:"password" validate:"min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
