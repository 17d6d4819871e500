package handler

import "time"

// --- Requests ---

type createUserRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=50" example:"jdoe"`
	Email    string   `json:"email" validate:"required,max=50,email" example:"jdoe@example.com"`
	Password string   `json:"password" validate:"required,min=6,max=120" example:"s3cretpass"`
	Roles    []string `json:"roles" example:"ROLE_USER"`
}

// updateUserRequest leaves password and roles unchanged when they are empty.
type updateUserRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=50" example:"jdoe"`
	Email    string   `json:"email" validate:"required,max=50,email" example:"jdoe@example.com"`
	Password string   `json:"password" validate:"omitempty,min=6,max=120" example:""`
	Roles    []string `json:"roles"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required" example:"admin"`
	Password string `json:"password" validate:"required" example:"s3cretpass"`
}

// --- Responses ---

type userResponse struct {
	ID        int64     `json:"id" example:"1"`
	Username  string    `json:"username" example:"jdoe"`
	Email     string    `json:"email" example:"jdoe@example.com"`
	Roles     []string  `json:"roles" example:"ROLE_USER"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type userPageResponse struct {
	Content       []userResponse `json:"content"`
	Page          int            `json:"page" example:"0"`
	Size          int            `json:"size" example:"10"`
	TotalElements int64          `json:"totalElements" example:"25"`
	TotalPages    int            `json:"totalPages" example:"3"`
	First         bool           `json:"first" example:"true"`
	Last          bool           `json:"last" example:"false"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType" example:"Bearer"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}
