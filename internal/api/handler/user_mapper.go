package handler

import (
	"github.com/userhub/user-service/internal/core/ports"
)

func toUserInput(username, email, password string, roles []string) ports.UserInput {
	return ports.UserInput{
		Username: username,
		Email:    email,
		Password: password,
		Roles:    roles,
	}
}

func toUserResponse(r *ports.UserResult) userResponse {
	roles := r.Roles
	if roles == nil {
		roles = []string{}
	}
	return userResponse{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		Roles:     roles,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toUserPageResponse(p *ports.UserPage) userPageResponse {
	content := make([]userResponse, len(p.Items))
	for i := range p.Items {
		content[i] = toUserResponse(&p.Items[i])
	}
	return userPageResponse{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.Total,
		TotalPages:    p.TotalPages,
		First:         p.Page == 0,
		Last:          p.Page >= p.TotalPages-1,
	}
}
