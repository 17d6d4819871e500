package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
	"github.com/userhub/user-service/internal/infrastructure/config"
)

// seedAdmin creates the configured administrator unless the username exists.
func seedAdmin(ctx context.Context, users ports.UserService, admin config.AdminConfig, log zerolog.Logger) error {
	if !admin.Enabled() {
		return nil
	}

	_, err := users.GetUserByUsername(ctx, admin.Username)
	if err == nil {
		log.Debug().Str("username", admin.Username).Msg("admin account already present")
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("seed admin: %w", err)
	}

	created, err := users.CreateUser(ctx, ports.UserInput{
		Username: admin.Username,
		Email:    admin.Email,
		Password: admin.Password,
		Roles:    []string{domain.RoleAdmin, domain.RoleUser},
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("admin account created")
	return nil
}
