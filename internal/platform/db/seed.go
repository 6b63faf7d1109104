package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/auth"
	"hrms/internal/platform/config"
)

// Seed makes the database usable on first boot: the three roles with their
// permission grants, the seed organization, and an HR admin when credentials
// are configured. Every statement is idempotent.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	roleIDs := make(map[string]int64, len(auth.RolePermissions))
	for _, role := range []string{auth.RoleHR, auth.RoleManager, auth.RoleEmployee} {
		var id int64
		if err := pool.QueryRow(ctx, `
      INSERT INTO roles (name) VALUES ($1)
      ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
      RETURNING id
    `, role).Scan(&id); err != nil {
			return err
		}
		roleIDs[role] = id

		for _, permission := range auth.RolePermissions[role] {
			if _, err := pool.Exec(ctx, `
        INSERT INTO role_permissions (role_id, permission)
        VALUES ($1,$2)
        ON CONFLICT DO NOTHING
      `, id, permission); err != nil {
				return err
			}
		}
	}

	var organizationID int64
	if err := pool.QueryRow(ctx, `
    INSERT INTO organizations (name) VALUES ($1)
    ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
  `, cfg.SeedOrganizationName).Scan(&organizationID); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.SeedAdminEmail) == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return nil
	}

	passwordHash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO users (organization_id, role_id, name, email, password_hash, status)
    VALUES ($1,$2,$3,$4,$5,'active')
    ON CONFLICT (email) DO NOTHING
  `, organizationID, roleIDs[auth.RoleHR], cfg.SeedAdminName, cfg.SeedAdminEmail, passwordHash)
	return err
}
