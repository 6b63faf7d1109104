package auth

import (
	"context"
	"time"

	"hrms/internal/platform/querier"
)

type AuthUser struct {
	ID             int64
	OrganizationID int64
	RoleID         int64
	RoleName       string
	Name           string
	Email          string
	PasswordHash   string
	Status         string
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.organization_id, u.role_id, r.name, u.name, u.email, u.password_hash, u.status
    FROM users u
    JOIN roles r ON u.role_id = r.id
    WHERE u.email = $1 AND u.status = 'active'
  `, email).Scan(&out.ID, &out.OrganizationID, &out.RoleID, &out.RoleName, &out.Name, &out.Email, &out.PasswordHash, &out.Status)
	return out, err
}

func (s *Store) UserByID(ctx context.Context, userID int64) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.organization_id, u.role_id, r.name, u.name, u.email, u.status
    FROM users u
    JOIN roles r ON u.role_id = r.id
    WHERE u.id = $1
  `, userID).Scan(&out.ID, &out.OrganizationID, &out.RoleID, &out.RoleName, &out.Name, &out.Email, &out.Status)
	return out, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE users SET last_login_at = $1 WHERE id = $2
  `, at, userID)
	return err
}

func (s *Store) HasPermission(ctx context.Context, roleID int64, permission string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM role_permissions
    WHERE role_id = $1 AND permission = $2
  `, roleID, permission).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
