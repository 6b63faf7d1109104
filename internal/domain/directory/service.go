package directory

import (
	"context"

	"hrms/internal/platform/querier"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Service) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := s.Store.DB.Query(ctx, `
    SELECT id, name, created_at
    FROM organizations
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Organization
	for rows.Next() {
		var org Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, org)
	}
	return out, rows.Err()
}

func (s *Service) ListEmployees(ctx context.Context, organizationID int64, activeOnly bool) ([]Employee, error) {
	query := `
    SELECT id, organization_id, name, code, status, created_at
    FROM employees
    WHERE organization_id = $1
  `
	args := []any{organizationID}
	if activeOnly {
		query += " AND status = $2"
		args = append(args, EmployeeStatusActive)
	}
	query += " ORDER BY name"

	rows, err := s.Store.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(&emp.ID, &emp.OrganizationID, &emp.Name, &emp.Code, &emp.Status, &emp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Service) CreateEmployee(ctx context.Context, organizationID int64, name, code, status string) (int64, error) {
	if status == "" {
		status = EmployeeStatusActive
	}
	var id int64
	if err := s.Store.DB.QueryRow(ctx, `
    INSERT INTO employees (organization_id, name, code, status)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, organizationID, name, code, status).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Service) SetEmployeeStatus(ctx context.Context, organizationID, employeeID int64, status string) error {
	_, err := s.Store.DB.Exec(ctx, `
    UPDATE employees SET status = $1 WHERE organization_id = $2 AND id = $3
  `, status, organizationID, employeeID)
	return err
}

func (s *Service) ListShifts(ctx context.Context, organizationID int64) ([]Shift, error) {
	rows, err := s.Store.DB.Query(ctx, `
    SELECT id, organization_id, name, start_time, end_time, created_at
    FROM shifts
    WHERE organization_id = $1
    ORDER BY start_time, name
  `, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shift
	for rows.Next() {
		var shift Shift
		if err := rows.Scan(&shift.ID, &shift.OrganizationID, &shift.Name, &shift.StartTime, &shift.EndTime, &shift.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, shift)
	}
	return out, rows.Err()
}

func (s *Service) CreateShift(ctx context.Context, organizationID int64, name, startTime, endTime string) (int64, error) {
	var id int64
	if err := s.Store.DB.QueryRow(ctx, `
    INSERT INTO shifts (organization_id, name, start_time, end_time)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, organizationID, name, startTime, endTime).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Service) ShiftExists(ctx context.Context, organizationID, shiftID int64) (bool, error) {
	var count int
	err := s.Store.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM shifts WHERE organization_id = $1 AND id = $2
  `, organizationID, shiftID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ActiveEmployeeIDs filters the requested ids down to employees that exist in
// the organization with Active status, preserving ascending order.
func (s *Service) ActiveEmployeeIDs(ctx context.Context, organizationID int64, ids []int64) ([]int64, error) {
	rows, err := s.Store.DB.Query(ctx, `
    SELECT id
    FROM employees
    WHERE organization_id = $1 AND status = $2 AND id = ANY($3)
    ORDER BY id
  `, organizationID, EmployeeStatusActive, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// EmployeeNames resolves display names for the given ids.
func (s *Service) EmployeeNames(ctx context.Context, organizationID int64, ids []int64) (map[int64]string, error) {
	rows, err := s.Store.DB.Query(ctx, `
    SELECT id, name FROM employees WHERE organization_id = $1 AND id = ANY($2)
  `, organizationID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]string, len(ids))
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

func (s *Service) ShiftByID(ctx context.Context, organizationID, shiftID int64) (Shift, error) {
	var shift Shift
	err := s.Store.DB.QueryRow(ctx, `
    SELECT id, organization_id, name, start_time, end_time, created_at
    FROM shifts
    WHERE organization_id = $1 AND id = $2
  `, organizationID, shiftID).Scan(&shift.ID, &shift.OrganizationID, &shift.Name, &shift.StartTime, &shift.EndTime, &shift.CreatedAt)
	return shift, err
}
