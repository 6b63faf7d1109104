package roster

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"hrms/internal/domain/directory"
)

type Service struct {
	Store     *Store
	Directory *directory.Service

	mu          sync.Mutex
	periodLocks map[int64]*sync.Mutex
}

func NewService(store *Store, dir *directory.Service) *Service {
	return &Service{Store: store, Directory: dir, periodLocks: make(map[int64]*sync.Mutex)}
}

// lockPeriod serializes mutating operations on one period id within this
// process. The database stays the source of truth; this only stops a client
// racing itself, e.g. a double-submitted bulk assign.
func (s *Service) lockPeriod(periodID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.periodLocks[periodID]
	if !ok {
		lock = &sync.Mutex{}
		s.periodLocks[periodID] = lock
	}
	return lock
}

const periodColumns = `
    p.id, p.organization_id, p.period_type, p.start_date, p.end_date, p.status, p.created_by, p.created_at,
    (SELECT COUNT(1) FROM rosters r WHERE r.roster_period_id = p.id)
`

func scanPeriod(row pgx.Row) (RosterPeriod, error) {
	var p RosterPeriod
	err := row.Scan(&p.ID, &p.OrganizationID, &p.Type, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.RostersCount)
	return p, err
}

func (s *Service) ListPeriods(ctx context.Context, organizationID int64) ([]RosterPeriod, error) {
	rows, err := s.Store.DB.Query(ctx, `
    SELECT `+periodColumns+`
    FROM roster_periods p
    WHERE p.organization_id = $1
    ORDER BY p.start_date DESC, p.id DESC
  `, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RosterPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Service) GetPeriod(ctx context.Context, organizationID, periodID int64) (RosterPeriod, error) {
	p, err := scanPeriod(s.Store.DB.QueryRow(ctx, `
    SELECT `+periodColumns+`
    FROM roster_periods p
    WHERE p.organization_id = $1 AND p.id = $2
  `, organizationID, periodID))
	if errors.Is(err, pgx.ErrNoRows) {
		return RosterPeriod{}, ErrPeriodNotFound
	}
	return p, err
}

func (s *Service) CreatePeriod(ctx context.Context, organizationID int64, periodType string, startDate time.Time, createdBy int64) (RosterPeriod, error) {
	endDate, err := ComputeEndDate(startDate, periodType)
	if err != nil {
		return RosterPeriod{}, err
	}

	period := RosterPeriod{
		OrganizationID: organizationID,
		Type:           periodType,
		StartDate:      startDate,
		EndDate:        endDate,
		Status:         StatusDraft,
		CreatedBy:      createdBy,
	}
	if err := s.Store.DB.QueryRow(ctx, `
    INSERT INTO roster_periods (organization_id, period_type, start_date, end_date, status, created_by)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id, created_at
  `, organizationID, periodType, startDate, endDate, StatusDraft, createdBy).Scan(&period.ID, &period.CreatedAt); err != nil {
		return RosterPeriod{}, err
	}
	return period, nil
}

func (s *Service) PublishPeriod(ctx context.Context, organizationID, periodID int64) (RosterPeriod, error) {
	return s.transition(ctx, organizationID, periodID, ActionPublish)
}

func (s *Service) LockPeriod(ctx context.Context, organizationID, periodID int64) (RosterPeriod, error) {
	return s.transition(ctx, organizationID, periodID, ActionLock)
}

// transition applies a status-moving action. The UPDATE is conditional on the
// status the transition requires, so a concurrent writer cannot make the same
// move twice.
func (s *Service) transition(ctx context.Context, organizationID, periodID int64, action string) (RosterPeriod, error) {
	lock := s.lockPeriod(periodID)
	lock.Lock()
	defer lock.Unlock()

	period, err := s.GetPeriod(ctx, organizationID, periodID)
	if err != nil {
		return RosterPeriod{}, err
	}
	updated, err := ApplyTransition(period, action)
	if err != nil {
		return RosterPeriod{}, err
	}

	tag, err := s.Store.DB.Exec(ctx, `
    UPDATE roster_periods SET status = $1
    WHERE organization_id = $2 AND id = $3 AND status = $4
  `, updated.Status, organizationID, periodID, period.Status)
	if err != nil {
		return RosterPeriod{}, err
	}
	if tag.RowsAffected() == 0 {
		fresh, ferr := s.GetPeriod(ctx, organizationID, periodID)
		if ferr != nil {
			return RosterPeriod{}, ferr
		}
		return RosterPeriod{}, &IllegalTransitionError{Action: action, Current: fresh.Status, Required: period.Status}
	}
	return updated, nil
}

// DeletePeriod removes a draft period and its roster rows in one transaction.
func (s *Service) DeletePeriod(ctx context.Context, organizationID, periodID int64) error {
	lock := s.lockPeriod(periodID)
	lock.Lock()
	defer lock.Unlock()

	period, err := s.GetPeriod(ctx, organizationID, periodID)
	if err != nil {
		return err
	}
	if _, err := ApplyTransition(period, ActionDelete); err != nil {
		return err
	}

	tx, err := s.Store.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    DELETE FROM rosters WHERE roster_period_id = $1
  `, periodID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
    DELETE FROM roster_periods WHERE organization_id = $1 AND id = $2 AND status = $3
  `, organizationID, periodID, StatusDraft)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		fresh, ferr := s.GetPeriod(ctx, organizationID, periodID)
		if ferr != nil {
			return ferr
		}
		return &IllegalTransitionError{Action: ActionDelete, Current: fresh.Status, Required: StatusDraft}
	}
	return tx.Commit(ctx)
}

// BulkAssign expands an employee set and a shift over every day of a draft
// period. Requested employees that are unknown or not Active are skipped and
// reported, never silently dropped. The returned rosters count is re-read
// from the store after the write; the planner's estimate is never trusted.
func (s *Service) BulkAssign(ctx context.Context, organizationID, periodID int64, employeeIDs []int64, shiftID int64, createdBy int64) (BulkAssignResult, error) {
	lock := s.lockPeriod(periodID)
	lock.Lock()
	defer lock.Unlock()

	period, err := s.GetPeriod(ctx, organizationID, periodID)
	if err != nil {
		return BulkAssignResult{}, err
	}
	plan, err := PlanBulkAssignment(period, employeeIDs, shiftID, createdBy)
	if err != nil {
		return BulkAssignResult{}, err
	}

	ok, err := s.Directory.ShiftExists(ctx, organizationID, shiftID)
	if err != nil {
		return BulkAssignResult{}, err
	}
	if !ok {
		return BulkAssignResult{}, &ValidationError{Issues: []ValidationIssue{{Field: "shiftId", Reason: "shift not found"}}}
	}

	active, err := s.Directory.ActiveEmployeeIDs(ctx, organizationID, plan.Request.EmployeeIDs)
	if err != nil {
		return BulkAssignResult{}, err
	}
	if len(active) == 0 {
		return BulkAssignResult{}, &ValidationError{Issues: []ValidationIssue{{Field: "employeeIds", Reason: "no active employees in selection"}}}
	}
	skipped := missingIDs(plan.Request.EmployeeIDs, active)

	batch := &pgx.Batch{}
	for _, employeeID := range active {
		for date := period.StartDate; !date.After(period.EndDate); date = date.AddDate(0, 0, 1) {
			batch.Queue(`
        INSERT INTO rosters (roster_period_id, organization_id, employee_id, shift_id, work_date, created_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (roster_period_id, employee_id, work_date) DO NOTHING
      `, periodID, organizationID, employeeID, shiftID, date, createdBy)
		}
	}

	results := s.Store.DB.SendBatch(ctx, batch)
	created := 0
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return BulkAssignResult{}, err
		}
		created += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return BulkAssignResult{}, err
	}

	var count int
	if err := s.Store.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM rosters WHERE roster_period_id = $1
  `, periodID).Scan(&count); err != nil {
		return BulkAssignResult{}, err
	}

	return BulkAssignResult{Created: created, SkippedEmployeeIDs: skipped, RostersCount: count}, nil
}

func (s *Service) ListRosters(ctx context.Context, organizationID, periodID int64) ([]RosterAssignment, error) {
	if _, err := s.GetPeriod(ctx, organizationID, periodID); err != nil {
		return nil, err
	}

	rows, err := s.Store.DB.Query(ctx, `
    SELECT id, roster_period_id, employee_id, shift_id, work_date, created_by, created_at
    FROM rosters
    WHERE roster_period_id = $1
    ORDER BY work_date, employee_id
  `, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RosterAssignment
	for rows.Next() {
		var a RosterAssignment
		if err := rows.Scan(&a.ID, &a.RosterPeriodID, &a.EmployeeID, &a.ShiftID, &a.WorkDate, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// missingIDs returns the requested ids absent from kept, preserving the
// requested (sorted) order.
func missingIDs(requested, kept []int64) []int64 {
	keep := make(map[int64]struct{}, len(kept))
	for _, id := range kept {
		keep[id] = struct{}{}
	}
	var out []int64
	for _, id := range requested {
		if _, ok := keep[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
