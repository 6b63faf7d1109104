package rosterhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/roster"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *roster.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
	Idem    *middleware.IdempotencyStore
}

func NewHandler(service *roster.Service, perms middleware.PermissionStore, auditSvc *audit.Service, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Idem: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/roster", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermRosterRead, h.Perms)).Get("/periods", h.handleListPeriods)
		r.With(middleware.RequirePermission(auth.PermRosterRead, h.Perms)).Get("/periods/preview", h.handlePreviewPeriod)
		r.With(middleware.RequirePermission(auth.PermRosterWrite, h.Perms)).Post("/periods", h.handleCreatePeriod)
		r.With(middleware.RequirePermission(auth.PermRosterRead, h.Perms)).Get("/periods/{periodID}", h.handleGetPeriod)
		r.With(middleware.RequirePermission(auth.PermRosterPublish, h.Perms)).Post("/periods/{periodID}/publish", h.handlePublishPeriod)
		r.With(middleware.RequirePermission(auth.PermRosterPublish, h.Perms)).Post("/periods/{periodID}/lock", h.handleLockPeriod)
		r.With(middleware.RequirePermission(auth.PermRosterWrite, h.Perms)).Delete("/periods/{periodID}", h.handleDeletePeriod)
		r.With(middleware.RequirePermission(auth.PermRosterWrite, h.Perms)).Post("/periods/{periodID}/bulk-assign", h.handleBulkAssign)
		r.With(middleware.RequirePermission(auth.PermRosterRead, h.Perms)).Get("/periods/{periodID}/rosters", h.handleListRosters)
		r.With(middleware.RequirePermission(auth.PermRosterRead, h.Perms)).Get("/periods/{periodID}/export.pdf", h.handleExportPDF)
	})
}

// periodResponse decorates a period with its display label so clients do not
// re-derive it.
type periodResponse struct {
	roster.RosterPeriod
	DurationLabel string `json:"durationLabel"`
}

func toPeriodResponse(p roster.RosterPeriod) periodResponse {
	return periodResponse{RosterPeriod: p, DurationLabel: roster.DurationLabel(p.Type)}
}

func (h *Handler) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	periods, err := h.Service.ListPeriods(r.Context(), user.OrganizationID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "periods_failed", "failed to list roster periods", middleware.GetRequestID(r.Context()))
		return
	}
	out := make([]periodResponse, 0, len(periods))
	for _, p := range periods {
		out = append(out, toPeriodResponse(p))
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

// handlePreviewPeriod computes the window a period would cover without
// creating anything, so forms can show the derived end date as the user picks
// a start date and type.
func (h *Handler) handlePreviewPeriod(w http.ResponseWriter, r *http.Request) {
	periodType := r.URL.Query().Get("type")

	v := shared.NewValidator()
	v.Required("type", periodType, "type is required")
	v.Enum("type", periodType, roster.PeriodTypes, "must be weekly, fortnightly or monthly")
	startDate, _ := v.Date("startDate", r.URL.Query().Get("startDate"))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	endDate, err := roster.ComputeEndDate(startDate, periodType)
	if err != nil {
		h.failRoster(w, r, err, "period_preview_failed", "failed to compute period preview")
		return
	}
	api.Success(w, map[string]any{
		"type":          periodType,
		"startDate":     startDate,
		"endDate":       endDate,
		"durationLabel": roster.DurationLabel(periodType),
		"nominalDays":   roster.NominalDays(periodType),
	}, middleware.GetRequestID(r.Context()))
}

type createPeriodPayload struct {
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
}

func (h *Handler) handleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createPeriodPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("type", payload.Type, "type is required")
	v.Enum("type", payload.Type, roster.PeriodTypes, "must be weekly, fortnightly or monthly")
	startDate, _ := v.Date("startDate", payload.StartDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	period, err := h.Service.CreatePeriod(r.Context(), user.OrganizationID, payload.Type, startDate, user.UserID)
	if err != nil {
		h.failRoster(w, r, err, "period_create_failed", "failed to create roster period")
		return
	}
	if err := h.Audit.Record(r.Context(), user.OrganizationID, user.UserID, "roster.period.create", "roster_period", strconv.FormatInt(period.ID, 10), middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, period); err != nil {
		slog.Warn("audit roster.period.create failed", "err", err)
	}
	api.Created(w, toPeriodResponse(period), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	user, periodID, ok := h.userAndPeriodID(w, r)
	if !ok {
		return
	}
	period, err := h.Service.GetPeriod(r.Context(), user.OrganizationID, periodID)
	if err != nil {
		h.failRoster(w, r, err, "period_get_failed", "failed to load roster period")
		return
	}
	api.Success(w, toPeriodResponse(period), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePublishPeriod(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "roster.period.publish", h.Service.PublishPeriod)
}

func (h *Handler) handleLockPeriod(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "roster.period.lock", h.Service.LockPeriod)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, action string, apply func(ctx context.Context, organizationID, periodID int64) (roster.RosterPeriod, error)) {
	user, periodID, ok := h.userAndPeriodID(w, r)
	if !ok {
		return
	}
	period, err := apply(r.Context(), user.OrganizationID, periodID)
	if err != nil {
		h.failRoster(w, r, err, "period_transition_failed", "failed to update roster period")
		return
	}
	if err := h.Audit.Record(r.Context(), user.OrganizationID, user.UserID, action, "roster_period", strconv.FormatInt(periodID, 10), middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"status": period.Status}); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
	api.Success(w, toPeriodResponse(period), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeletePeriod(w http.ResponseWriter, r *http.Request) {
	user, periodID, ok := h.userAndPeriodID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeletePeriod(r.Context(), user.OrganizationID, periodID); err != nil {
		h.failRoster(w, r, err, "period_delete_failed", "failed to delete roster period")
		return
	}
	if err := h.Audit.Record(r.Context(), user.OrganizationID, user.UserID, "roster.period.delete", "roster_period", strconv.FormatInt(periodID, 10), middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit roster.period.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

type bulkAssignPayload struct {
	EmployeeIDs []int64 `json:"employeeIds"`
	ShiftID     int64   `json:"shiftId"`
	DryRun      bool    `json:"dryRun"`
}

func (h *Handler) handleBulkAssign(w http.ResponseWriter, r *http.Request) {
	user, periodID, ok := h.userAndPeriodID(w, r)
	if !ok {
		return
	}

	var payload bulkAssignPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	// A dry run returns the plan and estimate without touching the store, so
	// the client can render a confirmation preview.
	if payload.DryRun {
		period, err := h.Service.GetPeriod(r.Context(), user.OrganizationID, periodID)
		if err != nil {
			h.failRoster(w, r, err, "bulk_assign_failed", "failed to plan bulk assignment")
			return
		}
		plan, err := roster.PlanBulkAssignment(period, payload.EmployeeIDs, payload.ShiftID, user.UserID)
		if err != nil {
			h.failRoster(w, r, err, "bulk_assign_failed", "failed to plan bulk assignment")
			return
		}
		api.Success(w, plan, middleware.GetRequestID(r.Context()))
		return
	}

	endpoint := fmt.Sprintf("roster.bulk_assign.%d", periodID)
	body, _ := json.Marshal(payload)
	requestHash := middleware.RequestHash(body)
	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey != "" {
		stored, found, err := h.Idem.Check(r.Context(), user.OrganizationID, user.UserID, endpoint, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "err", err)
		}
		if found {
			api.Success(w, json.RawMessage(stored), middleware.GetRequestID(r.Context()))
			return
		}
	}

	result, err := h.Service.BulkAssign(r.Context(), user.OrganizationID, periodID, payload.EmployeeIDs, payload.ShiftID, user.UserID)
	if err != nil {
		h.failRoster(w, r, err, "bulk_assign_failed", "failed to bulk assign rosters")
		return
	}

	if idempotencyKey != "" {
		response, _ := json.Marshal(result)
		if err := h.Idem.Save(r.Context(), user.OrganizationID, user.UserID, endpoint, idempotencyKey, requestHash, response); err != nil {
			slog.Warn("idempotency save failed", "err", err)
		}
	}
	if err := h.Audit.Record(r.Context(), user.OrganizationID, user.UserID, "roster.bulk_assign", "roster_period", strconv.FormatInt(periodID, 10), middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, result); err != nil {
		slog.Warn("audit roster.bulk_assign failed", "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRosters(w http.ResponseWriter, r *http.Request) {
	user, periodID, ok := h.userAndPeriodID(w, r)
	if !ok {
		return
	}
	assignments, err := h.Service.ListRosters(r.Context(), user.OrganizationID, periodID)
	if err != nil {
		h.failRoster(w, r, err, "rosters_failed", "failed to list rosters")
		return
	}
	api.Success(w, assignments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	user, periodID, ok := h.userAndPeriodID(w, r)
	if !ok {
		return
	}
	payload, err := h.Service.ExportPeriodPDF(r.Context(), user.OrganizationID, periodID)
	if err != nil {
		h.failRoster(w, r, err, "export_failed", "failed to export roster period")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=roster-period-%d.pdf", periodID))
	_, _ = w.Write(payload)
}

func (h *Handler) userAndPeriodID(w http.ResponseWriter, r *http.Request) (auth.UserContext, int64, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, 0, false
	}
	periodID, err := strconv.ParseInt(chi.URLParam(r, "periodID"), 10, 64)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "period id must be an integer", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, 0, false
	}
	return user, periodID, true
}

// failRoster maps domain errors onto the envelope: complete field lists for
// validation problems, 409 with the precise transition message, 404 for
// unknown periods.
func (h *Handler) failRoster(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())

	var validation *roster.ValidationError
	var illegal *roster.IllegalTransitionError
	var invalid *roster.InvalidInputError
	switch {
	case errors.Is(err, roster.ErrPeriodNotFound):
		api.Fail(w, http.StatusNotFound, "period_not_found", "roster period not found", requestID)
	case errors.As(err, &validation):
		issues := make([]shared.ValidationIssue, 0, len(validation.Issues))
		for _, issue := range validation.Issues {
			issues = append(issues, shared.ValidationIssue{Field: issue.Field, Reason: issue.Reason})
		}
		shared.FailValidation(w, requestID, issues)
	case errors.As(err, &illegal):
		api.Fail(w, http.StatusConflict, "illegal_transition", illegal.Error(), requestID)
	case errors.As(err, &invalid):
		api.Fail(w, http.StatusBadRequest, "invalid_input", invalid.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
