package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/period"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/hris-timesheet-go/internal/service/approval")

type ApprovalServiceImpl struct {
	tx database.Transactor
	approval.RequestRepository
	employee.EmployeeRepository
	notifier  notification.Service
	publisher approval.DecisionPublisher
	now       func() time.Time
}

func NewApprovalService(
	tx database.Transactor,
	requestRepo approval.RequestRepository,
	employeeRepo employee.EmployeeRepository,
	notifier notification.Service,
	publisher approval.DecisionPublisher,
	now func() time.Time,
) *ApprovalServiceImpl {
	if now == nil {
		now = time.Now
	}
	return &ApprovalServiceImpl{
		tx:                 tx,
		RequestRepository:  requestRepo,
		EmployeeRepository: employeeRepo,
		notifier:           notifier,
		publisher:          publisher,
		now:                now,
	}
}

// Submit implements approval.ApprovalService.
func (s *ApprovalServiceImpl) Submit(ctx context.Context, req approval.SubmitRequest) (approval.RequestResponse, error) {
	request, err := req.ToRequest()
	if err != nil {
		return approval.RequestResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return approval.RequestResponse{}, employee.ErrEmployeeNotFound
		}
		return approval.RequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	// Approvers come from the employee record only; the requester cannot pick them.
	leaderID := deref(emp.LeaderID)
	managerID := deref(emp.ManagerID)
	if leaderID == "" || managerID == "" {
		return approval.RequestResponse{}, approval.ErrApproverMissing
	}
	if leaderID == emp.ID || managerID == emp.ID {
		return approval.RequestResponse{}, employee.ErrSelfApproval
	}
	if leaderID == managerID {
		return approval.RequestResponse{}, employee.ErrSameApprover
	}
	for _, id := range []string{leaderID, managerID} {
		if _, err := s.EmployeeRepository.GetByID(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return approval.RequestResponse{}, employee.ErrApproverNotFound
			}
			return approval.RequestResponse{}, fmt.Errorf("failed to get approver: %w", err)
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return approval.RequestResponse{}, fmt.Errorf("failed to generate request id: %w", err)
	}
	now := s.now()
	request.ID = id.String()
	request.EmployeeID = emp.ID
	request.LeaderID = leaderID
	request.ManagerID = managerID
	request.Version = 1
	request.CreatedAt = now
	request.UpdatedAt = now

	if err := s.RequestRepository.Create(ctx, request); err != nil {
		return approval.RequestResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	slog.Info("request submitted",
		"request_id", request.ID,
		"employee_id", request.EmployeeID,
		"type", request.Type)

	s.notifyApprovers(ctx, request, emp)

	return approval.ToResponse(request), nil
}

// Decide implements approval.ApprovalService.
func (s *ApprovalServiceImpl) Decide(ctx context.Context, req approval.DecideRequest) (approval.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return approval.RequestResponse{}, err
	}
	actor := approval.Actor(req.Actor)
	if !actor.Valid() {
		return approval.RequestResponse{}, approval.ErrInvalidActor
	}
	approve := *req.Approve

	ctx, span := tracer.Start(ctx, "approval.Decide")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.id", req.RequestID),
		attribute.String("approval.actor", string(actor)),
		attribute.Bool("approval.approve", approve),
	)

	var (
		request   *approval.Request
		decidedAt = s.now()
		first     bool
	)
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		r, err := s.RequestRepository.GetForUpdate(txCtx, req.RequestID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return approval.ErrRequestNotFound
			}
			return fmt.Errorf("failed to load request: %w", err)
		}
		if r.ApproverID(actor) != req.ActorID {
			return approval.ErrForbidden
		}
		if r.Gate(actor) != nil {
			return approval.ErrAlreadyDecided
		}

		ok, err := s.RequestRepository.SetDecision(txCtx, r.ID, actor, approve, decidedAt, r.Version)
		if err != nil {
			return fmt.Errorf("failed to record decision: %w", err)
		}
		if !ok {
			return approval.ErrDecisionConflict
		}

		first = r.LeaderDecision == nil && r.ManagerDecision == nil
		r.SetGate(actor, approve, decidedAt)
		request = r
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return approval.RequestResponse{}, err
	}

	status := request.Status()
	span.SetAttributes(attribute.String("request.status", string(status)))
	slog.Info("request decided",
		"request_id", request.ID,
		"actor", actor,
		"approved", approve,
		"status", status)

	// Side effects run after commit and never undo the decision.
	sideCtx := context.WithoutCancel(ctx)
	s.notifyDecision(sideCtx, request, actor, req.ActorID, approve, first)
	s.publishDecision(sideCtx, request, actor, req.ActorID, approve, decidedAt)

	return approval.ToResponse(request), nil
}

// Get implements approval.ApprovalService. An empty viewerID skips the party check.
func (s *ApprovalServiceImpl) Get(ctx context.Context, requestID, viewerID string) (approval.RequestResponse, error) {
	request, err := s.RequestRepository.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return approval.RequestResponse{}, approval.ErrRequestNotFound
		}
		return approval.RequestResponse{}, fmt.Errorf("failed to get request: %w", err)
	}

	if viewerID != "" &&
		viewerID != request.EmployeeID &&
		viewerID != request.LeaderID &&
		viewerID != request.ManagerID {
		return approval.RequestResponse{}, approval.ErrNotRequestParty
	}

	return approval.ToResponse(request), nil
}

// ListMine implements approval.ApprovalService.
func (s *ApprovalServiceImpl) ListMine(ctx context.Context, employeeID string, filter approval.RequestFilter) (approval.ListRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return approval.ListRequestResponse{}, err
	}
	lf := filter.ToListFilter()
	lf.EmployeeID = &employeeID
	return s.list(ctx, lf)
}

// ListForApprover implements approval.ApprovalService.
func (s *ApprovalServiceImpl) ListForApprover(ctx context.Context, approverID string, actor *approval.Actor, pendingOnly bool, filter approval.RequestFilter) (approval.ListRequestResponse, error) {
	if actor != nil && !actor.Valid() {
		return approval.ListRequestResponse{}, approval.ErrInvalidActor
	}
	if err := filter.Validate(); err != nil {
		return approval.ListRequestResponse{}, err
	}
	lf := filter.ToListFilter()
	lf.ApproverID = &approverID
	lf.Actor = actor
	lf.AwaitingApprover = pendingOnly
	return s.list(ctx, lf)
}

func (s *ApprovalServiceImpl) list(ctx context.Context, lf approval.ListFilter) (approval.ListRequestResponse, error) {
	requests, total, err := s.RequestRepository.List(ctx, lf)
	if err != nil {
		return approval.ListRequestResponse{}, fmt.Errorf("failed to list requests: %w", err)
	}

	items := make([]approval.RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, approval.ToResponse(&requests[i]))
	}

	return approval.ListRequestResponse{
		TotalCount: total,
		Page:       lf.Page,
		Limit:      lf.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(lf.Limit))),
		Requests:   items,
	}, nil
}

// ListOverlapping implements approval.ApprovalService.
func (s *ApprovalServiceImpl) ListOverlapping(ctx context.Context, employeeID string, types []approval.RequestType, r period.Range) ([]approval.Request, error) {
	requests, err := s.RequestRepository.ListOverlapping(ctx, employeeID, types, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list overlapping requests: %w", err)
	}
	return requests, nil
}

// OvertimeClaims implements attendance.RequestSource. Claims on the same date are merged.
func (s *ApprovalServiceImpl) OvertimeClaims(ctx context.Context, employeeID string, r period.Range) (map[time.Time]attendance.OvertimeClaim, error) {
	requests, err := s.ListOverlapping(ctx, employeeID, []approval.RequestType{approval.TypeOvertime}, r)
	if err != nil {
		return nil, err
	}

	claims := make(map[time.Time]attendance.OvertimeClaim)
	for i := range requests {
		req := &requests[i]
		minutes := int(req.Amount.IntPart())
		status := req.Status()

		claim, seen := claims[req.StartDate]
		if !seen {
			claim.Decided = true
		}
		claim.RequestedMinutes += minutes
		claim.Decided = claim.Decided && status != approval.StatusPending
		if status == approval.StatusApproved {
			claim.ApprovedMinutes += minutes
		}
		claims[req.StartDate] = claim
	}
	return claims, nil
}

// ApprovedAbsenceDays implements attendance.RequestSource.
func (s *ApprovalServiceImpl) ApprovedAbsenceDays(ctx context.Context, employeeID string, r period.Range) (map[time.Time]bool, error) {
	requests, err := s.ListOverlapping(ctx, employeeID, []approval.RequestType{approval.TypeLeave, approval.TypeOffset}, r)
	if err != nil {
		return nil, err
	}

	days := make(map[time.Time]bool)
	for i := range requests {
		if requests[i].Status() != approval.StatusApproved {
			continue
		}
		overlap, ok := requests[i].Span().Intersect(r)
		if !ok {
			continue
		}
		for _, d := range overlap.Days() {
			days[d] = true
		}
	}
	return days, nil
}

// RemindPending re-notifies open gates of requests pending longer than minAge,
// at most once per day per request. It returns how many requests were reminded.
func (s *ApprovalServiceImpl) RemindPending(ctx context.Context, minAge time.Duration) (int, error) {
	now := s.now()
	stale, err := s.RequestRepository.ListStalePending(ctx, now.Add(-minAge), now.Add(-24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("failed to list stale requests: %w", err)
	}

	reminded := 0
	for i := range stale {
		req := &stale[i]
		var reqs []notification.CreateNotificationRequest
		for _, actor := range []approval.Actor{approval.ActorLeader, approval.ActorManager} {
			if req.Gate(actor) != nil {
				continue
			}
			reqs = append(reqs, s.requestNotification(req, req.ApproverID(actor), "Reminder: "+req.TypeName()+" request awaiting your decision",
				fmt.Sprintf("A %s request for %s is still waiting for your decision.", req.TypeName(), req.Span())))
		}
		if len(reqs) == 0 {
			continue
		}
		if err := s.notifier.QueueBulkNotification(ctx, reqs); err != nil {
			slog.Warn("failed to queue reminder", "request_id", req.ID, "error", err)
			continue
		}
		if err := s.RequestRepository.MarkReminded(ctx, req.ID, now); err != nil {
			slog.Warn("failed to mark request reminded", "request_id", req.ID, "error", err)
			continue
		}
		reminded++
	}
	return reminded, nil
}

func (s *ApprovalServiceImpl) notifyApprovers(ctx context.Context, req *approval.Request, emp employee.Employee) {
	title := "New " + req.TypeName() + " request"
	message := fmt.Sprintf("%s filed a %s request for %s.", emp.FullName, req.TypeName(), req.Span())

	reqs := []notification.CreateNotificationRequest{
		s.requestNotification(req, req.LeaderID, title, message),
	}
	if req.ManagerID != req.LeaderID {
		reqs = append(reqs, s.requestNotification(req, req.ManagerID, title, message))
	}
	if err := s.notifier.QueueBulkNotification(ctx, reqs); err != nil {
		slog.Warn("failed to queue request notifications", "request_id", req.ID, "error", err)
	}
}

func (s *ApprovalServiceImpl) requestNotification(req *approval.Request, recipientID, title, message string) notification.CreateNotificationRequest {
	sender := req.EmployeeID
	requestID := req.ID
	return notification.CreateNotificationRequest{
		RecipientID: recipientID,
		SenderID:    &sender,
		RequestID:   &requestID,
		Type:        notification.TypeRequest,
		Title:       title,
		Message:     message,
		Data: map[string]interface{}{
			"request_id": req.ID,
			"type":       string(req.Type),
			"start_date": req.StartDate.Format(period.DateLayout),
			"end_date":   req.EndDate.Format(period.DateLayout),
		},
	}
}

// notifyDecision tells the requester once per decision. The first decision reports the
// gate's verdict, the one that closes the request reports the derived status.
func (s *ApprovalServiceImpl) notifyDecision(ctx context.Context, req *approval.Request, actor approval.Actor, actorID string, approve, first bool) {
	verdict := approve
	status := req.Status()
	if !first && status != approval.StatusPending {
		verdict = status == approval.StatusApproved
	}

	nType := notification.TypeDisapproval
	word := "disapproved"
	if verdict {
		nType = notification.TypeApproval
		word = "approved"
	}

	message := fmt.Sprintf("Your %s request for %s was %s by your %s.", req.TypeName(), req.Span(), word, actorLabel(actor))
	if status != approval.StatusPending {
		message = fmt.Sprintf("Your %s request for %s has been %s.", req.TypeName(), req.Span(), word)
	}

	sender := actorID
	requestID := req.ID
	err := s.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: req.EmployeeID,
		SenderID:    &sender,
		RequestID:   &requestID,
		Type:        nType,
		Title:       req.TypeName() + " request " + word,
		Message:     message,
		Data: map[string]interface{}{
			"request_id": req.ID,
			"actor":      string(actor),
			"approved":   approve,
			"status":     string(status),
		},
	})
	if err != nil {
		slog.Warn("failed to queue decision notification", "request_id", req.ID, "error", err)
	}
}

func (s *ApprovalServiceImpl) publishDecision(ctx context.Context, req *approval.Request, actor approval.Actor, actorID string, approve bool, at time.Time) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishDecision(ctx, approval.DecisionEvent{
		RequestID:  req.ID,
		EmployeeID: req.EmployeeID,
		Type:       string(req.Type),
		Actor:      string(actor),
		ActorID:    actorID,
		Approved:   approve,
		Status:     string(req.Status()),
		DecidedAt:  at,
	})
	if err != nil {
		slog.Warn("failed to publish decision event", "request_id", req.ID, "error", err)
	}
}

func actorLabel(a approval.Actor) string {
	if a == approval.ActorLeader {
		return "leader"
	}
	return "manager"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
