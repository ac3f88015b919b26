package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"worksync/internal/events"
	leaveerrors "worksync/internal/leave/errors"
	"worksync/internal/messaging/kafka"
	"worksync/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	BalanceKeyPrefix = "leaves:balance:"
	balanceCacheTTL  = 10 * time.Minute

	defaultPageSize = 10
	maxPageSize     = 100
)

func GetBalanceKey(employeeID string, year int) string {
	return fmt.Sprintf("%s%s:%d", BalanceKeyPrefix, employeeID, year)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, actor Actor, canReadAll bool, q ListQuery) ([]LeaveResponse, int64, error)
	GetByID(ctx context.Context, actor Actor, id string) (LeaveResponse, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	ChangeStatus(ctx context.Context, actor Actor, id string, req ChangeStatusRequest) (LeaveResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	GetBalance(ctx context.Context, actor Actor) (BalanceResponse, error)
	GetStatusSummary(ctx context.Context, actor Actor, canReadAll bool, employeeID string) (StatusSummary, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	policy Policy
	rdb    *redis.Client
	sf     *singleflight.Group
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, policy Policy, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, policy, rdb, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	policy Policy,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		policy: policy,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		now:    time.Now,
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("employee_id", actor.ID.String()),
		zap.String("leave_type", req.LeaveType),
	)

	now := s.now()
	draft, err := ValidateFields(req.input(), now, s.policy)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ownerID := actor.ID.String()

	if err := qtx.LockEmployee(ctx, ownerID); err != nil {
		s.logger.Error("create leave lock employee failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.checkAvailability(ctx, qtx, ownerID, draft, now.Year(), nil); err != nil {
		s.logger.Warn("create leave rejected", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	l := &Leave{
		ID:          uuid.New(),
		RequestedBy: actor.ID,
		LeaveType:   draft.LeaveType,
		Reason:      draft.Reason,
		StartDate:   draft.StartDate,
		EndDate:     draft.EndDate,
		TotalDays:   draft.Days,
		Status:      StatusPending,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.Int("total_days", l.TotalDays),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, actor Actor, canReadAll bool, q ListQuery) ([]LeaveResponse, int64, error) {
	filter := ListFilter{EmployeeID: actor.ID.String()}
	if canReadAll {
		filter.EmployeeID = q.EmployeeID
		if filter.EmployeeID != "" {
			if _, err := uuid.Parse(filter.EmployeeID); err != nil {
				return nil, 0, leaveerrors.ErrInvalidID
			}
		}
	}

	if q.Status != "" {
		status := Status(strings.ToLower(q.Status))
		if !status.Valid() {
			return nil, 0, leaveerrors.ErrInvalidStatus
		}
		filter.Status = status
	}

	page, pageSize := normalizePage(q.Page, q.PageSize)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	leaves, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get all leaves failed", zap.Error(err))
		return nil, 0, mapRepositoryError(err)
	}

	return mapToListResponse(leaves), total, nil
}

func (s *service) GetByID(ctx context.Context, actor Actor, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidID
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if !Allowed(*l, actor, ActionView) {
		return LeaveResponse{}, leaveerrors.ErrForbidden
	}

	return mapToResponse(*l), nil
}

func (s *service) Update(ctx context.Context, actor Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ownerID := actor.ID.String()

	if err := qtx.LockEmployee(ctx, ownerID); err != nil {
		s.logger.Error("update leave lock employee failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if !Allowed(*l, actor, ActionUpdate) {
		s.logger.Warn("update leave forbidden",
			zap.String("request_id", rid),
			zap.String("leave_id", id),
			zap.String("status", string(l.Status)),
		)
		return LeaveResponse{}, leaveerrors.ErrForbidden
	}

	now := s.now()
	draft, err := ValidateFields(req.merge(*l), now, s.policy)
	if err != nil {
		s.logger.Warn("update leave validation failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.checkAvailability(ctx, qtx, ownerID, draft, now.Year(), &id); err != nil {
		s.logger.Warn("update leave rejected", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	l.LeaveType = draft.LeaveType
	l.Reason = draft.Reason
	l.StartDate = draft.StartDate
	l.EndDate = draft.EndDate
	l.TotalDays = draft.Days

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("update leave persist failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("update leave success", zap.String("request_id", rid), zap.String("leave_id", id))
	return mapToResponse(*l), nil
}

func (s *service) ChangeStatus(ctx context.Context, actor Actor, id string, req ChangeStatusRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("change leave status requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("status", req.Status),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidID
	}

	target := Status(strings.ToLower(strings.TrimSpace(req.Status)))
	action, ok := ActionForStatus(target)
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatus
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("change leave status begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// The owner lock is taken before the row lock, same order as create and update.
	current, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	ownerID := current.RequestedBy.String()
	if err := qtx.LockEmployee(ctx, ownerID); err != nil {
		s.logger.Error("change leave status lock employee failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if !Allowed(*l, actor, action) {
		s.logger.Warn("change leave status forbidden",
			zap.String("request_id", rid),
			zap.String("leave_id", id),
			zap.String("action", string(action)),
			zap.String("status", string(l.Status)),
		)
		return LeaveResponse{}, leaveerrors.ErrForbidden
	}

	// A cancelled or rejected leave holds no days; reopening it claims them again.
	if target == StatusPending && l.Status != StatusPending && l.Status != StatusApproved {
		overlap, err := qtx.HasOverlappingPeriod(ctx, ownerID, l.StartDate, l.EndDate, &id)
		if err != nil {
			return LeaveResponse{}, mapRepositoryError(err)
		}
		if overlap {
			s.logger.Warn("reopen leave overlaps",
				zap.String("request_id", rid),
				zap.String("leave_id", id),
			)
			return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
		}
	}

	now := s.now()
	if target == StatusApproved {
		used, err := s.usedDays(ctx, qtx, ownerID, now.Year(), &id)
		if err != nil {
			return LeaveResponse{}, err
		}
		if err := CheckYearlyCap(s.policy, used, l.TotalDays); err != nil {
			s.logger.Warn("approve leave over yearly cap",
				zap.String("request_id", rid),
				zap.String("leave_id", id),
				zap.Int("used", used),
				zap.Int("requested", l.TotalDays),
			)
			return LeaveResponse{}, err
		}
	}

	previous := l.Status
	l.Status = target
	l.ApprovedBy = nil
	l.ApprovedAt = nil
	l.RejectionReason = nil

	switch target {
	case StatusApproved, StatusRejected:
		approver := actor.ID
		decidedAt := now.UTC()
		l.ApprovedBy = &approver
		l.ApprovedAt = &decidedAt
	}
	if target == StatusRejected && req.RejectionReason != nil {
		if reason := strings.TrimSpace(*req.RejectionReason); reason != "" {
			l.RejectionReason = &reason
		}
	}

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("change leave status persist failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil && (target == StatusApproved || target == StatusRejected) {
		if err := s.enqueueStatusChanged(ctx, tx, *l, actor.ID); err != nil {
			s.logger.Error("change leave status outbox persist failed",
				zap.String("request_id", rid),
				zap.String("leave_id", id),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("change leave status commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	if previous == StatusApproved || target == StatusApproved {
		s.invalidateBalance(ctx, *l)
	}

	s.logger.Info("change leave status success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(target)),
	)
	return mapToResponse(*l), nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id string) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("delete leave requested", zap.String("request_id", rid), zap.String("leave_id", id))

	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.LockEmployee(ctx, actor.ID.String()); err != nil {
		s.logger.Error("delete leave lock employee failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	if !Allowed(*l, actor, ActionDelete) {
		if !l.IsOwnedBy(actor.ID) {
			s.logger.Warn("delete leave forbidden", zap.String("request_id", rid), zap.String("leave_id", id))
			return leaveerrors.ErrForbidden
		}
		if err := CanDelete(l.Status); err != nil {
			s.logger.Warn("delete leave invalid state",
				zap.String("request_id", rid),
				zap.String("leave_id", id),
				zap.String("status", string(l.Status)),
			)
			return err
		}
	}

	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete leave failed", zap.String("request_id", rid), zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	s.logger.Info("delete leave success", zap.String("request_id", rid), zap.String("leave_id", id))
	return nil
}

func (s *service) GetBalance(ctx context.Context, actor Actor) (BalanceResponse, error) {
	employeeID := actor.ID.String()
	year := s.now().Year()
	cacheKey := GetBalanceKey(employeeID, year)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp BalanceResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		from, to := YearBounds(year)
		leaves, err := s.repo.FindApprovedInRange(ctx, employeeID, from, to, nil)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := s.buildBalance(year, UsedDaysByType(leaves, year))

		if s.rdb != nil {
			if payload, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, payload, balanceCacheTTL).Err(); err != nil {
					s.logger.Warn("cache leave balance failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		s.logger.Error("get leave balance failed", zap.String("employee_id", employeeID), zap.Error(err))
		return BalanceResponse{}, err
	}

	return v.(BalanceResponse), nil
}

func (s *service) GetStatusSummary(ctx context.Context, actor Actor, canReadAll bool, employeeID string) (StatusSummary, error) {
	target := actor.ID
	if employeeID != "" {
		parsed, err := uuid.Parse(employeeID)
		if err != nil {
			return StatusSummary{}, leaveerrors.ErrInvalidID
		}
		target = parsed
	}

	selfView := target == actor.ID
	if !selfView {
		if !canReadAll {
			return StatusSummary{}, leaveerrors.ErrForbidden
		}
		exists, err := s.repo.EmployeeExists(ctx, target.String())
		if err != nil {
			return StatusSummary{}, mapRepositoryError(err)
		}
		if !exists {
			return StatusSummary{}, leaveerrors.ErrEmployeeNotFound
		}
	}

	raw, err := s.repo.CountByStatus(ctx, target.String())
	if err != nil {
		s.logger.Error("count leave statuses failed", zap.String("employee_id", target.String()), zap.Error(err))
		return StatusSummary{}, mapRepositoryError(err)
	}

	summary := CountStatuses(raw, selfView)
	summary.EmployeeID = target.String()
	return summary, nil
}

// checkAvailability runs the database stages of the eligibility gate. The
// first failure wins.
func (s *service) checkAvailability(ctx context.Context, qtx Repository, employeeID string, draft Draft, year int, excludeID *string) error {
	overlap, err := qtx.HasOverlappingPeriod(ctx, employeeID, draft.StartDate, draft.EndDate, excludeID)
	if err != nil {
		return mapRepositoryError(err)
	}
	if overlap {
		return leaveerrors.ErrLeaveOverlap
	}

	used, err := s.usedDays(ctx, qtx, employeeID, year, excludeID)
	if err != nil {
		return err
	}
	return CheckYearlyCap(s.policy, used, draft.Days)
}

func (s *service) usedDays(ctx context.Context, qtx Repository, employeeID string, year int, excludeID *string) (int, error) {
	from, to := YearBounds(year)
	approved, err := qtx.FindApprovedInRange(ctx, employeeID, from, to, excludeID)
	if err != nil {
		return 0, mapRepositoryError(err)
	}
	return UsedDays(approved, year), nil
}

func (s *service) enqueueStatusChanged(ctx context.Context, tx *sql.Tx, l Leave, changedBy uuid.UUID) error {
	event := events.LeaveStatusChangedEvent{
		EventType:       events.LeaveStatusChangedType,
		LeaveID:         l.ID.String(),
		EmployeeID:      l.RequestedBy.String(),
		LeaveType:       string(l.LeaveType),
		StartDate:       FormatDate(l.StartDate),
		EndDate:         FormatDate(l.EndDate),
		TotalDays:       l.TotalDays,
		Status:          string(l.Status),
		RejectionReason: l.RejectionReason,
		ChangedBy:       changedBy.String(),
		OccurredAt:      s.now().UTC(),
	}

	outboxEvent, err := kafka.NewOutboxEvent(
		ctx,
		events.LeaveAggregateType,
		l.ID.String(),
		event.EventType,
		events.LeaveStatusChangedTopic,
		event,
	)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, outboxEvent)
}

// invalidateBalance drops every cached yearly balance the leave touches.
func (s *service) invalidateBalance(ctx context.Context, l Leave) {
	if s.rdb == nil {
		return
	}
	for year := l.StartDate.Year(); year <= l.EndDate.Year(); year++ {
		key := GetBalanceKey(l.RequestedBy.String(), year)
		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			s.logger.Error("failed to invalidate leave balance cache",
				zap.Error(err),
				zap.String("key", key),
			)
		}
	}
}

func (s *service) buildBalance(year int, used map[LeaveType]int) BalanceResponse {
	resp := BalanceResponse{
		Year:         year,
		Items:        make([]BalanceItem, 0, len(s.policy.Types())),
		TotalAllowed: s.policy.TotalPerYear(),
	}
	for _, t := range s.policy.Types() {
		entitlement := s.policy.Entitlement(t)
		resp.Items = append(resp.Items, BalanceItem{
			LeaveType:   string(t),
			Entitlement: entitlement,
			Used:        used[t],
			Remaining:   s.policy.Remaining(t, used[t]),
			Usage:       fmt.Sprintf("%d/%d", used[t], entitlement),
		})
		resp.TotalUsed += used[t]
	}
	if r := resp.TotalAllowed - resp.TotalUsed; r > 0 {
		resp.TotalRemaining = r
	}
	return resp
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		LeaveType:       string(l.LeaveType),
		Reason:          l.Reason,
		StartDate:       FormatDate(l.StartDate),
		EndDate:         FormatDate(l.EndDate),
		TotalDays:       l.TotalDays,
		Status:          string(l.Status),
		RequestedBy:     l.RequestedBy.String(),
		RejectionReason: l.RejectionReason,
		CreatedAt:       l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       l.UpdatedAt.Format(time.RFC3339),
	}

	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}

	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
