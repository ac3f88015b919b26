package leave_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"worksync/internal/employee"
	"worksync/internal/leave"
	"worksync/internal/middleware"
	"worksync/internal/rbac"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// memoryRepo is an in-memory leave.Repository for request-level tests.
type memoryRepo struct {
	mu     sync.Mutex
	leaves map[string]leave.Leave
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{leaves: make(map[string]leave.Leave)}
}

func (r *memoryRepo) WithTx(*sql.Tx) leave.Repository { return r }

func (r *memoryRepo) Create(_ context.Context, l *leave.Leave) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.CreatedAt = fixedNow
	l.UpdatedAt = fixedNow
	r.leaves[l.ID.String()] = *l
	return nil
}

func (r *memoryRepo) FindAll(_ context.Context, f leave.ListFilter) ([]leave.Leave, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.Leave
	for _, l := range r.leaves {
		if f.EmployeeID != "" && l.RequestedBy.String() != f.EmployeeID {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepo) FindByID(_ context.Context, id string) (*leave.Leave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leaves[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r *memoryRepo) FindByIDForUpdate(ctx context.Context, id string) (*leave.Leave, error) {
	return r.FindByID(ctx, id)
}

func (r *memoryRepo) Update(_ context.Context, l *leave.Leave) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaves[l.ID.String()] = *l
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.leaves, id)
	return nil
}

func (r *memoryRepo) LockEmployee(context.Context, string) error { return nil }

func (r *memoryRepo) EmployeeExists(context.Context, string) (bool, error) { return true, nil }

func (r *memoryRepo) HasOverlappingPeriod(_ context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.leaves {
		if excludeID != nil && *excludeID == id {
			continue
		}
		if l.RequestedBy.String() != employeeID {
			continue
		}
		if l.Status != leave.StatusPending && l.Status != leave.StatusApproved {
			continue
		}
		if leave.Overlaps(l.StartDate, l.EndDate, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) FindApprovedInRange(_ context.Context, employeeID string, from, to time.Time, excludeID *string) ([]leave.Leave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.Leave
	for id, l := range r.leaves {
		if excludeID != nil && *excludeID == id {
			continue
		}
		if l.RequestedBy.String() == employeeID && l.Status == leave.StatusApproved && leave.Overlaps(l.StartDate, l.EndDate, from, to) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memoryRepo) CountByStatus(_ context.Context, employeeID string) (map[leave.Status]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[leave.Status]int64)
	for _, l := range r.leaves {
		if l.RequestedBy.String() == employeeID {
			counts[l.Status]++
		}
	}
	return counts, nil
}

type allowAll struct{}

func (allowAll) Enforce(rbac.EnforceRequest) (bool, error) { return true, nil }

type denyAll struct{}

func (denyAll) Enforce(rbac.EnforceRequest) (bool, error) { return false, nil }

// noReadAll grants every permission except read_all.
type noReadAll struct{}

func (noReadAll) Enforce(req rbac.EnforceRequest) (bool, error) {
	return req.Action != rbac.ActionReadAll, nil
}

// headerAuth stands in for the JWT middleware.
func headerAuth(c *gin.Context) {
	c.Set(middleware.ContextEmployeeID, c.GetHeader("X-Employee-ID"))
	role, _ := employee.ParseRole(c.GetHeader("X-Role"))
	c.Set(middleware.ContextRole, role)
	c.Next()
}

type flowEnv struct {
	router  *gin.Engine
	sqlMock sqlmock.Sqlmock
}

func setupFlow(t *testing.T) *flowEnv {
	t.Helper()
	return setupFlowWith(t, allowAll{})
}

func setupFlowWith(t *testing.T, rbacService middleware.RBACService) *flowEnv {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := leave.NewService(db, newMemoryRepo(), leave.DefaultPolicy(), nil)
	leave.SetClock(svc, func() time.Time { return fixedNow })

	router := gin.New()
	api := router.Group("/api/v1", headerAuth)
	leave.RegisterRoutes(api, leave.NewHandler(svc), rbacService)

	return &flowEnv{router: router, sqlMock: sqlMock}
}

func (e *flowEnv) do(method, path, body, employeeID string, role employee.Role) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Employee-ID", employeeID)
	req.Header.Set("X-Role", role.String())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestLeaveFlow_CreateDeleteByOwnerOnly(t *testing.T) {
	env := setupFlow(t)
	employeeA := uuid.NewString()
	employeeB := uuid.NewString()

	body := `{"leaveType":"annual","reason":"Attending my sister's wedding out of town","startDate":"2026-03-17","endDate":"2026-03-24"}`

	expectTx(t, env.sqlMock, true)
	w := env.do(http.MethodPost, "/api/v1/leave-request/addLeave", body, employeeA, employee.RoleEmployee)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data leave.LeaveResponse `json:"data"`
	}
	assert.True(t, mustDecodeEnvelope(t, w.Body.Bytes()).Success)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Data.Status)
	assert.Equal(t, 8, created.Data.TotalDays)

	id := created.Data.ID

	expectTx(t, env.sqlMock, false)
	w = env.do(http.MethodDelete, "/api/v1/leave-request/deleteLeave/"+id, "", employeeB, employee.RoleEmployee)
	assert.Equal(t, http.StatusForbidden, w.Code)

	expectTx(t, env.sqlMock, true)
	w = env.do(http.MethodDelete, "/api/v1/leave-request/deleteLeave/"+id, "", employeeA, employee.RoleEmployee)
	assert.Equal(t, http.StatusOK, w.Code)
	deleted := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, deleted.Success)
	assert.Equal(t, "Leave request deleted successfully.", deleted.Message)

	w = env.do(http.MethodGet, "/api/v1/leave-request/"+id, "", employeeA, employee.RoleEmployee)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.NoError(t, env.sqlMock.ExpectationsWereMet())
}

func TestLeaveFlow_MissingLeaveType(t *testing.T) {
	env := setupFlow(t)

	body := `{"reason":"Attending my sister's wedding out of town","startDate":"2026-03-17","endDate":"2026-03-24"}`
	w := env.do(http.MethodPost, "/api/v1/leave-request/addLeave", body, uuid.NewString(), employee.RoleEmployee)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, resp.Success)
	assert.Equal(t, "Leave request validation failed", resp.Message)
	assert.Contains(t, resp.Errors, "leaveType is required")
}

func TestLeaveFlow_OverlapThenApproveThenBalance(t *testing.T) {
	env := setupFlow(t)
	owner := uuid.NewString()
	manager := uuid.NewString()

	first := `{"leaveType":"sick","reason":"Scheduled minor surgery and recovery","startDate":"2026-03-17","endDate":"2026-03-19"}`
	overlapping := `{"leaveType":"casual","reason":"Helping a friend move apartments","startDate":"2026-03-19","endDate":"2026-03-20"}`

	expectTx(t, env.sqlMock, true)
	w := env.do(http.MethodPost, "/api/v1/leave-request/addLeave", first, owner, employee.RoleEmployee)
	assert.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data leave.LeaveResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	expectTx(t, env.sqlMock, false)
	w = env.do(http.MethodPost, "/api/v1/leave-request/addLeave", overlapping, owner, employee.RoleEmployee)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Leave request overlaps with existing approved or pending leave.", mustDecodeEnvelope(t, w.Body.Bytes()).Message)

	expectTx(t, env.sqlMock, true)
	w = env.do(http.MethodPatch, "/api/v1/leave-request/"+created.Data.ID+"/status", `{"sts":"approved"}`, manager, employee.RoleManager)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/v1/leave-request/balance", "", owner, employee.RoleEmployee)
	assert.Equal(t, http.StatusOK, w.Code)
	var balance struct {
		Data leave.BalanceResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &balance))
	assert.Equal(t, 3, balance.Data.TotalUsed)
	assert.Equal(t, "3/10", balance.Data.Items[0].Usage)

	// approved leave can no longer be deleted
	expectTx(t, env.sqlMock, false)
	w = env.do(http.MethodDelete, "/api/v1/leave-request/deleteLeave/"+created.Data.ID, "", owner, employee.RoleEmployee)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/v1/leave-request/status", "", owner, employee.RoleEmployee)
	assert.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Data leave.StatusSummary `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, int64(1), summary.Data.Counts[leave.StatusApproved])
	assert.Equal(t, 100.0, summary.Data.Percentages[leave.StatusApproved])

	assert.NoError(t, env.sqlMock.ExpectationsWereMet())
}

func TestLeaveFlow_ReopenCannotCreateOverlap(t *testing.T) {
	env := setupFlow(t)
	owner := uuid.NewString()
	body := `{"leaveType":"sick","reason":"Scheduled minor surgery and recovery","startDate":"2026-03-17","endDate":"2026-03-19"}`

	create := func() string {
		expectTx(t, env.sqlMock, true)
		w := env.do(http.MethodPost, "/api/v1/leave-request/addLeave", body, owner, employee.RoleEmployee)
		assert.Equal(t, http.StatusCreated, w.Code)
		var created struct {
			Data leave.LeaveResponse `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		return created.Data.ID
	}

	first := create()

	expectTx(t, env.sqlMock, true)
	w := env.do(http.MethodPatch, "/api/v1/leave-request/"+first+"/status", `{"sts":"cancelled"}`, owner, employee.RoleEmployee)
	assert.Equal(t, http.StatusOK, w.Code)

	second := create()

	expectTx(t, env.sqlMock, false)
	w = env.do(http.MethodPatch, "/api/v1/leave-request/"+first+"/status", `{"sts":"pending"}`, owner, employee.RoleEmployee)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Leave request overlaps with existing approved or pending leave.", mustDecodeEnvelope(t, w.Body.Bytes()).Message)

	w = env.do(http.MethodGet, "/api/v1/leave-request/status", "", owner, employee.RoleEmployee)
	var summary struct {
		Data leave.StatusSummary `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, int64(1), summary.Data.Counts[leave.StatusPending])
	assert.Equal(t, int64(1), summary.Data.Counts[leave.StatusCancelled])

	// once the newer leave is gone the dates are free again
	expectTx(t, env.sqlMock, true)
	w = env.do(http.MethodDelete, "/api/v1/leave-request/deleteLeave/"+second, "", owner, employee.RoleEmployee)
	assert.Equal(t, http.StatusOK, w.Code)

	expectTx(t, env.sqlMock, true)
	w = env.do(http.MethodPatch, "/api/v1/leave-request/"+first+"/status", `{"sts":"pending"}`, owner, employee.RoleEmployee)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, env.sqlMock.ExpectationsWereMet())
}

func TestLeaveFlow_StatusSummaryOfOtherEmployeeNeedsReadAll(t *testing.T) {
	target := uuid.NewString()
	manager := uuid.NewString()

	w := setupFlowWith(t, noReadAll{}).do(http.MethodGet, "/api/v1/leave-request/status/"+target, "", manager, employee.RoleManager)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = setupFlow(t).do(http.MethodGet, "/api/v1/leave-request/status/"+target, "", manager, employee.RoleManager)
	assert.Equal(t, http.StatusOK, w.Code)
}

func setupIdempotentFlow(t *testing.T, rbacService middleware.RBACService) (*flowEnv, redismock.ClientMock) {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	rdb, redisMock := redismock.NewClientMock()

	svc := leave.NewService(db, newMemoryRepo(), leave.DefaultPolicy(), nil)
	leave.SetClock(svc, func() time.Time { return fixedNow })

	router := gin.New()
	api := router.Group("/api/v1", headerAuth)
	leave.RegisterRoutes(api, leave.NewHandlerWithRedis(svc, rdb), rbacService, rdb)

	return &flowEnv{router: router, sqlMock: sqlMock}, redisMock
}

func (e *flowEnv) doWithKey(body, employeeID, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leave-request/addLeave", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Employee-ID", employeeID)
	req.Header.Set("X-Role", employee.RoleEmployee.String())
	req.Header.Set("Idempotency-Key", key)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestLeaveFlow_IdempotentCreateReplaysCreated(t *testing.T) {
	env, redisMock := setupIdempotentFlow(t, allowAll{})
	owner := uuid.NewString()
	cacheKey := "idemp:/api/v1/leave-request/addLeave:" + owner + ":key-1"
	lockKey := cacheKey + ":lock"
	body := `{"leaveType":"sick","reason":"Scheduled minor surgery and recovery","startDate":"2026-03-17","endDate":"2026-03-19"}`

	var cached []byte
	redisMock.ExpectGet(cacheKey).RedisNil()
	redisMock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)
	redisMock.CustomMatch(func(expected, actual []interface{}) error {
		assert.Equal(t, cacheKey, actual[1])
		cached, _ = actual[2].([]byte)
		return nil
	}).ExpectSet(cacheKey, nil, 24*time.Hour).SetVal("OK")
	redisMock.ExpectDel(lockKey).SetVal(1)
	expectTx(t, env.sqlMock, true)

	first := env.doWithKey(body, owner, "key-1")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Contains(t, string(cached), `"status":201`)

	redisMock.ExpectGet(cacheKey).SetVal(string(cached))

	replay := env.doWithKey(body, owner, "key-1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.JSONEq(t, first.Body.String(), replay.Body.String())

	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.NoError(t, env.sqlMock.ExpectationsWereMet())
}

func TestLeaveFlow_ForbiddenCreateLeavesIdempotencyKeyUnlocked(t *testing.T) {
	env, redisMock := setupIdempotentFlow(t, denyAll{})
	owner := uuid.NewString()
	cacheKey := "idemp:/api/v1/leave-request/addLeave:" + owner + ":key-1"

	redisMock.ExpectGet(cacheKey).RedisNil()
	redisMock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(true)

	w := env.doWithKey(`{}`, owner, "key-1")

	assert.Equal(t, http.StatusForbidden, w.Code)
	// redis was never consulted, so nothing holds the lock for a retry
	assert.Error(t, redisMock.ExpectationsWereMet())
}
