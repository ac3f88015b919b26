package rbac

import (
	"context"
	"sync"

	"worksync/internal/employee"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy(ctx context.Context) error
	Enforce(req EnforceRequest) (bool, error)
	PermissionsFor(role employee.Role) (PermissionsResponse, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

// LoadPolicy replaces the in-memory policy with the role_permissions table
// plus the fixed role hierarchy.
func (s *service) LoadPolicy(ctx context.Context) error {
	rolePerms, err := s.repo.GetRolePermissions(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()

	for _, pair := range roleInheritance {
		if _, err := s.enforcer.AddGroupingPolicy(pair[0].String(), pair[1].String()); err != nil {
			return err
		}
	}

	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.Role.String(), rp.Resource, rp.Action); err != nil {
			return err
		}
	}

	s.logger.Info("rbac policy loaded", zap.Int("role_permissions", len(rolePerms)))
	return nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	if !req.Role.Valid() {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(req.Role.String(), req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role.String()),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role.String()),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) PermissionsFor(role employee.Role) (PermissionsResponse, error) {
	resp := PermissionsResponse{Role: role.String(), Permissions: []PermissionResponse{}}
	if !role.Valid() {
		return resp, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	perms, err := s.enforcer.GetImplicitPermissionsForUser(role.String())
	if err != nil {
		return PermissionsResponse{}, err
	}
	for _, p := range perms {
		if len(p) < 3 {
			continue
		}
		resp.Permissions = append(resp.Permissions, PermissionResponse{Resource: p[1], Action: p[2]})
	}
	return resp, nil
}
