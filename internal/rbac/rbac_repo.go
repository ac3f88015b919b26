package rbac

import (
	"context"

	"worksync/internal/employee"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RolePermissionRow struct {
	ID       uint          `gorm:"primaryKey"`
	Role     employee.Role `gorm:"not null;uniqueIndex:uq_role_permission"`
	Resource string        `gorm:"type:varchar(50);not null;uniqueIndex:uq_role_permission"`
	Action   string        `gorm:"type:varchar(50);not null;uniqueIndex:uq_role_permission"`
}

func (RolePermissionRow) TableName() string {
	return "role_permissions"
}

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetRolePermissions(ctx context.Context) ([]RolePermissionRow, error)
	SeedPermissions(ctx context.Context, rows []RolePermissionRow) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetRolePermissions(ctx context.Context) ([]RolePermissionRow, error) {
	var result []RolePermissionRow
	err := r.db.WithContext(ctx).
		Order("role, resource, action").
		Find(&result).Error
	return result, err
}

// SeedPermissions inserts rows that are missing and leaves existing ones alone.
func (r *repository) SeedPermissions(ctx context.Context, rows []RolePermissionRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}
