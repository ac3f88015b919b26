package employee_test

import (
	"context"
	"errors"
	"testing"

	"worksync/internal/employee"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (employee.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)

	return employee.NewRepository(gdb), mock
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock := setupRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "employees" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "role", "active"}).
			AddRow(id.String(), "Ayu", "Lestari", "ayu@example.com", 2, true))

	got, err := repo.FindByID(context.Background(), id.String())

	assert.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, employee.RoleManager, got.Role)
	assert.Equal(t, "Ayu Lestari", got.FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "employees" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := repo.FindByID(context.Background(), uuid.NewString())

	assert.Nil(t, got)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepository_FindActive(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "employees" WHERE active = \$1 .* ORDER BY created_at ASC`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "active"}).
			AddRow(uuid.NewString(), "Budi", true).
			AddRow(uuid.NewString(), "Citra", true))

	got, err := repo.FindActive(context.Background())

	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "Budi", got[0].FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}
