package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"backend/internal/database"
	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.NewConnection(database.DriverSQLite, dsn)
	require.NoError(t, err)
	return db
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	db := newTxTestDB(t)
	manager := NewTransactionManager(db)
	companies := NewCompanyRepository(db)

	err := manager.RunInTx(context.Background(), func(txCtx context.Context) error {
		if createErr := companies.Create(txCtx, &model.Company{Name: "Doomed", Slug: "doomed", IsActive: true}); createErr != nil {
			return createErr
		}
		return errors.New("late failure")
	})
	require.Error(t, err)

	var count int64
	db.Model(&model.Company{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRunInTx_CommitsBatch(t *testing.T) {
	db := newTxTestDB(t)
	manager := NewTransactionManager(db)
	companies := NewCompanyRepository(db)

	err := manager.RunInTx(context.Background(), func(txCtx context.Context) error {
		if createErr := companies.Create(txCtx, &model.Company{Name: "First", Slug: "first", IsActive: true}); createErr != nil {
			return createErr
		}
		// A read inside the transaction sees the uncommitted row
		if _, findErr := companies.FindBySlug(txCtx, "first"); findErr != nil {
			return findErr
		}
		return companies.Create(txCtx, &model.Company{Name: "Second", Slug: "second", IsActive: true})
	})
	require.NoError(t, err)

	var count int64
	db.Model(&model.Company{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestGetDB_FallsBackToRoot(t *testing.T) {
	db := newTxTestDB(t)

	// No transaction on the context: calls go straight to the root handle
	require.NoError(t, NewCompanyRepository(db).Create(context.Background(), &model.Company{
		Name: "Plain", Slug: "plain", IsActive: true,
	}))

	var count int64
	db.Model(&model.Company{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
