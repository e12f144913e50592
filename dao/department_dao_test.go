package dao_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/hrdao/dao"
	"github.com/Skryldev/hrdao/db"
	"github.com/Skryldev/hrdao/models"
)

func newDepartmentDAO(t *testing.T) dao.DepartmentDAO {
	t.Helper()
	return dao.NewDepartmentDAO(newTestDB(t), nil)
}

func TestDepartmentDAO_CRUD(t *testing.T) {
	depts := newDepartmentDAO(t)
	ctx := context.Background()

	research := models.Department{ID: 20, Name: "RESEARCH", Location: "DALLAS"}
	require.NoError(t, depts.Create(ctx, research))

	got, found, err := depts.FindByID(ctx, 20)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, research, got)

	research.Location = "BOSTON"
	require.NoError(t, depts.Update(ctx, research))
	got, _, err = depts.FindByID(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, "BOSTON", got.Location)

	require.NoError(t, depts.Delete(ctx, 20))
	_, found, err = depts.FindByID(ctx, 20)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDepartmentDAO_MissingRow(t *testing.T) {
	depts := newDepartmentDAO(t)
	ctx := context.Background()

	err := depts.Update(ctx, models.Department{ID: 99, Name: "NOWHERE"})
	assert.True(t, db.IsNotFound(err), "update: %v", err)
	err = depts.Delete(ctx, 99)
	assert.True(t, db.IsNotFound(err), "delete: %v", err)
}

func TestDepartmentDAO_DuplicateKey(t *testing.T) {
	depts := newDepartmentDAO(t)
	ctx := context.Background()

	require.NoError(t, depts.Create(ctx, models.Department{ID: 10, Name: "ACCOUNTING"}))
	err := depts.Create(ctx, models.Department{ID: 10, Name: "OTHER"})
	assert.True(t, db.IsDuplicateKey(err), "got %v", err)
}

func TestDepartmentDAO_BatchAndList(t *testing.T) {
	depts := newDepartmentDAO(t)
	ctx := context.Background()

	all := []models.Department{
		{ID: 40, Name: "OPERATIONS", Location: "BOSTON"},
		{ID: 10, Name: "ACCOUNTING", Location: "NEW YORK"},
		{ID: 30, Name: "SALES", Location: "CHICAGO"},
		{ID: 20, Name: "RESEARCH", Location: "DALLAS"},
	}
	require.NoError(t, depts.CreateBatch(ctx, all))

	page, err := depts.List(ctx, 3, 1)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, []int64{20, 30, 40}, []int64{page[0].ID, page[1].ID, page[2].ID})

	err = depts.CreateBatch(ctx, []models.Department{{ID: 50, Name: "NEW"}, {ID: 10, Name: "DUP"}})
	assert.True(t, db.IsDuplicateKey(err), "got %v", err)
	_, found, err := depts.FindByID(ctx, 50)
	require.NoError(t, err)
	assert.False(t, found, "failed batch must not leave rows behind")
}

func TestDepartmentDAO_List_NegativePage(t *testing.T) {
	depts := newDepartmentDAO(t)

	_, err := depts.List(context.Background(), -1, 0)
	assert.ErrorIs(t, err, dao.ErrInvalidPage)
	_, err = depts.List(context.Background(), 1, -1)
	assert.ErrorIs(t, err, dao.ErrInvalidPage)
}
