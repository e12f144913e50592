package dao_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Skryldev/hrdao/dao"
	"github.com/Skryldev/hrdao/db"
	"github.com/Skryldev/hrdao/models"
	"github.com/Skryldev/hrdao/schema"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test fixture
// ─────────────────────────────────────────────────────────────────────────────

func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(db.Config{
		DSN:        "file:" + filepath.Join(t.TempDir(), "hr.db") + "?_busy_timeout=5000",
		DriverName: "sqlite3",
	})
	require.NoError(t, err, "open")
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, schema.Ensure(context.Background(), database), "schema")
	return database
}

func newEmployeeDAO(t *testing.T) (dao.EmployeeDAO, *db.DB) {
	t.Helper()
	database := newTestDB(t)
	return dao.NewEmployeeDAO(database, nil), database
}

func smith() models.Employee {
	return models.Employee{
		ID:       7369,
		Name:     "SMITH",
		Job:      "CLERK",
		Manager:  models.ManagedBy(7902),
		HireDate: models.Date(1980, time.December, 17),
		Salary:   decimal.RequireFromString("800.00"),
		DeptID:   20,
	}
}

func assertEmployee(t *testing.T, want, got models.Employee) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID, "empno")
	assert.Equal(t, want.Name, got.Name, "ename")
	assert.Equal(t, want.Job, got.Job, "job")
	assert.Equal(t, want.Manager, got.Manager, "manager")
	assert.True(t, want.HireDate.Equal(got.HireDate), "hiredate: want %s, got %s", want.HireDate, got.HireDate)
	assert.True(t, want.Salary.Equal(got.Salary), "salary: want %s, got %s", want.Salary, got.Salary)
	assert.Equal(t, want.Commission.Valid, got.Commission.Valid, "commission validity")
	if want.Commission.Valid {
		assert.True(t, want.Commission.Decimal.Equal(got.Commission.Decimal),
			"commission: want %s, got %s", want.Commission.Decimal, got.Commission.Decimal)
	}
	assert.Equal(t, want.DeptID, got.DeptID, "deptno")
}

// ─────────────────────────────────────────────────────────────────────────────
// Create / FindByID
// ─────────────────────────────────────────────────────────────────────────────

func TestEmployeeDAO_CreateAndFind(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	ctx := context.Background()

	require.NoError(t, emps.Create(ctx, smith()))

	got, found, err := emps.FindByID(ctx, 7369)
	require.NoError(t, err)
	require.True(t, found)
	assertEmployee(t, smith(), got)
	assert.False(t, got.Commission.Valid)
}

func TestEmployeeDAO_CreateAndFind_CommissionNoManager(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	ctx := context.Background()

	king := models.Employee{
		ID:         7839,
		Name:       "KING",
		Job:        "PRESIDENT",
		HireDate:   models.Date(1981, time.November, 17),
		Salary:     decimal.RequireFromString("5000.50"),
		Commission: decimal.NewNullDecimal(decimal.RequireFromString("250.25")),
		DeptID:     10,
	}
	require.NoError(t, emps.Create(ctx, king))

	got, found, err := emps.FindByID(ctx, king.ID)
	require.NoError(t, err)
	require.True(t, found)
	assertEmployee(t, king, got)
	assert.False(t, got.Manager.Valid)
}

func TestEmployeeDAO_FindByID_Absent(t *testing.T) {
	emps, _ := newEmployeeDAO(t)

	got, found, err := emps.FindByID(context.Background(), 9999)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, models.Employee{}, got)
}

func TestEmployeeDAO_Create_DuplicateKey(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	ctx := context.Background()

	require.NoError(t, emps.Create(ctx, smith()))
	err := emps.Create(ctx, smith())
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKey(err), "got %v", err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Update / Delete
// ─────────────────────────────────────────────────────────────────────────────

func TestEmployeeDAO_Update(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	ctx := context.Background()
	require.NoError(t, emps.Create(ctx, smith()))

	e := smith()
	e.Job = "ANALYST"
	e.Salary = decimal.RequireFromString("1250.75")
	e.Commission = decimal.NewNullDecimal(decimal.RequireFromString("100.50"))
	e.Manager = models.ManagedBy(7566)
	e.DeptID = 30
	require.NoError(t, emps.Update(ctx, e))

	got, found, err := emps.FindByID(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, found)
	assertEmployee(t, e, got)
}

func TestEmployeeDAO_Update_Unchanged(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	ctx := context.Background()
	require.NoError(t, emps.Create(ctx, smith()))

	assert.NoError(t, emps.Update(ctx, smith()), "writing identical values still matches the row")
}

func TestEmployeeDAO_Update_Missing(t *testing.T) {
	emps, _ := newEmployeeDAO(t)

	err := emps.Update(context.Background(), smith())
	require.Error(t, err)
	assert.True(t, db.IsNotFound(err), "got %v", err)
}

func TestEmployeeDAO_Delete(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	ctx := context.Background()
	require.NoError(t, emps.Create(ctx, smith()))

	require.NoError(t, emps.Delete(ctx, 7369))

	_, found, err := emps.FindByID(ctx, 7369)
	require.NoError(t, err)
	assert.False(t, found)

	err = emps.Delete(ctx, 7369)
	assert.True(t, db.IsNotFound(err), "second delete: got %v", err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregates / listing
// ─────────────────────────────────────────────────────────────────────────────

func TestEmployeeDAO_TotalSalaryByDept(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	ctx := context.Background()

	jones := smith()
	jones.ID, jones.Name, jones.Salary = 7566, "JONES", decimal.RequireFromString("2975.50")
	other := smith()
	other.ID, other.DeptID = 7499, 30
	require.NoError(t, emps.CreateBatch(ctx, []models.Employee{smith(), jones, other}))

	total, err := emps.TotalSalaryByDept(ctx, 20)
	require.NoError(t, err)
	require.True(t, total.Valid)
	assert.True(t, decimal.RequireFromString("3775.50").Equal(total.Decimal), "got %s", total.Decimal)

	empty, err := emps.TotalSalaryByDept(ctx, 40)
	require.NoError(t, err)
	assert.False(t, empty.Valid, "department without employees has no total")
}

func TestEmployeeDAO_List(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	ctx := context.Background()

	var batch []models.Employee
	for _, id := range []int64{7902, 7369, 7788} {
		e := smith()
		e.ID = id
		batch = append(batch, e)
	}
	require.NoError(t, emps.CreateBatch(ctx, batch))

	page, err := emps.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(7369), page[0].ID)
	assert.Equal(t, int64(7788), page[1].ID)

	page, err = emps.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(7902), page[0].ID)

	page, err = emps.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, page)
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateBatch
// ─────────────────────────────────────────────────────────────────────────────

func TestEmployeeDAO_CreateBatch(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	ctx := context.Background()

	scott := smith()
	scott.ID, scott.Name, scott.Job = 7788, "SCOTT", "ANALYST"
	ford := smith()
	ford.ID, ford.Name, ford.Job = 7902, "FORD", "ANALYST"
	ford.Manager = models.ManagedBy(7566)

	require.NoError(t, emps.CreateBatch(ctx, []models.Employee{scott, ford}))

	for _, want := range []models.Employee{scott, ford} {
		got, found, err := emps.FindByID(ctx, want.ID)
		require.NoError(t, err)
		require.True(t, found, "empno %d", want.ID)
		assertEmployee(t, want, got)
	}
}

func TestEmployeeDAO_CreateBatch_RollsBackOnFailure(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	ctx := context.Background()

	first := smith()
	first.ID = 1000
	// The third item repeats the first key, so the whole batch must vanish.
	second := smith()
	second.ID = 1001
	err := emps.CreateBatch(ctx, []models.Employee{first, second, first})
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKey(err), "got %v", err)

	page, err := emps.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, page, "no row of a failed batch may persist")
}

func TestEmployeeDAO_CreateBatch_Empty(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	assert.NoError(t, emps.CreateBatch(context.Background(), nil))
}

// ─────────────────────────────────────────────────────────────────────────────
// Connection handling
// ─────────────────────────────────────────────────────────────────────────────

func TestEmployeeDAO_ReleasesConnections(t *testing.T) {
	emps, database := newEmployeeDAO(t)
	ctx := context.Background()

	require.NoError(t, emps.Create(ctx, smith()))
	_, _, err := emps.FindByID(ctx, 7369)
	require.NoError(t, err)
	_, _, err = emps.FindByID(ctx, 1)
	require.NoError(t, err)
	_, err = emps.TotalSalaryByDept(ctx, 20)
	require.NoError(t, err)
	assert.True(t, db.IsNotFound(emps.Delete(ctx, 1)))
	_, err = emps.List(ctx, 5, 0)
	require.NoError(t, err)

	assert.Zero(t, database.Stats().InUse, "every operation must return its connection")
}

func TestEmployeeDAO_ConcurrentReads(t *testing.T) {
	emps, database := newEmployeeDAO(t)
	ctx := context.Background()
	require.NoError(t, emps.Create(ctx, smith()))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			e, found, err := emps.FindByID(gctx, 7369)
			if err != nil {
				return err
			}
			if !found || e.Name != "SMITH" {
				return errors.New("unexpected lookup result")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Zero(t, database.Stats().InUse)
}

type failingConns struct{}

func (failingConns) Conn(context.Context) (*db.Conn, error) {
	return nil, &db.DBError{Sentinel: db.ErrConnectionFailed, Message: "pool exhausted"}
}

func TestEmployeeDAO_ConnectionFailure(t *testing.T) {
	emps := dao.NewEmployeeDAO(failingConns{}, nil)
	ctx := context.Background()

	_, _, err := emps.FindByID(ctx, 7369)
	assert.True(t, db.IsConnectionFailed(err), "find: %v", err)
	assert.True(t, db.IsConnectionFailed(emps.Create(ctx, smith())), "create")
	assert.True(t, db.IsConnectionFailed(emps.CreateBatch(ctx, []models.Employee{smith()})), "batch")
	assert.True(t, db.IsConnectionFailed(emps.Update(ctx, smith())), "update")
	assert.True(t, db.IsConnectionFailed(emps.Delete(ctx, 7369)), "delete")
	_, err = emps.TotalSalaryByDept(ctx, 20)
	assert.True(t, db.IsConnectionFailed(err), "total: %v", err)
}

func TestEmployeeDAO_CanceledContext(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := emps.FindByID(ctx, 7369)
	require.Error(t, err)
	assert.True(t, db.IsTimeout(err), "got %v", err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Money precision
// ─────────────────────────────────────────────────────────────────────────────

func TestEmployeeDAO_TotalSalaryByDept_ExactDecimal(t *testing.T) {
	tests := []struct {
		name     string
		salaries []string
		want     string
	}{
		{"two cents fractions", []string{"1.10", "2.20"}, "3.30"},
		{"three rows", []string{"800.10", "1600.20", "0.07"}, "2400.37"},
		{"many small amounts", []string{"0.10", "0.10", "0.10", "0.10", "0.10", "0.10", "0.10", "0.10", "0.10", "0.10"}, "1.00"},
		{"large values", []string{"99999.99", "12345.67", "0.01"}, "112345.67"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emps, _ := newEmployeeDAO(t)
			ctx := context.Background()

			var batch []models.Employee
			for i, s := range tt.salaries {
				e := smith()
				e.ID = int64(8000 + i)
				e.Salary = decimal.RequireFromString(s)
				batch = append(batch, e)
			}
			require.NoError(t, emps.CreateBatch(ctx, batch))

			total, err := emps.TotalSalaryByDept(ctx, 20)
			require.NoError(t, err)
			require.True(t, total.Valid)
			want := decimal.RequireFromString(tt.want)
			assert.True(t, want.Equal(total.Decimal), "want %s, got %s", want, total.Decimal)
			assert.Equal(t, want.StringFixed(2), total.Decimal.StringFixed(2))
		})
	}
}

func TestEmployeeDAO_RoundTrip_InexactBinaryAmounts(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	ctx := context.Background()

	e := smith()
	e.Salary = decimal.RequireFromString("1600.20")
	e.Commission = decimal.NewNullDecimal(decimal.RequireFromString("0.07"))
	require.NoError(t, emps.Create(ctx, e))

	got, found, err := emps.FindByID(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, found)
	assertEmployee(t, e, got)
	assert.Equal(t, "0.07", got.Commission.Decimal.StringFixed(2))
}

func TestEmployeeDAO_List_NegativePage(t *testing.T) {
	emps, _ := newEmployeeDAO(t)
	ctx := context.Background()
	require.NoError(t, emps.Create(ctx, smith()))

	for _, page := range [][2]int{{-1, 0}, {10, -1}, {-5, -5}} {
		got, err := emps.List(ctx, page[0], page[1])
		assert.ErrorIs(t, err, dao.ErrInvalidPage, "limit=%d offset=%d", page[0], page[1])
		assert.Nil(t, got)
	}

	got, err := emps.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got, "zero limit is a valid empty page")
}
