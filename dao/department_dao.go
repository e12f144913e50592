package dao

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Skryldev/hrdao/db"
	"github.com/Skryldev/hrdao/models"
)

// DepartmentDAO defines the persistence operations for departments. It has
// the same semantics as EmployeeDAO applied to the Dept table.
type DepartmentDAO interface {
	FindByID(ctx context.Context, id int64) (d models.Department, found bool, err error)
	Create(ctx context.Context, d models.Department) error
	CreateBatch(ctx context.Context, depts []models.Department) error
	Update(ctx context.Context, d models.Department) error
	Delete(ctx context.Context, id int64) error
	// List pages by deptno; negative limit or offset yields ErrInvalidPage.
	List(ctx context.Context, limit, offset int) ([]models.Department, error)
}

type departmentDAO struct {
	conns db.ConnProvider
	log   *slog.Logger
}

// NewDepartmentDAO returns a DepartmentDAO that acquires a connection from
// conns for every call.
func NewDepartmentDAO(conns db.ConnProvider, logger *slog.Logger) DepartmentDAO {
	return &departmentDAO{conns: conns, log: loggerOrDefault(logger)}
}

const (
	sqlSelectDeptByID = `SELECT * FROM Dept WHERE deptno = ?`
	sqlInsertDept     = `INSERT INTO Dept(deptno, dname, location) VALUES (?,?,?)`
	sqlUpdateDept     = `UPDATE Dept SET dname=?, location=? WHERE deptno=?`
	sqlDeleteDept     = `DELETE FROM Dept WHERE deptno = ?`
	sqlListDept       = `SELECT * FROM Dept ORDER BY deptno LIMIT ? OFFSET ?`
)

func (r *departmentDAO) FindByID(ctx context.Context, id int64) (models.Department, bool, error) {
	d, found, err := findOne(ctx, r.conns, mapDepartment, sqlSelectDeptByID, id)
	if err != nil {
		return models.Department{}, false, fmt.Errorf("dao/department: find %d: %w", id, err)
	}
	return d, found, nil
}

func (r *departmentDAO) Create(ctx context.Context, d models.Department) error {
	n, err := exec(ctx, r.conns, sqlInsertDept, departmentInsertArgs(d)...)
	if err != nil {
		return fmt.Errorf("dao/department: create %d: %w", d.ID, err)
	}
	r.log.DebugContext(ctx, "dao/department: create", "deptno", d.ID, "rows_affected", n)
	return nil
}

func (r *departmentDAO) CreateBatch(ctx context.Context, depts []models.Department) error {
	if len(depts) == 0 {
		return nil
	}
	if err := batch(ctx, r.conns, sqlInsertDept, depts, departmentInsertArgs); err != nil {
		return fmt.Errorf("dao/department: create batch: %w", err)
	}
	r.log.DebugContext(ctx, "dao/department: create batch", "count", len(depts))
	return nil
}

func (r *departmentDAO) Update(ctx context.Context, d models.Department) error {
	n, err := exec(ctx, r.conns, sqlUpdateDept, d.Name, d.Location, d.ID)
	if err != nil {
		return fmt.Errorf("dao/department: update %d: %w", d.ID, err)
	}
	r.log.DebugContext(ctx, "dao/department: update", "deptno", d.ID, "rows_affected", n)
	return requireAffected(n, "Dept", d.ID)
}

func (r *departmentDAO) Delete(ctx context.Context, id int64) error {
	n, err := exec(ctx, r.conns, sqlDeleteDept, id)
	if err != nil {
		return fmt.Errorf("dao/department: delete %d: %w", id, err)
	}
	r.log.DebugContext(ctx, "dao/department: delete", "deptno", id, "rows_affected", n)
	return requireAffected(n, "Dept", id)
}

func (r *departmentDAO) List(ctx context.Context, limit, offset int) ([]models.Department, error) {
	if err := checkPage(limit, offset); err != nil {
		return nil, fmt.Errorf("dao/department: list: %w", err)
	}
	depts, err := findMany(ctx, r.conns, mapDepartment, sqlListDept, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("dao/department: list: %w", err)
	}
	return depts, nil
}

func departmentInsertArgs(d models.Department) []any {
	return []any{d.ID, d.Name, d.Location}
}

func mapDepartment(r db.ColumnReader) (models.Department, error) {
	var (
		d   models.Department
		err error
	)
	if d.ID, err = db.Value[int64](r, "deptno"); err != nil {
		return models.Department{}, err
	}
	name, err := db.Nullable[string](r, "dname")
	if err != nil {
		return models.Department{}, err
	}
	loc, err := db.Nullable[string](r, "location")
	if err != nil {
		return models.Department{}, err
	}
	d.Name, d.Location = name.V, loc.V
	return d, nil
}

var _ DepartmentDAO = (*departmentDAO)(nil)
