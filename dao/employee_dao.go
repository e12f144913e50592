package dao

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skryldev/hrdao/db"
	"github.com/Skryldev/hrdao/models"
)

// EmployeeDAO defines the persistence operations for employees.
type EmployeeDAO interface {
	// FindByID returns the employee with the given empno. found is false,
	// with a nil error, when no row matches.
	FindByID(ctx context.Context, id int64) (e models.Employee, found bool, err error)
	Create(ctx context.Context, e models.Employee) error
	// CreateBatch inserts all employees in one transaction. On any failure
	// the transaction is rolled back and nothing is persisted.
	CreateBatch(ctx context.Context, emps []models.Employee) error
	// Update overwrites every column of the row with e.ID. db.ErrNotFound is
	// returned when no such row exists.
	Update(ctx context.Context, e models.Employee) error
	// Delete removes the row with the given empno. db.ErrNotFound is
	// returned when no such row exists.
	Delete(ctx context.Context, id int64) error
	// TotalSalaryByDept sums salaries in a department, to models.MoneyScale
	// digits. The result is invalid when the department has no employees.
	TotalSalaryByDept(ctx context.Context, deptID int64) (decimal.NullDecimal, error)
	// List returns up to limit employees ordered by empno, skipping offset.
	// Negative values are rejected with ErrInvalidPage.
	List(ctx context.Context, limit, offset int) ([]models.Employee, error)
}

type employeeDAO struct {
	conns db.ConnProvider
	log   *slog.Logger
}

// NewEmployeeDAO returns an EmployeeDAO that acquires a connection from conns
// for every call. A nil logger falls back to slog.Default().
func NewEmployeeDAO(conns db.ConnProvider, logger *slog.Logger) EmployeeDAO {
	return &employeeDAO{conns: conns, log: loggerOrDefault(logger)}
}

const (
	sqlSelectEmpByID = `SELECT * FROM Emp WHERE empno = ?`

	sqlInsertEmp = `INSERT INTO Emp(empno, ename, job, manager, hiredate, salary, commision, deptno) VALUES (?,?,?,?,?,?,?,?)`

	sqlUpdateEmp = `UPDATE Emp SET ename=?, job=?, manager=?, hiredate=?, salary=?, commision=?, deptno=? WHERE empno=?`

	sqlDeleteEmp = `DELETE FROM Emp WHERE empno = ?`

	sqlSumSalaryByDept = `SELECT SUM(salary) FROM Emp WHERE deptno = ?`

	sqlListEmp = `SELECT * FROM Emp ORDER BY empno LIMIT ? OFFSET ?`
)

func (d *employeeDAO) FindByID(ctx context.Context, id int64) (models.Employee, bool, error) {
	e, found, err := findOne(ctx, d.conns, mapEmployee, sqlSelectEmpByID, id)
	if err != nil {
		return models.Employee{}, false, fmt.Errorf("dao/employee: find %d: %w", id, err)
	}
	return e, found, nil
}

func (d *employeeDAO) Create(ctx context.Context, e models.Employee) error {
	n, err := exec(ctx, d.conns, sqlInsertEmp, employeeInsertArgs(e)...)
	if err != nil {
		return fmt.Errorf("dao/employee: create %d: %w", e.ID, err)
	}
	d.log.DebugContext(ctx, "dao/employee: create", "empno", e.ID, "rows_affected", n)
	return nil
}

func (d *employeeDAO) CreateBatch(ctx context.Context, emps []models.Employee) error {
	if len(emps) == 0 {
		return nil
	}
	if err := batch(ctx, d.conns, sqlInsertEmp, emps, employeeInsertArgs); err != nil {
		return fmt.Errorf("dao/employee: create batch: %w", err)
	}
	d.log.DebugContext(ctx, "dao/employee: create batch", "count", len(emps))
	return nil
}

func (d *employeeDAO) Update(ctx context.Context, e models.Employee) error {
	n, err := exec(ctx, d.conns, sqlUpdateEmp,
		e.Name, e.Job, e.Manager, e.HireDate, e.Salary, e.Commission, e.DeptID, e.ID)
	if err != nil {
		return fmt.Errorf("dao/employee: update %d: %w", e.ID, err)
	}
	d.log.DebugContext(ctx, "dao/employee: update", "empno", e.ID, "rows_affected", n)
	return requireAffected(n, "Emp", e.ID)
}

func (d *employeeDAO) Delete(ctx context.Context, id int64) error {
	n, err := exec(ctx, d.conns, sqlDeleteEmp, id)
	if err != nil {
		return fmt.Errorf("dao/employee: delete %d: %w", id, err)
	}
	d.log.DebugContext(ctx, "dao/employee: delete", "empno", id, "rows_affected", n)
	return requireAffected(n, "Emp", id)
}

func (d *employeeDAO) TotalSalaryByDept(ctx context.Context, deptID int64) (decimal.NullDecimal, error) {
	var total decimal.NullDecimal

	conn, err := d.conns.Conn(ctx)
	if err != nil {
		return total, fmt.Errorf("dao/employee: total salary %d: %w", deptID, err)
	}
	defer conn.Close()

	if err := conn.QueryRow(ctx, sqlSumSalaryByDept, deptID).Scan(&total); err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("dao/employee: total salary %d: %w", deptID, err)
	}
	// sqlite3 stores NUMERIC values with a fraction as REAL and sums them
	// in float64.
	if total.Valid {
		total.Decimal = total.Decimal.Round(models.MoneyScale)
	}
	return total, nil
}

func (d *employeeDAO) List(ctx context.Context, limit, offset int) ([]models.Employee, error) {
	if err := checkPage(limit, offset); err != nil {
		return nil, fmt.Errorf("dao/employee: list: %w", err)
	}
	emps, err := findMany(ctx, d.conns, mapEmployee, sqlListEmp, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("dao/employee: list: %w", err)
	}
	return emps, nil
}

// employeeInsertArgs binds e in the column order of sqlInsertEmp.
func employeeInsertArgs(e models.Employee) []any {
	return []any{e.ID, e.Name, e.Job, e.Manager, e.HireDate, e.Salary, e.Commission, e.DeptID}
}

// mapEmployee builds an Employee from an Emp row. It reads columns by name
// only, so it works for SELECT * regardless of column order.
func mapEmployee(r db.ColumnReader) (models.Employee, error) {
	var (
		e   models.Employee
		err error
	)
	if e.ID, err = db.Value[int64](r, "empno"); err != nil {
		return models.Employee{}, err
	}
	if e.Name, err = db.Value[string](r, "ename"); err != nil {
		return models.Employee{}, err
	}
	job, err := db.Nullable[string](r, "job")
	if err != nil {
		return models.Employee{}, err
	}
	e.Job = job.V
	if e.Manager, err = db.Nullable[int64](r, "manager"); err != nil {
		return models.Employee{}, err
	}
	if e.HireDate, err = db.Value[time.Time](r, "hiredate"); err != nil {
		return models.Employee{}, err
	}
	if e.Salary, err = db.Value[decimal.Decimal](r, "salary"); err != nil {
		return models.Employee{}, err
	}
	e.Salary = e.Salary.Round(models.MoneyScale)
	if err = r.Column("commision", &e.Commission); err != nil {
		return models.Employee{}, err
	}
	if e.Commission.Valid {
		e.Commission.Decimal = e.Commission.Decimal.Round(models.MoneyScale)
	}
	if e.DeptID, err = db.Value[int64](r, "deptno"); err != nil {
		return models.Employee{}, err
	}
	return e, nil
}

var _ EmployeeDAO = (*employeeDAO)(nil)
