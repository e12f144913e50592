package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits of salary and commision,
// both NUMERIC(7,2).
const MoneyScale = 2

// Employee represents a row in the "Emp" table.
// Fields map 1-to-1 with columns; the department is referenced by id only.
type Employee struct {
	ID         int64               // empno, immutable once created
	Name       string              // ename
	Job        string              // job
	Manager    sql.Null[int64]     // manager; invalid when the employee has none
	HireDate   time.Time           // hiredate, calendar date
	Salary     decimal.Decimal     // salary
	Commission decimal.NullDecimal // commision
	DeptID     int64               // deptno
}

// Date returns midnight UTC of the given calendar day, the form HireDate is
// stored and compared in.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ManagedBy returns a valid manager reference.
func ManagedBy(empno int64) sql.Null[int64] {
	return sql.Null[int64]{V: empno, Valid: true}
}
