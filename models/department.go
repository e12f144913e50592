package models

// Department represents a row in the "Dept" table.
type Department struct {
	ID       int64  // deptno
	Name     string // dname
	Location string // location
}
