package db_test

import (
	"testing"

	"github.com/Skryldev/hrdao/db"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name  string
		style db.BindStyle
		in    string
		want  string
	}{
		{
			name:  "question style untouched",
			style: db.BindQuestion,
			in:    `SELECT * FROM Emp WHERE empno = ?`,
			want:  `SELECT * FROM Emp WHERE empno = ?`,
		},
		{
			name:  "update statement",
			style: db.BindDollar,
			in:    `UPDATE Emp SET ename=?, job=?, manager=?, hiredate=?, salary=?, commision=?, deptno=? WHERE empno=?`,
			want:  `UPDATE Emp SET ename=$1, job=$2, manager=$3, hiredate=$4, salary=$5, commision=$6, deptno=$7 WHERE empno=$8`,
		},
		{
			name:  "values list",
			style: db.BindDollar,
			in:    `INSERT INTO Dept(deptno, dname, location) VALUES (?,?,?)`,
			want:  `INSERT INTO Dept(deptno, dname, location) VALUES ($1,$2,$3)`,
		},
		{
			name:  "quoted literal",
			style: db.BindDollar,
			in:    `SELECT * FROM Dept WHERE dname = 'WHO?' AND deptno = ?`,
			want:  `SELECT * FROM Dept WHERE dname = 'WHO?' AND deptno = $1`,
		},
		{
			name:  "escaped quote inside literal",
			style: db.BindDollar,
			in:    `SELECT 'it''s ?' , ?`,
			want:  `SELECT 'it''s ?' , $1`,
		},
		{
			name:  "quoted identifier",
			style: db.BindDollar,
			in:    `SELECT "a?b" FROM t WHERE x = ?`,
			want:  `SELECT "a?b" FROM t WHERE x = $1`,
		},
		{
			name:  "line comment",
			style: db.BindDollar,
			in:    "SELECT ? -- why?\nFROM t WHERE y = ?",
			want:  "SELECT $1 -- why?\nFROM t WHERE y = $2",
		},
		{
			name:  "no placeholders",
			style: db.BindDollar,
			in:    `SELECT 1`,
			want:  `SELECT 1`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := db.Rebind(tt.style, tt.in); got != tt.want {
				t.Fatalf("Rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}
