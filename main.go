// main.go — walkthrough of the Dept/Emp data-access layer
// ============================================================
//
//  1. Config + logger
//  2. Connection pool with statement log hook
//  3. Schema bootstrap
//  4. Department create / find / update
//  5. Employee create / find (absent vs failure)
//  6. Update and delete with not-found handling
//  7. Batch insert in one transaction
//  8. Salary aggregate per department
//  9. Type-safe error handling
//
// Run against the default sqlite3 file:   go run .
// Run against PostgreSQL:                 HRDAO_DATABASE__DRIVER=pgx HRDAO_DATABASE__DSN=postgres://... go run .
// ============================================================
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/Skryldev/hrdao/config"
	"github.com/Skryldev/hrdao/dao"
	"github.com/Skryldev/hrdao/db"
	"github.com/Skryldev/hrdao/models"
	"github.com/Skryldev/hrdao/schema"
)

func main() {
	// ── 1. Config + logger ───────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	// ── 2. Connection pool ───────────────────────────────────────────────
	database, err := cfg.Database.Open(cfg.Log.LogHook(logger))
	if err != nil {
		fatalf("open database: %v", err)
	}
	defer database.Close()
	slog.Info("database connected", "driver", database.DriverName())

	ctx := context.Background()

	// ── 3. Schema ────────────────────────────────────────────────────────
	if err := schema.Ensure(ctx, database); err != nil {
		fatalf("ensure schema: %v", err)
	}

	depts := dao.NewDepartmentDAO(database, logger)
	emps := dao.NewEmployeeDAO(database, logger)

	// ── 4. Departments ───────────────────────────────────────────────────
	research := models.Department{ID: 20, Name: "RESEARCH", Location: "DALLAS"}
	if err := depts.Create(ctx, research); err != nil {
		if !db.IsDuplicateKey(err) {
			fatalf("create department: %v", err)
		}
		slog.Warn("department already exists", "deptno", research.ID)
	}

	research.Location = "AUSTIN"
	if err := depts.Update(ctx, research); err != nil {
		fatalf("update department: %v", err)
	}
	if d, found, err := depts.FindByID(ctx, research.ID); err != nil {
		fatalf("find department: %v", err)
	} else if found {
		slog.Info("department", "deptno", d.ID, "dname", d.Name, "location", d.Location)
	}

	// ── 5. Employees ─────────────────────────────────────────────────────
	smith := models.Employee{
		ID:       7369,
		Name:     "SMITH",
		Job:      "CLERK",
		Manager:  models.ManagedBy(7902),
		HireDate: models.Date(1980, 12, 17),
		Salary:   decimal.RequireFromString("800.00"),
		DeptID:   20,
	}
	if err := emps.Create(ctx, smith); err != nil && !db.IsDuplicateKey(err) {
		fatalf("create employee: %v", err)
	}

	e, found, err := emps.FindByID(ctx, smith.ID)
	switch {
	case err != nil:
		fatalf("find employee: %v", err)
	case !found:
		slog.Warn("employee not found", "empno", smith.ID)
	default:
		slog.Info("employee", "empno", e.ID, "ename", e.Name, "salary", e.Salary.StringFixed(2))
	}

	// ── 6. Update / delete ───────────────────────────────────────────────
	smith.Salary = decimal.RequireFromString("950.00")
	if err := emps.Update(ctx, smith); err != nil {
		fatalf("update employee: %v", err)
	}
	if err := emps.Delete(ctx, 1); db.IsNotFound(err) {
		slog.Info("delete of unknown empno reported as not found")
	} else if err != nil {
		fatalf("delete employee: %v", err)
	}

	// ── 7. Batch insert ──────────────────────────────────────────────────
	batch := []models.Employee{
		{ID: 7566, Name: "JONES", Job: "MANAGER", Manager: models.ManagedBy(7839),
			HireDate: models.Date(1981, 4, 2), Salary: decimal.RequireFromString("2975.00"), DeptID: 20},
		{ID: 7788, Name: "SCOTT", Job: "ANALYST", Manager: models.ManagedBy(7566),
			HireDate: models.Date(1987, 4, 19), Salary: decimal.RequireFromString("3000.00"), DeptID: 20},
		{ID: 7902, Name: "FORD", Job: "ANALYST", Manager: models.ManagedBy(7566),
			HireDate: models.Date(1981, 12, 3), Salary: decimal.RequireFromString("3000.00"), DeptID: 20},
	}
	if err := emps.CreateBatch(ctx, batch); err != nil {
		// The whole batch was rolled back.
		slog.Error("batch insert failed", "err", err)
	} else {
		slog.Info("batch insert", "count", len(batch))
	}

	// ── 8. Aggregate ─────────────────────────────────────────────────────
	total, err := emps.TotalSalaryByDept(ctx, research.ID)
	if err != nil {
		fatalf("total salary: %v", err)
	}
	if total.Valid {
		slog.Info("total salary", "deptno", research.ID, "sum", total.Decimal.StringFixed(2))
	} else {
		slog.Info("department has no employees", "deptno", research.ID)
	}

	// ── 9. Error handling ────────────────────────────────────────────────
	err = emps.Create(ctx, smith)
	var dbErr *db.DBError
	if db.IsDuplicateKey(err) && errors.As(err, &dbErr) {
		slog.Info("duplicate empno rejected", "cause", dbErr.Cause)
	}

	stats := database.Stats()
	slog.Info("pool stats", "open", stats.OpenConnections, "in_use", stats.InUse, "idle", stats.Idle)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
