package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"partnerpay/models"

	"github.com/xuri/excelize/v2"
)

const payoutSheet = "Payout"

var (
	projectCSVHeader = []string{"id", "name", "date", "scenario", "value", "planned_days", "created_at"}
	worklogCSVHeader = []string{"id", "project_id", "project_name", "project_month", "date", "partner", "present", "logged_at"}
)

type exportService struct {
	uowFactory UnitOfWorkFactory
	currency   string
}

// NewExportService creates a new export service
func NewExportService(uowFactory UnitOfWorkFactory, currency string) ExportService {
	return &exportService{
		uowFactory: uowFactory,
		currency:   currency,
	}
}

// ExportProjectsCSV writes every project, newest first
func (s *exportService) ExportProjectsCSV(ctx context.Context, w io.Writer) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	projects, err := uow.ProjectRepository().GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(projectCSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range projects {
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Date.Format(time.DateOnly),
			p.Scenario,
			p.Value.StringFixed(2),
			strconv.Itoa(p.PlannedDays),
			p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write project %d: %w", p.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportWorklogCSV writes the whole worklog joined with project name and month
func (s *exportService) ExportWorklogCSV(ctx context.Context, w io.Writer) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rows, err := uow.AttendanceRepository().GetAllForExport(ctx)
	if err != nil {
		return fmt.Errorf("failed to list worklog: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(worklogCSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.ID, 10),
			strconv.FormatInt(r.ProjectID, 10),
			r.ProjectName,
			r.ProjectMonth,
			r.Date.Format(time.DateOnly),
			r.Partner,
			strconv.FormatBool(r.Present),
			r.LoggedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write worklog entry %d: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportPayoutXLSX writes a one-sheet workbook: the report summary on top,
// the per-partner table below it.
func (s *exportService) ExportPayoutXLSX(report *models.PayoutReport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", payoutSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	summary := [][2]any{
		{"Project", report.ProjectName},
		{"Scenario", report.Scenario},
		{"Share source", string(report.ShareSource)},
		{fmt.Sprintf("Total value (%s)", s.currency), report.TotalValue.InexactFloat64()},
		{"Firm percentage", report.FirmPercentage.InexactFloat64()},
		{fmt.Sprintf("Firm cut (%s)", s.currency), report.FirmCut.Round(2).InexactFloat64()},
		{fmt.Sprintf("Distributable (%s)", s.currency), report.Distributable.Round(2).InexactFloat64()},
		{"Planned days", report.PlannedDays},
		{"Total worked days", report.TotalWorkedDays},
		{fmt.Sprintf("Total paid (%s)", s.currency), report.TotalPaid.Round(2).InexactFloat64()},
		{fmt.Sprintf("Remaining (%s)", s.currency), report.Remaining.Round(2).InexactFloat64()},
		{"Over plan", report.OverPlan},
	}

	row := 1
	for _, line := range summary {
		if err := setRow(f, row, line[0], line[1]); err != nil {
			return err
		}
		row++
	}

	row++
	if err := setRow(f, row, "Partner", "Share %", "Worked days", fmt.Sprintf("Payout (%s)", s.currency)); err != nil {
		return err
	}
	for _, p := range report.Payouts {
		row++
		if err := setRow(f, row, p.Partner, p.SharePct.InexactFloat64(), p.WorkedDays, p.Payout.Round(2).InexactFloat64()); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("failed to address cell: %w", err)
		}
		if err := f.SetCellValue(payoutSheet, cell, v); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
