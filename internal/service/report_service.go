package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"worktime/internal/model"
	"worktime/internal/repository"
	"worktime/internal/utils"
)

// utf8BOM lets Excel detect UTF-8 (Thai job names etc.) in CSV exports
const utf8BOM = "\uFEFF"

var exportHeader = []string{"Username", "Job Name", "Date", "Check In", "Check Out", "Duration (Min)", "Duration (Hours)", "AI Summary"}

// ReportService builds monthly reports over completed work logs
type ReportService interface {
	MonthlyReport(ctx context.Context, user model.User, year int, month time.Month) (*model.MonthlyReport, error)
	ExportCSV(ctx context.Context, user model.User, year int, month time.Month) (*bytes.Buffer, string, error)
	ExportXLSX(ctx context.Context, user model.User, year int, month time.Month) (*bytes.Buffer, string, error)
}

type reportService struct {
	repo   repository.WorkLogRepository
	loc    *time.Location
	logger *zap.Logger
}

// NewReportService creates a new ReportService. Month boundaries are taken
// from the wall clock in loc.
func NewReportService(repo repository.WorkLogRepository, loc *time.Location, logger *zap.Logger) ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &reportService{repo: repo, loc: loc, logger: logger}
}

// BuildMonthlyReport filters logs to what user may see, keeps completed logs
// whose check-in falls in year/month (calendar fields in loc), sorts them
// newest first and sums durations overall and per job.
func BuildMonthlyReport(user model.User, logs []model.WorkLog, year int, month time.Month, loc *time.Location) model.MonthlyReport {
	report := model.MonthlyReport{
		Year:    year,
		Month:   month,
		PerJob:  make(map[string]model.JobStat),
		Entries: []model.WorkLog{},
	}

	for _, l := range logs {
		if !user.IsAdmin() && l.Username != user.Username {
			continue
		}
		if l.Status != model.StatusCheckedOut || l.CheckOutTime == nil {
			continue
		}
		in := l.CheckInTime.In(loc)
		if in.Year() != year || in.Month() != month {
			continue
		}
		report.Entries = append(report.Entries, l)
	}
	sortNewestFirst(report.Entries)

	for _, l := range report.Entries {
		d := l.Duration()
		report.TotalDuration += d
		stat := report.PerJob[l.JobName]
		stat.Count++
		stat.TotalDuration += d
		report.PerJob[l.JobName] = stat
	}
	return report
}

func validatePeriod(year int, month time.Month) error {
	if year < 1 || month < time.January || month > time.December {
		return fmt.Errorf("%w: %d-%02d", ErrInvalidPeriod, year, int(month))
	}
	return nil
}

func (s *reportService) MonthlyReport(ctx context.Context, user model.User, year int, month time.Month) (*model.MonthlyReport, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}
	logs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load work logs for report: %w", err)
	}
	report := BuildMonthlyReport(user, logs, year, month, s.loc)
	return &report, nil
}

func (s *reportService) exportRows(ctx context.Context, user model.User, year int, month time.Month) (*model.MonthlyReport, [][]string, error) {
	report, err := s.MonthlyReport(ctx, user, year, month)
	if err != nil {
		return nil, nil, err
	}
	if len(report.Entries) == 0 {
		return nil, nil, ErrNoReportData
	}

	rows := make([][]string, 0, len(report.Entries))
	for _, l := range report.Entries {
		in := l.CheckInTime.In(s.loc)
		out := l.CheckOutTime.In(s.loc)
		var summary string
		if l.AISummary != nil {
			summary = *l.AISummary
		}
		rows = append(rows, []string{
			l.Username,
			l.JobName,
			in.Format("02/01/2006"),
			in.Format("15:04:05"),
			out.Format("15:04:05"),
			strconv.FormatInt(utils.WholeMinutes(l.Duration()), 10),
			utils.Hours(l.Duration()).StringFixed(2),
			summary,
		})
	}
	return report, rows, nil
}

func exportFileName(year int, month time.Month, ext string) string {
	return fmt.Sprintf("work_report_%d_%d.%s", year, int(month), ext)
}

// ExportCSV renders the monthly entries as CSV with a UTF-8 BOM
func (s *reportService) ExportCSV(ctx context.Context, user model.User, year int, month time.Month) (*bytes.Buffer, string, error) {
	_, rows, err := s.exportRows(ctx, user, year, month)
	if err != nil {
		return nil, "", err
	}

	buffer := &bytes.Buffer{}
	buffer.WriteString(utf8BOM)
	writer := csv.NewWriter(buffer)

	if err := writer.Write(exportHeader); err != nil {
		return nil, "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, "", fmt.Errorf("failed to write CSV rows: %w", err)
	}

	return buffer, exportFileName(year, month, "csv"), nil
}

// ExportXLSX renders the monthly entries and a per-job summary as a workbook
func (s *reportService) ExportXLSX(ctx context.Context, user model.User, year int, month time.Month) (*bytes.Buffer, string, error) {
	report, rows, err := s.exportRows(ctx, user, year, month)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("failed to close workbook", zap.Error(cerr))
		}
	}()

	const entriesSheet, summarySheet = "Entries", "Summary"
	if err := f.SetSheetName("Sheet1", entriesSheet); err != nil {
		return nil, "", fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeSheetRow(f, entriesSheet, 1, toCells(exportHeader)); err != nil {
		return nil, "", err
	}
	for i, row := range rows {
		cells := toCells(row)
		// Keep the numeric columns numeric in Excel
		if mins, err := strconv.ParseInt(row[5], 10, 64); err == nil {
			cells[5] = mins
		}
		cells[6] = utils.Hours(report.Entries[i].Duration()).InexactFloat64()
		if err := writeSheetRow(f, entriesSheet, i+2, cells); err != nil {
			return nil, "", err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, "", fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeSheetRow(f, summarySheet, 1, []interface{}{"Job Name", "Sessions", "Hours"}); err != nil {
		return nil, "", err
	}
	jobs := make([]string, 0, len(report.PerJob))
	for job := range report.PerJob {
		jobs = append(jobs, job)
	}
	sort.Strings(jobs)
	rowNum := 2
	for _, job := range jobs {
		stat := report.PerJob[job]
		if err := writeSheetRow(f, summarySheet, rowNum, []interface{}{job, stat.Count, utils.Hours(stat.TotalDuration).InexactFloat64()}); err != nil {
			return nil, "", err
		}
		rowNum++
	}
	total := []interface{}{"Total", len(report.Entries), utils.Hours(report.TotalDuration).InexactFloat64()}
	if err := writeSheetRow(f, summarySheet, rowNum, total); err != nil {
		return nil, "", err
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}
	return buffer, exportFileName(year, month, "xlsx"), nil
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

func writeSheetRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid cell row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
