package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"worktime/internal/model"
	"worktime/internal/repository"
	"worktime/internal/store"
)

func completed(id, username, job string, in time.Time, worked time.Duration) model.WorkLog {
	out := in.Add(worked)
	return model.WorkLog{
		ID:               id,
		Username:         username,
		JobName:          job,
		CheckInTime:      in,
		CheckInLocation:  office,
		Status:           model.StatusCheckedOut,
		CheckOutTime:     &out,
		CheckOutLocation: locPtr(nearby),
	}
}

func reportLogs() []model.WorkLog {
	may := func(day, hour int) time.Time { return time.Date(2024, 5, day, hour, 0, 0, 0, time.UTC) }
	open := model.WorkLog{ID: "open", Username: "alice", JobName: "Survey", CheckInTime: may(20, 9), CheckInLocation: office, Status: model.StatusCheckedIn}
	withSummary := completed("a2", "alice", "Survey", may(3, 9), 90*time.Minute)
	withSummary.AISummary = strPtr(`Completed "Survey", well done`)
	return []model.WorkLog{
		completed("a1", "alice", "Survey", may(1, 9), 2*time.Hour),
		withSummary,
		completed("a3", "alice", "Repair", may(2, 13), 30*time.Minute),
		completed("b1", "bob", "Delivery", may(4, 8), time.Hour),
		completed("a-apr", "alice", "Survey", time.Date(2024, 4, 30, 23, 0, 0, 0, time.UTC), time.Hour),
		open,
	}
}

func TestBuildMonthlyReport_User(t *testing.T) {
	report := BuildMonthlyReport(alice, reportLogs(), 2024, time.May, time.UTC)

	require.Len(t, report.Entries, 3)
	assert.Equal(t, "a2", report.Entries[0].ID)
	assert.Equal(t, "a3", report.Entries[1].ID)
	assert.Equal(t, "a1", report.Entries[2].ID)
	assert.Equal(t, 4*time.Hour, report.TotalDuration)
	assert.Equal(t, model.JobStat{Count: 2, TotalDuration: 210 * time.Minute}, report.PerJob["Survey"])
	assert.Equal(t, model.JobStat{Count: 1, TotalDuration: 30 * time.Minute}, report.PerJob["Repair"])
	assert.NotContains(t, report.PerJob, "Delivery")
}

func TestBuildMonthlyReport_Admin(t *testing.T) {
	report := BuildMonthlyReport(bambooAd, reportLogs(), 2024, time.May, time.UTC)

	require.Len(t, report.Entries, 4)
	users := map[string]bool{}
	for _, e := range report.Entries {
		users[e.Username] = true
	}
	assert.True(t, users["alice"])
	assert.True(t, users["bob"])
	assert.Equal(t, 5*time.Hour, report.TotalDuration)
}

func TestBuildMonthlyReport_LocalMonthBoundary(t *testing.T) {
	bangkokTZ := time.FixedZone("ICT", 7*60*60)

	// 2024-04-30 23:00 UTC is 2024-05-01 06:00 in Bangkok
	may := BuildMonthlyReport(alice, reportLogs(), 2024, time.May, bangkokTZ)
	apr := BuildMonthlyReport(alice, reportLogs(), 2024, time.April, bangkokTZ)

	assert.Len(t, may.Entries, 4)
	assert.Empty(t, apr.Entries)
}

func TestBuildMonthlyReport_Empty(t *testing.T) {
	report := BuildMonthlyReport(alice, nil, 2024, time.May, time.UTC)

	assert.Empty(t, report.Entries)
	assert.NotNil(t, report.PerJob)
	assert.Zero(t, report.TotalDuration)
}

func newReportFixture(t *testing.T, logs []model.WorkLog) ReportService {
	t.Helper()
	repo := repository.NewWorkLogRepository(store.NewMemory())
	for i := range logs {
		require.NoError(t, repo.Append(context.Background(), &logs[i]))
	}
	return NewReportService(repo, time.UTC, zap.NewNop())
}

func TestReportService_MonthlyReport(t *testing.T) {
	svc := newReportFixture(t, reportLogs())

	report, err := svc.MonthlyReport(context.Background(), alice, 2024, time.May)

	require.NoError(t, err)
	assert.Len(t, report.Entries, 3)
	assert.Equal(t, 2024, report.Year)
	assert.Equal(t, time.May, report.Month)
}

func TestReportService_InvalidPeriod(t *testing.T) {
	svc := newReportFixture(t, nil)

	_, err := svc.MonthlyReport(context.Background(), alice, 2024, 13)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = svc.MonthlyReport(context.Background(), alice, 0, time.May)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestReportService_ExportCSV(t *testing.T) {
	svc := newReportFixture(t, reportLogs())

	buf, name, err := svc.ExportCSV(context.Background(), alice, 2024, time.May)

	require.NoError(t, err)
	assert.Equal(t, "work_report_2024_5.csv", name)
	content := buf.String()
	assert.True(t, strings.HasPrefix(content, utf8BOM))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(content, utf8BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, []string{"alice", "Survey", "03/05/2024", "09:00:00", "10:30:00", "90", "1.50", `Completed "Survey", well done`}, records[1])
}

func TestReportService_ExportCSVNoData(t *testing.T) {
	svc := newReportFixture(t, reportLogs())

	_, _, err := svc.ExportCSV(context.Background(), alice, 2023, time.January)

	assert.ErrorIs(t, err, ErrNoReportData)
}

func TestReportService_ExportXLSX(t *testing.T) {
	svc := newReportFixture(t, reportLogs())

	buf, name, err := svc.ExportXLSX(context.Background(), bambooAd, 2024, time.May)

	require.NoError(t, err)
	assert.Equal(t, "work_report_2024_5.xlsx", name)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	entries, err := f.GetRows("Entries")
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, exportHeader[:7], entries[0][:7])
	assert.Equal(t, "bob", entries[1][0])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 5)
	assert.Equal(t, []string{"Delivery", "1", "1"}, summary[1])
	assert.Equal(t, []string{"Total", "4", "5"}, summary[4])
}
