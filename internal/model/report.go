package model

import "time"

// JobStat aggregates completed sessions of one job
type JobStat struct {
	Count         int           `json:"count"`
	TotalDuration time.Duration `json:"totalDuration"`
}

// MonthlyReport represents the completed work of a calendar month
type MonthlyReport struct {
	Year          int                `json:"year"`
	Month         time.Month         `json:"month"`
	TotalDuration time.Duration      `json:"totalDuration"`
	PerJob        map[string]JobStat `json:"perJob"`
	Entries       []WorkLog          `json:"entries"`
}
