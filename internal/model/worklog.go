package model

import "time"

const (
	StatusCheckedIn  = "CHECKED_IN"
	StatusCheckedOut = "CHECKED_OUT"
)

// Location is a WGS84 coordinate pair in degrees
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinates are inside the usual ranges
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// WorkLog is one job session, opened by check-in and closed by check-out
type WorkLog struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	JobName          string     `json:"jobName"`
	CheckInTime      time.Time  `json:"checkInTime"`
	CheckInLocation  Location   `json:"checkInLocation"`
	CheckInPlace     *string    `json:"checkInPlace,omitempty"`
	Status           string     `json:"status"`
	CheckOutTime     *time.Time `json:"checkOutTime,omitempty"`
	CheckOutLocation *Location  `json:"checkOutLocation,omitempty"`
	CheckOutPlace    *string    `json:"checkOutPlace,omitempty"`
	AISummary        *string    `json:"aiSummary,omitempty"`
}

// Active reports whether the log is still open
func (w WorkLog) Active() bool {
	return w.Status == StatusCheckedIn
}

// Duration is zero for open logs
func (w WorkLog) Duration() time.Duration {
	if w.CheckOutTime == nil {
		return 0
	}
	return w.CheckOutTime.Sub(w.CheckInTime)
}

// CheckInRequest is used for opening a job
type CheckInRequest struct {
	JobName  string    `json:"jobName"`
	Location *Location `json:"location"`
}

// CheckOutRequest is used for closing a job
type CheckOutRequest struct {
	Location  *Location `json:"location"`
	AISummary *string   `json:"aiSummary,omitempty"`
}

// CheckoutPreview is the proximity gate evaluated against the active job
type CheckoutPreview struct {
	Log            *WorkLog `json:"log"`
	DistanceMeters float64  `json:"distanceMeters"`
	MaxMeters      float64  `json:"maxMeters"`
	Allowed        bool     `json:"allowed"`
}
