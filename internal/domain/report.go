package domain

import "time"

// ReportParams holds the thresholds a classification time report was computed with
type ReportParams struct {
	ResponseLimit time.Duration
	StartDelayMax time.Duration
	Percent       int
}

// ClassificationReport represents the classification time metric for one batch of job runs
type ClassificationReport struct {
	ID          string
	GeneratedAt time.Time
	Params      ReportParams

	GroupCount         int
	ExcludedGroupCount int

	// Count is the number of delays retained before trimming, UsedCount the number averaged
	Count         int
	UsedCount     int
	MeanSeconds   float64
	LimitSeconds  float64
	MedianSeconds float64

	// Delays holds every retained delay in ascending order. Only filled when requested.
	Delays []float64
}
