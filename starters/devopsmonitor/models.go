package devopsmonitor

import (
	"strings"

	"github.com/huitzo/packkit/pkg/huitzo"
)

// Storage key prefixes. Health checks and incidents are keyed
// "<prefix><service>:<timestamp>" so per-service queries are prefix scans.
const (
	checkPrefix    = "health:"
	incidentPrefix = "incident:"
	alertPrefix    = "alert:"
)

// Health check result statuses.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
	StatusDown     = "down"
	StatusTimeout  = "timeout"
)

// Alert severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

type healthCheckArgs struct {
	Endpoints      []string `json:"endpoints"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

func (a *healthCheckArgs) Validate() error {
	for _, url := range a.Endpoints {
		if strings.TrimSpace(url) == "" {
			return &huitzo.ValidationError{Field: "endpoints", Message: "endpoint URLs cannot be empty strings"}
		}
	}
	if a.TimeoutSeconds == 0 {
		a.TimeoutSeconds = 10
	}
	if a.TimeoutSeconds < 1 || a.TimeoutSeconds > 60 {
		return &huitzo.ValidationError{Field: "timeout_seconds", Value: a.TimeoutSeconds, Message: "timeout_seconds must be between 1 and 60"}
	}
	return nil
}

type diagnoseArgs struct {
	ServiceName     string `json:"service_name"`
	LookbackMinutes int    `json:"lookback_minutes"`
}

func (a *diagnoseArgs) Validate() error {
	a.ServiceName = strings.TrimSpace(a.ServiceName)
	if a.ServiceName == "" || len(a.ServiceName) > 100 {
		return &huitzo.ValidationError{Field: "service_name", Value: a.ServiceName, Message: "service_name must be 1-100 characters"}
	}
	if a.LookbackMinutes == 0 {
		a.LookbackMinutes = 60
	}
	if a.LookbackMinutes < 5 || a.LookbackMinutes > 1440 {
		return &huitzo.ValidationError{Field: "lookback_minutes", Value: a.LookbackMinutes, Message: "lookback_minutes must be between 5 and 1440"}
	}
	return nil
}

type alertArgs struct {
	ServiceName string   `json:"service_name"`
	Severity    string   `json:"severity"`
	Message     string   `json:"message"`
	Channels    []string `json:"channels"`
}

func (a *alertArgs) Validate() error {
	a.ServiceName = strings.TrimSpace(a.ServiceName)
	if a.ServiceName == "" || len(a.ServiceName) > 100 {
		return &huitzo.ValidationError{Field: "service_name", Value: a.ServiceName, Message: "service_name must be 1-100 characters"}
	}
	switch a.Severity {
	case SeverityInfo, SeverityWarning, SeverityCritical:
	default:
		return &huitzo.ValidationError{Field: "severity", Value: a.Severity, Message: "severity must be info, warning, or critical"}
	}
	if len(a.Message) > 2000 {
		return &huitzo.ValidationError{Field: "message", Message: "message exceeds 2000 characters"}
	}
	if len(a.Channels) == 0 {
		a.Channels = []string{"email", "telegram"}
	}
	return nil
}

type statusReportArgs struct {
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Services  []string `json:"services"`
}

// endpointResult is one endpoint's health check outcome.
type endpointResult struct {
	URL            string `json:"url"`
	Status         string `json:"status"`
	ResponseTimeMs int    `json:"response_time_ms"`
	StatusCode     int    `json:"status_code,omitempty"`
	Error          string `json:"error,omitempty"`
	CheckedAt      string `json:"checked_at"`
}

func (r endpointResult) toMap() map[string]any {
	m := map[string]any{
		"url":              r.URL,
		"status":           r.Status,
		"response_time_ms": r.ResponseTimeMs,
		"checked_at":       r.CheckedAt,
	}
	if r.StatusCode != 0 {
		m["status_code"] = r.StatusCode
	}
	if r.Error != "" {
		m["error"] = r.Error
	}
	return m
}

// uptimeEntry is one service's aggregated uptime data.
type uptimeEntry struct {
	ServiceName   string
	TotalChecks   int
	HealthyChecks int
	UptimePercent float64
	AvgResponseMs int
	Incidents     int
}

func (u uptimeEntry) toMap() map[string]any {
	return map[string]any{
		"service_name":    u.ServiceName,
		"total_checks":    u.TotalChecks,
		"healthy_checks":  u.HealthyChecks,
		"uptime_percent":  u.UptimePercent,
		"avg_response_ms": u.AvgResponseMs,
		"incidents":       u.Incidents,
	}
}
