// Package devopsmonitor is the uptime monitoring starter pack: endpoint
// health checks with TTL'd time-series records, AI diagnosis over incident
// history, multi-channel alerts, and uptime reports.
package devopsmonitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huitzo/packkit/pkg/huitzo"
)

// Endpoints checked when the caller supplies none.
var defaultEndpoints = []string{
	"https://api.example.com/health",
	"https://auth.example.com/health",
	"https://cdn.example.com/health",
}

const (
	healthTTL = 7 * 24 * time.Hour
	alertTTL  = 30 * 24 * time.Hour

	alertRecipient = "ops-team@example.com"
)

// Commands returns the monitor namespace.
func Commands() []*huitzo.Command {
	return []*huitzo.Command{
		{
			Name:        "health-check",
			Namespace:   "monitor",
			Description: "Check endpoint health and record results",
			Timeout:     120 * time.Second,
			Retries:     3,
			Handler:     healthCheck,
		},
		{
			Name:        "diagnose",
			Namespace:   "monitor",
			Description: "AI root-cause analysis over recent incidents",
			Timeout:     60 * time.Second,
			Retries:     3,
			Handler:     diagnose,
		},
		{
			Name:        "alert",
			Namespace:   "monitor",
			Description: "Send a multi-channel alert notification",
			Timeout:     30 * time.Second,
			Retries:     3,
			Handler:     alert,
		},
		{
			Name:        "status-report",
			Namespace:   "monitor",
			Description: "Uptime summary with AI insights",
			Timeout:     60 * time.Second,
			Retries:     3,
			Handler:     statusReport,
		},
	}
}

// serviceFromURL extracts a short service name, "https://api.example.com/x"
// becomes "api".
func serviceFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	host := u.Hostname()
	if i := strings.IndexByte(host, '.'); i > 0 {
		return host[:i]
	}
	return host
}

// checkEndpoint probes one URL. Failures become a status, never an error.
func checkEndpoint(ctx context.Context, hctx *huitzo.Context, rawURL string, timeout time.Duration) endpointResult {
	now := time.Now().UTC().Format(time.RFC3339)
	start := time.Now()

	res, err := hctx.HTTP.Get(ctx, rawURL, huitzo.WithRequestTimeout(timeout))
	elapsed := int(time.Since(start).Milliseconds())

	if err != nil {
		status := StatusDown
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			status = StatusTimeout
			msg = "request timed out"
		}
		return endpointResult{URL: rawURL, Status: status, ResponseTimeMs: elapsed, Error: msg, CheckedAt: now}
	}

	status := StatusHealthy
	switch {
	case res.StatusCode >= 500:
		status = StatusDown
	case res.StatusCode >= 400:
		status = StatusDegraded
	case elapsed > 2000:
		status = StatusDegraded
	}
	return endpointResult{URL: rawURL, Status: status, ResponseTimeMs: elapsed, StatusCode: res.StatusCode, CheckedAt: now}
}

func healthCheck(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args healthCheckArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	endpoints := args.Endpoints
	if len(endpoints) == 0 {
		endpoints = defaultEndpoints
	}
	now := time.Now().UTC().Format(time.RFC3339)
	timeout := time.Duration(args.TimeoutSeconds) * time.Second

	var healthy, degraded, down int
	results := make([]map[string]any, 0, len(endpoints))

	for _, endpoint := range endpoints {
		result := checkEndpoint(ctx, hctx, endpoint, timeout)
		results = append(results, result.toMap())

		switch result.Status {
		case StatusHealthy:
			healthy++
		case StatusDegraded:
			degraded++
		default:
			down++
		}

		service := serviceFromURL(endpoint)
		checkKey := fmt.Sprintf("%s%s:%s", checkPrefix, service, now)
		err := hctx.Storage.Save(ctx, checkKey, result.toMap(),
			huitzo.WithTTL(healthTTL),
			huitzo.WithMetadata(map[string]string{
				"type":    "health_check",
				"service": service,
				"status":  result.Status,
			}))
		if err != nil {
			return nil, err
		}

		if result.Status == StatusHealthy {
			continue
		}

		// Unhealthy checks leave an incident trail for diagnose.
		incidentKey := fmt.Sprintf("%s%s:%s", incidentPrefix, service, now)
		err = hctx.Storage.Save(ctx, incidentKey, map[string]any{
			"service":          service,
			"url":              result.URL,
			"status":           result.Status,
			"error":            result.Error,
			"response_time_ms": result.ResponseTimeMs,
			"occurred_at":      now,
		},
			huitzo.WithTTL(healthTTL),
			huitzo.WithMetadata(map[string]string{"type": "incident", "service": service}))
		if err != nil {
			return nil, err
		}
		hctx.Logger().Warn("monitor.incident", "service", service, "status", result.Status)
	}

	return map[string]any{
		"total_checked": len(results),
		"healthy":       healthy,
		"degraded":      degraded,
		"down":          down,
		"results":       results,
		"checked_at":    now,
	}, nil
}

func diagnose(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args diagnoseArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	incidents, err := hctx.Storage.Query(ctx, incidentPrefix+args.ServiceName+":",
		map[string]string{"type": "incident", "service": args.ServiceName}, 100)
	if err != nil {
		return nil, err
	}
	checks, err := hctx.Storage.Query(ctx, checkPrefix+args.ServiceName+":",
		map[string]string{"type": "health_check", "service": args.ServiceName}, 100)
	if err != nil {
		return nil, err
	}

	if len(incidents) == 0 && len(checks) == 0 {
		return nil, &huitzo.CommandError{
			Message: fmt.Sprintf("No monitoring data found for service %q. Run health-check first.", args.ServiceName),
			Details: map[string]any{"service_name": args.ServiceName},
		}
	}

	var incidentLines []string
	for _, rec := range incidents {
		incidentLines = append(incidentLines, fmt.Sprintf("- [%v] Status: %v, Error: %v, Response: %vms",
			orUnknown(rec.Value["occurred_at"]), orUnknown(rec.Value["status"]),
			orNone(rec.Value["error"]), orUnknown(rec.Value["response_time_ms"])))
	}
	var checkLines []string
	for _, rec := range checks {
		checkLines = append(checkLines, fmt.Sprintf("- [%v] Status: %v, Response: %vms",
			orUnknown(rec.Value["checked_at"]), orUnknown(rec.Value["status"]),
			orUnknown(rec.Value["response_time_ms"])))
	}
	if len(checkLines) > 10 {
		checkLines = checkLines[len(checkLines)-10:]
	}

	prompt := fmt.Sprintf(`Analyze the following monitoring data for service %q and provide a diagnosis.

Recent Incidents (%d total):
%s

Recent Health Checks (%d total):
%s

Provide your analysis as JSON:
{
    "pattern": "<describe the failure pattern, e.g., 'intermittent timeouts every 15 minutes'>",
    "root_cause": "<most likely root cause based on the data>",
    "recommendation": "<specific actionable steps to resolve>",
    "confidence": "low" | "medium" | "high"
}

Consider common root causes:
- DNS resolution failures
- Connection pool exhaustion
- Memory leaks (increasing response times)
- Deployment issues (sudden failures)
- Rate limiting (periodic failures)
- Database connection issues
- Certificate expiration`,
		args.ServiceName,
		len(incidents), orLine(incidentLines, "No recent incidents."),
		len(checks), orLine(checkLines, "No health check data."))

	diagnosis, err := huitzo.CompleteJSON(ctx, hctx.LLM, huitzo.CompletionRequest{
		Prompt: prompt,
		System: "You are a senior SRE/DevOps engineer analyzing monitoring data. " +
			"Be specific and actionable in your diagnosis. When data is limited, " +
			"say so and lower your confidence. Always respond with valid JSON.",
		Temperature: 0.3,
	})
	if err != nil {
		hctx.Logger().Warn("monitor.diagnose.llm_failed", "service", args.ServiceName, "error", err)
		diagnosis = map[string]any{
			"pattern":        "Unable to analyze - AI service unavailable",
			"root_cause":     "Insufficient data for automated analysis",
			"recommendation": "Review logs manually and check service health dashboard",
			"confidence":     "low",
		}
	}

	recentEvents := make([]map[string]any, 0, 5)
	for _, rec := range incidents {
		if len(recentEvents) == 5 {
			break
		}
		recentEvents = append(recentEvents, map[string]any{
			"time":   orEmpty(rec.Value["occurred_at"]),
			"status": orEmpty(rec.Value["status"]),
			"error":  orEmpty(rec.Value["error"]),
		})
	}

	return map[string]any{
		"service_name":   args.ServiceName,
		"incident_count": len(incidents),
		"pattern":        stringOr(diagnosis, "pattern", "Unknown"),
		"root_cause":     stringOr(diagnosis, "root_cause", "Unknown"),
		"recommendation": stringOr(diagnosis, "recommendation", "Review manually"),
		"confidence":     stringOr(diagnosis, "confidence", "low"),
		"recent_events":  recentEvents,
	}, nil
}

func alert(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args alertArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	alertID := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	now := time.Now().UTC().Format(time.RFC3339)
	label := strings.ToUpper(args.Severity)
	var notified []string

	// Each channel degrades independently: a failed send never fails the
	// alert, it just drops out of channels_notified.
	if contains(args.Channels, "telegram") && hctx.Telegram != nil {
		text := fmt.Sprintf("*%s*: %s\nTime: `%s`\n", label, args.ServiceName, now)
		if args.Message != "" {
			text += fmt.Sprintf("Details: %s\n", args.Message)
		}
		text += fmt.Sprintf("Alert ID: `%s`", alertID)

		err := hctx.Telegram.Send(ctx, huitzo.Message{ChatID: "default", Text: text, ParseMode: "Markdown"})
		if err != nil {
			hctx.Logger().Warn("monitor.alert.telegram_failed", "alert_id", alertID, "error", err)
		} else {
			notified = append(notified, "telegram")
		}
	}

	if contains(args.Channels, "email") && hctx.Email != nil {
		msg := huitzo.Email{
			To:      alertRecipient,
			Subject: fmt.Sprintf("[%s] Alert: %s", label, args.ServiceName),
			HTML:    alertEmailHTML(args, label, alertID, now),
		}
		if err := hctx.Email.Send(ctx, msg); err != nil {
			hctx.Logger().Warn("monitor.alert.email_failed", "alert_id", alertID, "error", err)
		} else {
			notified = append(notified, "email")
		}
	}

	err := hctx.Storage.Save(ctx, alertPrefix+alertID, map[string]any{
		"alert_id":          alertID,
		"service_name":      args.ServiceName,
		"severity":          args.Severity,
		"message":           args.Message,
		"channels_notified": notified,
		"sent_at":           now,
	},
		huitzo.WithTTL(alertTTL),
		huitzo.WithMetadata(map[string]string{
			"type":     "alert",
			"service":  args.ServiceName,
			"severity": args.Severity,
		}))
	if err != nil {
		return nil, err
	}

	hctx.Logger().Info("monitor.alert.sent", "alert_id", alertID, "severity", args.Severity, "channels", notified)

	return map[string]any{
		"service_name":      args.ServiceName,
		"severity":          args.Severity,
		"channels_notified": notified,
		"alert_id":          alertID,
		"sent_at":           now,
	}, nil
}

func statusReport(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args statusReportArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	periodStart := args.StartDate
	if periodStart == "" {
		periodStart = now.Truncate(24 * time.Hour).Format(time.RFC3339)
	}
	periodEnd := args.EndDate
	if periodEnd == "" {
		periodEnd = now.Format(time.RFC3339)
	}

	allChecks, err := hctx.Storage.Query(ctx, checkPrefix, map[string]string{"type": "health_check"}, 1000)
	if err != nil {
		return nil, err
	}
	allIncidents, err := hctx.Storage.Query(ctx, incidentPrefix, map[string]string{"type": "incident"}, 500)
	if err != nil {
		return nil, err
	}

	serviceChecks := map[string][]map[string]any{}
	serviceIncidents := map[string]int{}

	for _, rec := range allChecks {
		service := metaService(rec)
		if len(args.Services) > 0 && !contains(args.Services, service) {
			continue
		}
		serviceChecks[service] = append(serviceChecks[service], rec.Value)
	}
	for _, rec := range allIncidents {
		service := metaService(rec)
		if len(args.Services) > 0 && !contains(args.Services, service) {
			continue
		}
		serviceIncidents[service]++
	}

	names := make([]string, 0, len(serviceChecks))
	for name := range serviceChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	var services []uptimeEntry
	for _, name := range names {
		checks := serviceChecks[name]
		var healthy, responseSum, responseCount int
		for _, c := range checks {
			if c["status"] == StatusHealthy {
				healthy++
			}
			if ms := asInt(c["response_time_ms"]); ms > 0 {
				responseSum += ms
				responseCount++
			}
		}
		avg := 0
		if responseCount > 0 {
			avg = responseSum / responseCount
		}
		services = append(services, uptimeEntry{
			ServiceName:   name,
			TotalChecks:   len(checks),
			HealthyChecks: healthy,
			UptimePercent: round2(float64(healthy) / float64(len(checks)) * 100),
			AvgResponseMs: avg,
			Incidents:     serviceIncidents[name],
		})
	}

	var totalChecks, totalHealthy int
	for _, s := range services {
		totalChecks += s.TotalChecks
		totalHealthy += s.HealthyChecks
	}
	overall := 100.0
	if totalChecks > 0 {
		overall = float64(totalHealthy) / float64(totalChecks) * 100
	}

	var lines []string
	for _, s := range services {
		lines = append(lines, fmt.Sprintf("- %s: %v%% uptime, %dms avg response, %d incidents",
			s.ServiceName, s.UptimePercent, s.AvgResponseMs, s.Incidents))
	}

	prompt := fmt.Sprintf(`Generate a brief operations report summary.

Period: %s to %s
Overall Uptime: %.1f%%

Per-Service Status:
%s

Provide 2-3 sentences covering:
1. Overall system health assessment
2. Any services needing attention
3. One actionable recommendation`,
		periodStart, periodEnd, overall, orLine(lines, "No monitoring data available."))

	insights, err := hctx.LLM.Complete(ctx, huitzo.CompletionRequest{
		Prompt:      prompt,
		System:      "You are a DevOps operations analyst. Be concise and actionable.",
		Temperature: 0.5,
		MaxTokens:   200,
	})
	if err != nil {
		hctx.Logger().Warn("monitor.report.llm_failed", "error", err)
		insights = fallbackInsights(services, overall)
	}

	entries := make([]map[string]any, 0, len(services))
	for _, s := range services {
		entries = append(entries, s.toMap())
	}

	return map[string]any{
		"period_start":           periodStart,
		"period_end":             periodEnd,
		"total_services":         len(services),
		"overall_uptime_percent": round2(overall),
		"services":               entries,
		"ai_insights":            insights,
	}, nil
}

func alertEmailHTML(args alertArgs, label, alertID, now string) string {
	color := "#3b82f6"
	switch args.Severity {
	case SeverityCritical:
		color = "#dc2626"
	case SeverityWarning:
		color = "#f59e0b"
	}

	details := ""
	if args.Message != "" {
		details = "<h3>Details</h3><p>" + args.Message + "</p>"
	}

	row := func(name, value string) string {
		return fmt.Sprintf(`<tr><td style="padding: 8px; border: 1px solid #eee;"><strong>%s</strong></td>
        <td style="padding: 8px; border: 1px solid #eee;">%s</td></tr>`, name, value)
	}

	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
<h2 style="color: %s;">%s: %s</h2>
<table style="border-collapse: collapse; width: 100%%;">
%s
%s
%s
%s
</table>
%s
<hr style="border: none; border-top: 1px solid #eee; margin-top: 20px;">
<p style="font-size: 12px; color: #999;">Sent by DevOps Monitor | Powered by Huitzo</p>
</body>
</html>`, color, label, args.ServiceName,
		row("Service", args.ServiceName),
		row("Severity", args.Severity),
		row("Time", now),
		row("Alert ID", alertID),
		details)
}

func fallbackInsights(services []uptimeEntry, overall float64) string {
	if len(services) == 0 {
		return "No monitoring data available. Run health-check to start collecting data."
	}
	worst := services[0]
	for _, s := range services[1:] {
		if s.UptimePercent < worst.UptimePercent {
			worst = s
		}
	}
	return fmt.Sprintf("Overall uptime is %.1f%%. %s has the lowest uptime at %v%% with %d incidents. "+
		"Review incident logs for this service.",
		overall, worst.ServiceName, worst.UptimePercent, worst.Incidents)
}

func metaService(rec huitzo.Record) string {
	if s, ok := rec.Metadata["service"]; ok && s != "" {
		return s
	}
	return "unknown"
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func orLine(lines []string, fallback string) string {
	if len(lines) == 0 {
		return fallback
	}
	return strings.Join(lines, "\n")
}

func stringOr(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func orUnknown(v any) any {
	if v == nil {
		return "?"
	}
	return v
}

func orNone(v any) any {
	if v == nil || v == "" {
		return "none"
	}
	return v
}

func orEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}
