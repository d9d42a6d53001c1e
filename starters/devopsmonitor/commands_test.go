package devopsmonitor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/huitzo/packkit/pkg/huitzo"
	"github.com/huitzo/packkit/pkg/huitzo/huitzotest"
)

func ok(status int) huitzo.HTTPResult {
	return huitzo.HTTPResult{StatusCode: status, Body: []byte("{}")}
}

func TestServiceFromURL(t *testing.T) {
	cases := map[string]string{
		"https://api.example.com/health":  "api",
		"https://auth.example.com":        "auth",
		"http://localhost:8080/healthz":   "localhost",
		"not a url at all ://":            "not a url at all ://",
	}
	for url, want := range cases {
		if got := serviceFromURL(url); got != want {
			t.Errorf("serviceFromURL(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestHealthCheckStatuses(t *testing.T) {
	h := huitzotest.New()
	h.HTTP.Responses["https://api.example.com/health"] = ok(200)
	h.HTTP.Responses["https://auth.example.com/health"] = ok(503)
	h.HTTP.Responses["https://cdn.example.com/health"] = ok(429)

	out, err := healthCheck(context.Background(), h.Ctx, nil)
	if err != nil {
		t.Fatalf("health-check: %v", err)
	}

	res := out.(map[string]any)
	if res["total_checked"] != 3 {
		t.Errorf("total_checked = %v", res["total_checked"])
	}
	if res["healthy"] != 1 || res["degraded"] != 1 || res["down"] != 1 {
		t.Errorf("counts = %v/%v/%v, want 1/1/1", res["healthy"], res["degraded"], res["down"])
	}

	results := res["results"].([]map[string]any)
	if results[0]["status"] != StatusHealthy {
		t.Errorf("api status = %v", results[0]["status"])
	}
	if results[1]["status"] != StatusDown {
		t.Errorf("auth status = %v", results[1]["status"])
	}
	if results[2]["status"] != StatusDegraded {
		t.Errorf("cdn status = %v", results[2]["status"])
	}

	checks, err := h.Storage.Query(context.Background(), checkPrefix, map[string]string{"type": "health_check"}, 0)
	if err != nil || len(checks) != 3 {
		t.Errorf("check records = %d, want 3 (%v)", len(checks), err)
	}
	incidents, err := h.Storage.Query(context.Background(), incidentPrefix, map[string]string{"type": "incident"}, 0)
	if err != nil || len(incidents) != 2 {
		t.Errorf("incident records = %d, want 2 for the unhealthy endpoints (%v)", len(incidents), err)
	}
}

func TestHealthCheckTimeoutStatus(t *testing.T) {
	h := huitzotest.New()
	h.HTTP.Err = context.DeadlineExceeded

	out, err := healthCheck(context.Background(), h.Ctx,
		json.RawMessage(`{"endpoints":["https://api.example.com/health"]}`))
	if err != nil {
		t.Fatalf("health-check: %v", err)
	}

	res := out.(map[string]any)
	result := res["results"].([]map[string]any)[0]
	if result["status"] != StatusTimeout {
		t.Errorf("status = %v, want timeout", result["status"])
	}
	if result["error"] != "request timed out" {
		t.Errorf("error = %v", result["error"])
	}
	if res["down"] != 1 {
		t.Errorf("timeouts count as down, got %v", res["down"])
	}
}

func TestHealthCheckConnectionFailure(t *testing.T) {
	h := huitzotest.New()
	h.HTTP.Err = errors.New("connection refused")

	out, err := healthCheck(context.Background(), h.Ctx,
		json.RawMessage(`{"endpoints":["https://api.example.com/health"]}`))
	if err != nil {
		t.Fatalf("probe failures must become a status, not an error: %v", err)
	}
	result := out.(map[string]any)["results"].([]map[string]any)[0]
	if result["status"] != StatusDown {
		t.Errorf("status = %v, want down", result["status"])
	}
}

func TestHealthCheckValidation(t *testing.T) {
	h := huitzotest.New()

	cases := []string{
		`{"endpoints":["  "]}`,
		`{"timeout_seconds":61}`,
		`{"timeout_seconds":-1}`,
	}
	for _, raw := range cases {
		_, err := healthCheck(context.Background(), h.Ctx, json.RawMessage(raw))
		var ve *huitzo.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("args %s: err = %v, want validation error", raw, err)
		}
	}
}

// seedIncident runs a health check against a failing endpoint so the "api"
// service has one check record and one incident record.
func seedIncident(t *testing.T, h *huitzotest.Harness) {
	t.Helper()
	h.HTTP.Responses["https://api.example.com/health"] = ok(503)
	_, err := healthCheck(context.Background(), h.Ctx,
		json.RawMessage(`{"endpoints":["https://api.example.com/health"]}`))
	if err != nil {
		t.Fatalf("seed health-check: %v", err)
	}
}

func TestDiagnoseAnalyzesIncidents(t *testing.T) {
	h := huitzotest.New()
	seedIncident(t, h)
	h.LLM.Script(`{"pattern":"sustained 503s","root_cause":"bad deploy","recommendation":"roll back","confidence":"high"}`)

	out, err := diagnose(context.Background(), h.Ctx, json.RawMessage(`{"service_name":"api"}`))
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}

	res := out.(map[string]any)
	if res["incident_count"] != 1 {
		t.Errorf("incident_count = %v", res["incident_count"])
	}
	if res["root_cause"] != "bad deploy" || res["confidence"] != "high" {
		t.Errorf("diagnosis = %v", res)
	}
	events := res["recent_events"].([]map[string]any)
	if len(events) != 1 || events[0]["status"] != StatusDown {
		t.Errorf("recent_events = %v", events)
	}

	req := h.LLM.Requests[0]
	if !req.JSONResponse {
		t.Error("diagnosis must request a JSON reply")
	}
	if !strings.Contains(req.Prompt, `"api"`) {
		t.Errorf("prompt should name the service:\n%s", req.Prompt)
	}
}

func TestDiagnoseNoData(t *testing.T) {
	h := huitzotest.New()

	_, err := diagnose(context.Background(), h.Ctx, json.RawMessage(`{"service_name":"ghost"}`))
	var ce *huitzo.CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want CommandError", err)
	}
	if ce.Details["service_name"] != "ghost" {
		t.Errorf("details = %v", ce.Details)
	}
}

func TestDiagnoseFallbackWhenLLMFails(t *testing.T) {
	h := huitzotest.New()
	seedIncident(t, h)
	h.LLM.Err = errors.New("llm down")

	out, err := diagnose(context.Background(), h.Ctx, json.RawMessage(`{"service_name":"api"}`))
	if err != nil {
		t.Fatalf("llm failure must fall back: %v", err)
	}
	res := out.(map[string]any)
	if res["confidence"] != "low" {
		t.Errorf("fallback confidence = %v", res["confidence"])
	}
	if !strings.Contains(res["pattern"].(string), "AI service unavailable") {
		t.Errorf("pattern = %v", res["pattern"])
	}
}

func TestDiagnoseValidation(t *testing.T) {
	h := huitzotest.New()

	for _, raw := range []string{`{"service_name":"   "}`, `{"service_name":"api","lookback_minutes":2}`} {
		_, err := diagnose(context.Background(), h.Ctx, json.RawMessage(raw))
		var ve *huitzo.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("args %s: err = %v, want validation error", raw, err)
		}
	}
}

func TestAlertNotifiesBothChannels(t *testing.T) {
	h := huitzotest.New()

	out, err := alert(context.Background(), h.Ctx,
		json.RawMessage(`{"service_name":"payments","severity":"critical","message":"5xx spike"}`))
	if err != nil {
		t.Fatalf("alert: %v", err)
	}

	res := out.(map[string]any)
	alertID := res["alert_id"].(string)
	if len(alertID) != 8 {
		t.Errorf("alert_id = %q, want 8 chars", alertID)
	}
	notified := res["channels_notified"].([]string)
	if len(notified) != 2 {
		t.Fatalf("channels_notified = %v", notified)
	}

	if len(h.Telegram.Sent) != 1 {
		t.Fatal("telegram message not sent")
	}
	tg := h.Telegram.Sent[0]
	if !strings.Contains(tg.Text, "*CRITICAL*: payments") {
		t.Errorf("telegram text = %q", tg.Text)
	}
	if tg.ParseMode != "Markdown" {
		t.Errorf("parse mode = %q", tg.ParseMode)
	}

	if len(h.Email.Sent) != 1 {
		t.Fatal("email not sent")
	}
	msg := h.Email.Sent[0]
	if msg.To != alertRecipient {
		t.Errorf("to = %q", msg.To)
	}
	if msg.Subject != "[CRITICAL] Alert: payments" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "5xx spike") {
		t.Error("email body should carry the message details")
	}

	stored, err := h.Storage.Get(context.Background(), alertPrefix+alertID)
	if err != nil || stored == nil {
		t.Fatalf("alert record not stored: %v", err)
	}
	if stored["severity"] != "critical" {
		t.Errorf("stored severity = %v", stored["severity"])
	}
}

func TestAlertChannelDegradesIndependently(t *testing.T) {
	h := huitzotest.New()
	h.Email.Err = errors.New("smtp down")

	out, err := alert(context.Background(), h.Ctx,
		json.RawMessage(`{"service_name":"payments","severity":"warning"}`))
	if err != nil {
		t.Fatalf("a failed channel must not fail the alert: %v", err)
	}

	notified := out.(map[string]any)["channels_notified"].([]string)
	if len(notified) != 1 || notified[0] != "telegram" {
		t.Errorf("channels_notified = %v, want telegram only", notified)
	}
}

func TestAlertExplicitChannelList(t *testing.T) {
	h := huitzotest.New()

	_, err := alert(context.Background(), h.Ctx,
		json.RawMessage(`{"service_name":"payments","severity":"info","channels":["email"]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Telegram.Sent) != 0 {
		t.Error("telegram should be skipped when not in channels")
	}
	if len(h.Email.Sent) != 1 {
		t.Error("email should be sent")
	}
}

func TestAlertValidation(t *testing.T) {
	h := huitzotest.New()

	_, err := alert(context.Background(), h.Ctx,
		json.RawMessage(`{"service_name":"payments","severity":"panic"}`))
	var ve *huitzo.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if ve.Field != "severity" {
		t.Errorf("field = %q", ve.Field)
	}
}

func seedTwoServices(t *testing.T, h *huitzotest.Harness) {
	t.Helper()
	h.HTTP.Responses["https://api.example.com/health"] = ok(200)
	h.HTTP.Responses["https://cdn.example.com/health"] = ok(503)
	_, err := healthCheck(context.Background(), h.Ctx, json.RawMessage(
		`{"endpoints":["https://api.example.com/health","https://cdn.example.com/health"]}`))
	if err != nil {
		t.Fatalf("seed health-check: %v", err)
	}
}

func TestStatusReportComputesUptime(t *testing.T) {
	h := huitzotest.New()
	seedTwoServices(t, h)
	h.LLM.Script("All quiet except cdn.")

	out, err := statusReport(context.Background(), h.Ctx, nil)
	if err != nil {
		t.Fatalf("status-report: %v", err)
	}

	res := out.(map[string]any)
	if res["total_services"] != 2 {
		t.Errorf("total_services = %v", res["total_services"])
	}
	if res["overall_uptime_percent"] != 50.0 {
		t.Errorf("overall uptime = %v, want 50", res["overall_uptime_percent"])
	}
	if res["ai_insights"] != "All quiet except cdn." {
		t.Errorf("insights = %v", res["ai_insights"])
	}

	services := res["services"].([]map[string]any)
	if services[0]["service_name"] != "api" || services[1]["service_name"] != "cdn" {
		t.Errorf("services not sorted by name: %v", services)
	}
	if services[0]["uptime_percent"] != 100.0 {
		t.Errorf("api uptime = %v", services[0]["uptime_percent"])
	}
	if services[1]["uptime_percent"] != 0.0 || services[1]["incidents"] != 1 {
		t.Errorf("cdn entry = %v", services[1])
	}
}

func TestStatusReportServiceFilter(t *testing.T) {
	h := huitzotest.New()
	seedTwoServices(t, h)
	h.LLM.Script("api only")

	out, err := statusReport(context.Background(), h.Ctx, json.RawMessage(`{"services":["api"]}`))
	if err != nil {
		t.Fatal(err)
	}
	res := out.(map[string]any)
	if res["total_services"] != 1 {
		t.Errorf("total_services = %v, want 1", res["total_services"])
	}
	if res["overall_uptime_percent"] != 100.0 {
		t.Errorf("overall uptime = %v", res["overall_uptime_percent"])
	}
}

func TestStatusReportFallbackNamesWorstService(t *testing.T) {
	h := huitzotest.New()
	seedTwoServices(t, h)
	h.LLM.Err = errors.New("llm down")

	out, err := statusReport(context.Background(), h.Ctx, nil)
	if err != nil {
		t.Fatalf("llm failure must fall back: %v", err)
	}
	insights := out.(map[string]any)["ai_insights"].(string)
	if !strings.Contains(insights, "cdn has the lowest uptime") {
		t.Errorf("fallback insights = %q", insights)
	}
}

func TestStatusReportNoData(t *testing.T) {
	h := huitzotest.New()
	h.LLM.Err = errors.New("llm down")

	out, err := statusReport(context.Background(), h.Ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	res := out.(map[string]any)
	if res["overall_uptime_percent"] != 100.0 {
		t.Errorf("uptime with no data = %v, want 100", res["overall_uptime_percent"])
	}
	if !strings.Contains(res["ai_insights"].(string), "Run health-check") {
		t.Errorf("insights = %v", res["ai_insights"])
	}
}

func TestCommandsRegister(t *testing.T) {
	reg := huitzo.NewRegistry()
	if err := reg.Register(Commands()...); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := reg.Lookup("monitor/health-check"); !ok {
		t.Error("monitor/health-check not registered")
	}
}
