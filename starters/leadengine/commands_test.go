package leadengine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/huitzo/packkit/pkg/huitzo"
	"github.com/huitzo/packkit/pkg/huitzo/huitzotest"
)

func addTestLead(t *testing.T, h *huitzotest.Harness) string {
	t.Helper()
	out, err := addLead(context.Background(), h.Ctx, json.RawMessage(
		`{"company":"Acme Corp","contact_name":"Ada","email":"Ada@Acme.example","notes":"met at conf"}`))
	if err != nil {
		t.Fatalf("add-lead: %v", err)
	}
	return out.(map[string]any)["lead_id"].(string)
}

func TestAddLeadCreatesRecord(t *testing.T) {
	h := huitzotest.New()

	out, err := addLead(context.Background(), h.Ctx, json.RawMessage(
		`{"company":"  Acme Corp  ","contact_name":"Ada","email":"ADA@ACME.example"}`))
	if err != nil {
		t.Fatalf("add-lead: %v", err)
	}

	res := out.(map[string]any)
	id := res["lead_id"].(string)
	if len(id) != 8 {
		t.Errorf("lead_id = %q, want 8 chars", id)
	}
	if res["company"] != "Acme Corp" {
		t.Errorf("company = %v, want trimmed", res["company"])
	}
	if res["email"] != "ada@acme.example" {
		t.Errorf("email = %v, want lowercased", res["email"])
	}
	if res["enriched"] != false {
		t.Error("no website means no enrichment")
	}

	stored, err := h.Storage.Get(context.Background(), "lead:"+id)
	if err != nil || stored == nil {
		t.Fatalf("lead not stored: %v", err)
	}
}

func TestAddLeadEnrichmentNeverFails(t *testing.T) {
	h := huitzotest.New()
	h.HTTP.Err = errors.New("enrichment api down")

	out, err := addLead(context.Background(), h.Ctx, json.RawMessage(
		`{"company":"Acme","contact_name":"Ada","email":"a@b.co","website":"acme.example"}`))
	if err != nil {
		t.Fatalf("enrichment failure must not fail the command: %v", err)
	}
	if out.(map[string]any)["enriched"] != false {
		t.Error("failed enrichment should report enriched=false")
	}
}

func TestAddLeadEnrichmentAttachesData(t *testing.T) {
	h := huitzotest.New()
	h.HTTP.Responses[enrichmentURL] = huitzo.HTTPResult{
		StatusCode: 200,
		Body:       []byte(`{"industry":"robotics","size":"50-100"}`),
	}

	out, err := addLead(context.Background(), h.Ctx, json.RawMessage(
		`{"company":"Acme","contact_name":"Ada","email":"a@b.co","website":"acme.example"}`))
	if err != nil {
		t.Fatal(err)
	}
	if out.(map[string]any)["enriched"] != true {
		t.Error("expected enriched=true")
	}
}

func TestAddLeadValidation(t *testing.T) {
	h := huitzotest.New()

	cases := []string{
		`{"company":"","contact_name":"Ada","email":"a@b.co"}`,
		`{"company":"   ","contact_name":"Ada","email":"a@b.co"}`,
		`{"company":"Acme","contact_name":"Ada","email":"not-an-email"}`,
	}
	for _, raw := range cases {
		_, err := addLead(context.Background(), h.Ctx, json.RawMessage(raw))
		var ve *huitzo.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("args %s: err = %v, want validation error", raw, err)
		}
	}
}

func TestScoreLeadAssignsTier(t *testing.T) {
	h := huitzotest.New()
	id := addTestLead(t, h)

	h.LLM.Script(`{"score":85,"tier":"hot","reasoning":"strong fit","strengths":["domain"],"concerns":[]}`)

	out, err := scoreLead(context.Background(), h.Ctx, json.RawMessage(`{"lead_id":"`+id+`"}`))
	if err != nil {
		t.Fatalf("score-lead: %v", err)
	}

	res := out.(map[string]any)
	if res["score"] != 85 {
		t.Errorf("score = %v", res["score"])
	}
	if res["tier"] != "hot" {
		t.Errorf("tier = %v", res["tier"])
	}

	recs, err := h.Storage.Query(context.Background(), "lead:", map[string]string{"tier": "hot"}, 0)
	if err != nil || len(recs) != 1 {
		t.Errorf("scored lead should be queryable by tier metadata: %v, %d", err, len(recs))
	}
}

func TestScoreLeadDerivesTierFromScore(t *testing.T) {
	h := huitzotest.New()
	id := addTestLead(t, h)

	h.LLM.Script(`{"score":55,"tier":"lukewarm","reasoning":"ok"}`)

	out, err := scoreLead(context.Background(), h.Ctx, json.RawMessage(`{"lead_id":"`+id+`"}`))
	if err != nil {
		t.Fatal(err)
	}
	if out.(map[string]any)["tier"] != "warm" {
		t.Errorf("tier = %v, want warm derived from score 55", out.(map[string]any)["tier"])
	}
}

func TestScoreLeadUnknownID(t *testing.T) {
	h := huitzotest.New()

	_, err := scoreLead(context.Background(), h.Ctx, json.RawMessage(`{"lead_id":"nope1234"}`))
	var ce *huitzo.CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want CommandError", err)
	}
	if ce.Details["lead_id"] != "nope1234" {
		t.Errorf("details = %v", ce.Details)
	}
}

func TestSendOutreachRendersAndSends(t *testing.T) {
	h := huitzotest.New()
	id := addTestLead(t, h)
	h.LLM.Script("I loved your robotics demo at the conference.")

	out, err := sendOutreach(context.Background(), h.Ctx,
		json.RawMessage(`{"lead_id":"`+id+`","template_name":"intro"}`))
	if err != nil {
		t.Fatalf("send-outreach: %v", err)
	}

	if len(h.Email.Sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(h.Email.Sent))
	}
	msg := h.Email.Sent[0]
	if msg.To != "ada@acme.example" {
		t.Errorf("to = %q", msg.To)
	}
	if !strings.Contains(msg.Subject, "Quick intro") {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Acme Corp") {
		t.Error("body should name the company")
	}
	if !strings.Contains(msg.HTML, "robotics demo") {
		t.Error("personalization line should be inserted")
	}

	if out.(map[string]any)["template"] != "intro" {
		t.Errorf("result = %v", out)
	}

	stored, _ := h.Storage.Get(context.Background(), "lead:"+id)
	if stored["outreach_sent"] != true {
		t.Error("lead record should mark outreach_sent")
	}
}

func TestSendOutreachSurvivesLLMFailure(t *testing.T) {
	h := huitzotest.New()
	id := addTestLead(t, h)
	h.LLM.Err = errors.New("llm down")

	_, err := sendOutreach(context.Background(), h.Ctx,
		json.RawMessage(`{"lead_id":"`+id+`","template_name":"follow-up"}`))
	if err != nil {
		t.Fatalf("personalization failure must not fail the send: %v", err)
	}
	if len(h.Email.Sent) != 1 {
		t.Fatal("base template should still be sent")
	}
}

func TestSendOutreachUnknownTemplate(t *testing.T) {
	h := huitzotest.New()
	id := addTestLead(t, h)

	_, err := sendOutreach(context.Background(), h.Ctx,
		json.RawMessage(`{"lead_id":"`+id+`","template_name":"haiku"}`))
	var ve *huitzo.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(h.Email.Sent) != 0 {
		t.Error("nothing should be sent for an unknown template")
	}
}

func TestPipelineReportCountsTiers(t *testing.T) {
	h := huitzotest.New()
	ctx := context.Background()

	hotID := addTestLead(t, h)
	h.LLM.Script(`{"score":90,"tier":"hot","reasoning":"x"}`)
	if _, err := scoreLead(ctx, h.Ctx, json.RawMessage(`{"lead_id":"`+hotID+`"}`)); err != nil {
		t.Fatal(err)
	}
	addTestLead(t, h)

	h.LLM.Script("Focus on Acme Corp today.")
	out, err := pipelineReport(ctx, h.Ctx, json.RawMessage(`{"include_details":true}`))
	if err != nil {
		t.Fatalf("pipeline-report: %v", err)
	}

	res := out.(map[string]any)
	if res["total_leads"] != 2 {
		t.Errorf("total = %v", res["total_leads"])
	}
	if res["hot_leads"] != 1 || res["unscored_leads"] != 1 {
		t.Errorf("hot = %v, unscored = %v", res["hot_leads"], res["unscored_leads"])
	}
	if res["summary"] != "Focus on Acme Corp today." {
		t.Errorf("summary = %v", res["summary"])
	}
	if _, ok := res["leads"]; !ok {
		t.Error("include_details should add lead briefs")
	}
}

func TestPipelineReportFallbackSummary(t *testing.T) {
	h := huitzotest.New()
	addTestLead(t, h)
	h.LLM.Err = errors.New("llm down")

	out, err := pipelineReport(context.Background(), h.Ctx, nil)
	if err != nil {
		t.Fatalf("llm failure must fall back: %v", err)
	}
	summary := out.(map[string]any)["summary"].(string)
	if !strings.Contains(summary, "1 unscored") {
		t.Errorf("fallback summary = %q", summary)
	}
}
