// Package leadengine is the sales automation starter pack. Its commands
// compose: add-lead feeds score-lead, which feeds send-outreach and
// pipeline-report.
package leadengine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huitzo/packkit/pkg/huitzo"
)

const enrichmentURL = "https://api.enrichment.example.com/v1/company"

// Commands returns the leads namespace.
func Commands() []*huitzo.Command {
	return []*huitzo.Command{
		{
			Name:        "add-lead",
			Namespace:   "leads",
			Description: "Register a lead with optional company enrichment",
			Timeout:     30 * time.Second,
			Retries:     3,
			Handler:     addLead,
		},
		{
			Name:        "score-lead",
			Namespace:   "leads",
			Description: "AI-score a lead 0-100 with a tier",
			Timeout:     60 * time.Second,
			Retries:     3,
			Handler:     scoreLead,
		},
		{
			Name:        "send-outreach",
			Namespace:   "leads",
			Description: "Send a templated outreach email",
			Timeout:     30 * time.Second,
			Retries:     3,
			Handler:     sendOutreach,
		},
		{
			Name:        "pipeline-report",
			Namespace:   "leads",
			Description: "Summarize the pipeline by tier",
			Timeout:     60 * time.Second,
			Retries:     3,
			Handler:     pipelineReport,
		},
	}
}

// enrichCompany is best effort: any failure yields empty data, never an
// error, so add-lead works without the enrichment API.
func enrichCompany(ctx context.Context, hctx *huitzo.Context, website string) map[string]any {
	if website == "" || hctx.HTTP == nil {
		return nil
	}

	res, err := hctx.HTTP.Get(ctx, enrichmentURL,
		huitzo.WithParams(map[string]string{"domain": website}),
		huitzo.WithRequestTimeout(5*time.Second))
	if err != nil || res.StatusCode != 200 {
		return nil
	}

	var data map[string]any
	if err := json.Unmarshal(res.Body, &data); err != nil {
		return nil
	}
	return data
}

func addLead(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args addLeadArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	leadID := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	now := time.Now().UTC().Format(time.RFC3339)

	lead := LeadRecord{
		LeadID:      leadID,
		Company:     args.Company,
		ContactName: args.ContactName,
		Email:       args.Email,
		Website:     args.Website,
		Notes:       args.Notes,
		CreatedAt:   now,
		Enrichment:  enrichCompany(ctx, hctx, args.Website),
	}

	value, err := lead.toMap()
	if err != nil {
		return nil, err
	}
	if err := hctx.Storage.Save(ctx, leadKey(leadID), value,
		huitzo.WithMetadata(lead.metadata())); err != nil {
		return nil, err
	}

	hctx.Logger().Info("lead.added", "lead_id", leadID, "company", args.Company)

	return map[string]any{
		"lead_id":      leadID,
		"company":      args.Company,
		"contact_name": args.ContactName,
		"email":        args.Email,
		"created_at":   now,
		"enriched":     lead.Enrichment != nil,
	}, nil
}

func scoreLead(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args leadIDArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	value, err := hctx.Storage.Get(ctx, leadKey(args.LeadID))
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, huitzo.NewCommandError(
			fmt.Sprintf("Lead %q not found", args.LeadID),
			map[string]any{"lead_id": args.LeadID})
	}
	lead, err := leadFromMap(value)
	if err != nil {
		return nil, err
	}

	enrichmentContext := ""
	if len(lead.Enrichment) > 0 {
		b, _ := json.MarshalIndent(lead.Enrichment, "", "  ")
		enrichmentContext = "\n\nCompany Enrichment Data:\n" + string(b)
	}

	prompt := fmt.Sprintf(`Score this sales lead from 0-100 based on fit and potential value.

Lead Information:
- Company: %s
- Contact: %s (%s)
- Website: %s
- Notes: %s%s

Respond with valid JSON:
{"score": 0, "tier": "hot", "reasoning": "...", "strengths": ["..."], "concerns": ["..."]}

Scoring guide:
- 70-100 = "hot" (high-value, strong fit)
- 40-69 = "warm" (potential, needs nurturing)
- 0-39 = "cold" (low fit or insufficient data)`,
		lead.Company, lead.ContactName, lead.Email,
		orDefault(lead.Website, "Not provided"),
		orDefault(lead.Notes, "None"),
		enrichmentContext)

	resp, err := huitzo.CompleteJSON(ctx, hctx.LLM, huitzo.CompletionRequest{
		Prompt:      prompt,
		System:      "You are an experienced B2B sales analyst. Score leads objectively based on available data. When data is limited, lean toward conservative scores. Always respond with valid JSON matching the requested structure.",
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	score := clampScore(resp["score"])
	tier, _ := resp["tier"].(string)
	switch tier {
	case TierHot, TierWarm, TierCold:
	default:
		tier = tierFromScore(score)
	}
	reasoning, _ := resp["reasoning"].(string)

	now := time.Now().UTC().Format(time.RFC3339)
	lead.Score = score
	lead.Tier = tier
	lead.ScoreReasoning = reasoning
	lead.ScoredAt = now

	updated, err := lead.toMap()
	if err != nil {
		return nil, err
	}
	if err := hctx.Storage.Save(ctx, leadKey(args.LeadID), updated,
		huitzo.WithMetadata(lead.metadata())); err != nil {
		return nil, err
	}

	hctx.Logger().Info("lead.scored", "lead_id", args.LeadID, "score", score, "tier", tier)

	return map[string]any{
		"lead_id":   args.LeadID,
		"company":   lead.Company,
		"score":     score,
		"tier":      tier,
		"reasoning": reasoning,
		"strengths": stringList(resp["strengths"]),
		"concerns":  stringList(resp["concerns"]),
		"scored_at": now,
	}, nil
}

func sendOutreach(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args sendOutreachArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	value, err := hctx.Storage.Get(ctx, leadKey(args.LeadID))
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, huitzo.NewCommandError(
			fmt.Sprintf("Lead %q not found", args.LeadID),
			map[string]any{"lead_id": args.LeadID})
	}
	lead, err := leadFromMap(value)
	if err != nil {
		return nil, err
	}

	subject, html, err := renderOutreach(args.TemplateName, lead)
	if err != nil {
		return nil, err
	}

	// Personalization is optional, the base template is sent when the LLM
	// is unavailable.
	if hctx.LLM != nil {
		line, perr := hctx.LLM.Complete(ctx, huitzo.CompletionRequest{
			Prompt: fmt.Sprintf(`Personalize this sales email for %s at %s.

Current email subject: %s
Lead notes: %s

Suggest a brief personalized opening line (1 sentence) that references
something specific about their company. Respond with just the sentence.`,
				lead.ContactName, lead.Company, subject, orDefault(lead.Notes, "None")),
			Temperature: 0.7,
			MaxTokens:   100,
		})
		if perr == nil && strings.TrimSpace(line) != "" {
			html = insertPersonalLine(html, lead, line)
		}
	}

	if err := hctx.Email.Send(ctx, huitzo.Email{
		To:      lead.Email,
		Subject: subject,
		HTML:    html,
	}); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	lead.OutreachSent = true
	lead.OutreachAt = now
	updated, err := lead.toMap()
	if err != nil {
		return nil, err
	}
	if err := hctx.Storage.Save(ctx, leadKey(args.LeadID), updated,
		huitzo.WithMetadata(lead.metadata())); err != nil {
		return nil, err
	}

	hctx.Logger().Info("lead.outreach", "lead_id", args.LeadID, "template", args.TemplateName)

	return map[string]any{
		"lead_id":  args.LeadID,
		"company":  lead.Company,
		"email":    lead.Email,
		"template": args.TemplateName,
		"subject":  subject,
		"sent_at":  now,
	}, nil
}

func pipelineReport(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args pipelineReportArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	records, err := hctx.Storage.Query(ctx, leadPrefix, map[string]string{"type": "lead"}, 500)
	if err != nil {
		return nil, err
	}

	byTier := map[string][]LeadRecord{}
	outreachCount := 0
	for _, rec := range records {
		lead, err := leadFromMap(rec.Value)
		if err != nil {
			continue
		}
		tier := lead.Tier
		if tier == "" {
			tier = TierUnscored
		}
		byTier[tier] = append(byTier[tier], lead)
		if lead.OutreachSent {
			outreachCount++
		}
	}

	total := len(records)
	hot, warm := byTier[TierHot], byTier[TierWarm]
	cold, unscored := byTier[TierCold], byTier[TierUnscored]

	summary, err := hctx.LLM.Complete(ctx, huitzo.CompletionRequest{
		Prompt: fmt.Sprintf(`Generate a brief pipeline report summary.

Pipeline Stats:
- Total leads: %d
- Hot leads (score 70+): %d
- Warm leads (score 40-69): %d
- Cold leads (score <40): %d
- Unscored leads: %d
- Outreach sent: %d

Hot leads: %s
Warm leads: %s

Provide a 2-3 sentence actionable summary with recommendations.
Focus on what actions the sales team should take today.`,
			total, len(hot), len(warm), len(cold), len(unscored), outreachCount,
			companies(hot), companies(warm)),
		System:      "You are a sales operations analyst. Be concise and actionable.",
		Temperature: 0.5,
		MaxTokens:   200,
	})
	if err != nil || strings.TrimSpace(summary) == "" {
		summary = fmt.Sprintf(
			"Pipeline has %d leads: %d hot, %d warm, %d cold, %d unscored. %d have received outreach.",
			total, len(hot), len(warm), len(cold), len(unscored), outreachCount)
	}

	result := map[string]any{
		"total_leads":    total,
		"hot_leads":      len(hot),
		"warm_leads":     len(warm),
		"cold_leads":     len(cold),
		"unscored_leads": len(unscored),
		"outreach_sent":  outreachCount,
		"summary":        summary,
	}

	if args.IncludeDetails {
		result["leads"] = map[string]any{
			"hot":      briefs(hot),
			"warm":     briefs(warm),
			"cold":     briefs(cold),
			"unscored": briefs(unscored),
		}
	}
	return result, nil
}

func briefs(leads []LeadRecord) []map[string]any {
	out := make([]map[string]any, 0, len(leads))
	for _, l := range leads {
		out = append(out, map[string]any{
			"lead_id":       l.LeadID,
			"company":       l.Company,
			"contact_name":  l.ContactName,
			"score":         l.Score,
			"tier":          l.Tier,
			"outreach_sent": l.OutreachSent,
		})
	}
	return out
}

func companies(leads []LeadRecord) string {
	if len(leads) == 0 {
		return "None"
	}
	names := make([]string, 0, len(leads))
	for _, l := range leads {
		names = append(names, l.Company)
	}
	return strings.Join(names, ", ")
}

func clampScore(v any) int {
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	score := int(f)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
