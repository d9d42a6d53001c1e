package leadengine

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/huitzo/packkit/pkg/huitzo"
)

const leadPrefix = "lead:"

// Lead tiers assigned by scoring.
const (
	TierHot      = "hot"
	TierWarm     = "warm"
	TierCold     = "cold"
	TierUnscored = "unscored"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// LeadRecord is the stored shape of one lead.
type LeadRecord struct {
	LeadID         string         `json:"lead_id"`
	Company        string         `json:"company"`
	ContactName    string         `json:"contact_name"`
	Email          string         `json:"email"`
	Website        string         `json:"website"`
	Notes          string         `json:"notes"`
	Score          int            `json:"score,omitempty"`
	Tier           string         `json:"tier,omitempty"`
	ScoreReasoning string         `json:"score_reasoning,omitempty"`
	OutreachSent   bool           `json:"outreach_sent"`
	CreatedAt      string         `json:"created_at"`
	ScoredAt       string         `json:"scored_at,omitempty"`
	OutreachAt     string         `json:"outreach_at,omitempty"`
	Enrichment     map[string]any `json:"enrichment,omitempty"`
}

func leadKey(id string) string { return leadPrefix + id }

func leadFromMap(m map[string]any) (LeadRecord, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return LeadRecord{}, err
	}
	var lead LeadRecord
	if err := json.Unmarshal(b, &lead); err != nil {
		return LeadRecord{}, err
	}
	return lead, nil
}

func (l LeadRecord) toMap() (map[string]any, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (l LeadRecord) metadata() map[string]string {
	tier := l.Tier
	if tier == "" {
		tier = TierUnscored
	}
	return map[string]string{
		"type":    "lead",
		"tier":    tier,
		"company": l.Company,
	}
}

type addLeadArgs struct {
	Company     string `json:"company"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	Notes       string `json:"notes"`
}

func (a *addLeadArgs) Validate() error {
	a.Company = strings.TrimSpace(a.Company)
	a.ContactName = strings.TrimSpace(a.ContactName)

	if a.Company == "" || len(a.Company) > 200 {
		return &huitzo.ValidationError{Field: "company", Value: a.Company, Message: "company must be 1-200 characters"}
	}
	if a.ContactName == "" || len(a.ContactName) > 200 {
		return &huitzo.ValidationError{Field: "contact_name", Value: a.ContactName, Message: "contact_name must be 1-200 characters"}
	}
	if !emailRe.MatchString(a.Email) {
		return &huitzo.ValidationError{Field: "email", Value: a.Email, Message: "invalid email address"}
	}
	a.Email = strings.ToLower(a.Email)
	if len(a.Website) > 500 {
		return &huitzo.ValidationError{Field: "website", Message: "website exceeds 500 characters"}
	}
	if len(a.Notes) > 2000 {
		return &huitzo.ValidationError{Field: "notes", Message: "notes exceed 2000 characters"}
	}
	return nil
}

type leadIDArgs struct {
	LeadID string `json:"lead_id"`
}

func (a *leadIDArgs) Validate() error {
	if a.LeadID == "" || len(a.LeadID) > 100 {
		return &huitzo.ValidationError{Field: "lead_id", Value: a.LeadID, Message: "lead_id must be 1-100 characters"}
	}
	return nil
}

type sendOutreachArgs struct {
	LeadID       string `json:"lead_id"`
	TemplateName string `json:"template_name"`
}

func (a *sendOutreachArgs) Validate() error {
	if a.LeadID == "" || len(a.LeadID) > 100 {
		return &huitzo.ValidationError{Field: "lead_id", Value: a.LeadID, Message: "lead_id must be 1-100 characters"}
	}
	if a.TemplateName == "" {
		a.TemplateName = "intro"
	}
	if _, ok := templates[a.TemplateName]; !ok {
		return &huitzo.ValidationError{
			Field:   "template_name",
			Value:   a.TemplateName,
			Message: "unknown template, available: " + strings.Join(templateNames(), ", "),
		}
	}
	return nil
}

type pipelineReportArgs struct {
	IncludeDetails bool `json:"include_details"`
}

func tierFromScore(score int) string {
	switch {
	case score >= 70:
		return TierHot
	case score >= 40:
		return TierWarm
	default:
		return TierCold
	}
}
