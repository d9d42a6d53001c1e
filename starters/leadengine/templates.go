package leadengine

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
)

// Outreach emails are rendered with html/template so lead-provided values are
// escaped before they reach a mail client.

const baseLayout = `<html>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
%s
<hr style="border: none; border-top: 1px solid #eee; margin-top: 30px;">
<p style="font-size: 12px; color: #999;">
    Sent via Lead Engine | Powered by Huitzo
</p>
</body>
</html>`

type outreachTemplate struct {
	subject func(LeadRecord) string
	body    *template.Template
}

func mustBody(name, inner string) *template.Template {
	return template.Must(template.New(name).Parse(fmt.Sprintf(baseLayout, inner)))
}

var templates = map[string]outreachTemplate{
	"intro": {
		subject: func(l LeadRecord) string {
			return fmt.Sprintf("Hi %s - Quick intro from our team", l.ContactName)
		},
		body: mustBody("intro", `<p>Hi {{.ContactName}},</p>

<p>I came across <strong>{{.Company}}</strong> and was impressed by what
you're building. I'd love to share how we help companies like yours
accelerate their workflows with intelligent automation.</p>

<p>Would you have 15 minutes this week for a quick call?</p>

<p>Best regards,<br>Your Sales Team</p>`),
	},
	"follow-up": {
		subject: func(l LeadRecord) string {
			return fmt.Sprintf("Following up - %s", l.Company)
		},
		body: mustBody("follow-up", `<p>Hi {{.ContactName}},</p>

<p>I wanted to follow up on my previous message. I understand things get
busy, but I genuinely believe we could add value to <strong>{{.Company}}</strong>.</p>

<p>Here are a few quick wins our platform delivers:</p>
<ul>
    <li>AI-powered workflow automation</li>
    <li>Reduce manual data processing by 80%</li>
    <li>Real-time insights and reporting</li>
</ul>

<p>Happy to share a quick demo whenever works for you.</p>

<p>Best,<br>Your Sales Team</p>`),
	},
	"demo-invite": {
		subject: func(l LeadRecord) string {
			return fmt.Sprintf("Exclusive demo for %s", l.Company)
		},
		body: mustBody("demo-invite", `<p>Hi {{.ContactName}},</p>

<p>We'd love to give <strong>{{.Company}}</strong> an exclusive look at our
platform in action. Our live demo covers:</p>

<ol>
    <li><strong>AI Intelligence Packs</strong> - See how AI makes decisions, not just follows rules</li>
    <li><strong>Multi-channel Integration</strong> - Email, HTTP, storage, all in one platform</li>
    <li><strong>Real-time Analytics</strong> - Track performance and optimize workflows</li>
</ol>

<p>The demo takes about 20 minutes and is completely personalized to your
use case.</p>

<p>Looking forward to connecting!</p>

<p>Best,<br>Your Sales Team</p>`),
	},
}

func templateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func renderOutreach(name string, lead LeadRecord) (subject, html string, err error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", name)
	}

	var b strings.Builder
	if err := tmpl.body.Execute(&b, lead); err != nil {
		return "", "", err
	}
	return tmpl.subject(lead), b.String(), nil
}

// insertPersonalLine places an italicized opener after the greeting.
func insertPersonalLine(html string, lead LeadRecord, line string) string {
	greeting := fmt.Sprintf("<p>Hi %s,</p>", template.HTMLEscapeString(lead.ContactName))
	escaped := template.HTMLEscapeString(strings.TrimSpace(line))
	return strings.Replace(html, greeting,
		greeting+"\n<p><em>"+escaped+"</em></p>", 1)
}
