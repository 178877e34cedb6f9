package services

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const (
	placeholderPreviewHTML = `<div style="filter: blur(6px); pointer-events:none;">CV placeholder</div>`
	failedPreviewHTML      = `<div style="filter: blur(6px); pointer-events:none;">Generation failed</div>`
)

var cvTemplate = template.Must(template.New("cv").Funcs(template.FuncMap{
	"join":  strings.Join,
	"dates": joinDates,
}).Parse(cvTemplateSource))

// RenderCVHTML renders a single-column, ATS-friendly CV with inline styles.
func RenderCVHTML(cv StructuredCV) (string, error) {
	var buf bytes.Buffer
	if err := cvTemplate.Execute(&buf, cv); err != nil {
		return "", fmt.Errorf("failed to render cv html: %w", err)
	}
	return buf.String(), nil
}

// BlurredPreview wraps rendered CV HTML in the paywall teaser.
func BlurredPreview(cvHTML string) string {
	return `<div style="position:relative;"><div style="filter:blur(8px);pointer-events:none;user-select:none;">` +
		cvHTML +
		`</div><div style="position:absolute;inset:0;background:linear-gradient(180deg, rgba(255,255,255,0.6), rgba(255,255,255,0.9));"></div></div>`
}

// EnsureHTMLDocument wraps a fragment in a minimal document for printing.
func EnsureHTMLDocument(fragment string) string {
	if strings.Contains(strings.ToLower(fragment), "<html") {
		return fragment
	}
	return `<!DOCTYPE html><html><head><meta charset="utf-8"><style>body{font-family:Inter,system-ui,-apple-system,sans-serif;color:#0f172a;}</style></head><body>` +
		fragment +
		`</body></html>`
}

func joinDates(start, end string) string {
	parts := make([]string, 0, 2)
	if start != "" {
		parts = append(parts, start)
	}
	if end != "" {
		parts = append(parts, end)
	}
	return strings.Join(parts, " – ")
}

const cvTemplateSource = `<div style="max-width:800px;margin:0 auto;background:#fff;padding:32px;font-family:Inter, system-ui, -apple-system, sans-serif;color:#0f172a;line-height:1.6;">
<header style="margin-bottom:20px;">
<div style="font-size:30px;font-weight:700;margin-bottom:4px;">{{.FullName}}</div>
<div style="font-size:16px;color:#475569;margin-bottom:8px;">{{.Headline}}</div>
<div style="font-size:12px;color:#64748b;">{{range $i, $c := .Contact.Lines}}{{if $i}} | {{end}}<span>{{$c}}</span>{{end}}</div>
</header>
<section style="margin-bottom:24px;">
<h3 style="font-size:10px;font-weight:700;text-transform:uppercase;letter-spacing:0.15em;color:#64748b;margin:0 0 8px 0;">Professional Summary</h3>
<p style="margin:0;font-size:14px;">{{.Summary}}</p>
</section>
{{- if .SkillsByCategory}}
<section style="margin-bottom:24px;">
<h3 style="font-size:10px;font-weight:700;text-transform:uppercase;letter-spacing:0.15em;color:#64748b;margin:0 0 8px 0;">Key Skills</h3>
{{- range .SkillsByCategory}}
<div><div style="font-weight:600;font-size:13px;margin-bottom:2px;">{{.Category}}</div><div style="font-size:13px;">{{join .Skills ", "}}</div></div>
{{- end}}
</section>
{{- end}}
{{- if .Experiences}}
<section style="margin-bottom:24px;">
<h3 style="font-size:10px;font-weight:700;text-transform:uppercase;letter-spacing:0.15em;color:#64748b;margin:0 0 8px 0;">Experience</h3>
{{- range .Experiences}}
<div style="margin-bottom:14px;">
<div style="font-weight:700;font-size:15px;">{{.RoleTitle}}</div>
<div style="font-size:13px;color:#475569;">{{.Company}}{{if .Location}} • {{.Location}}{{end}}</div>
<div style="font-size:12px;color:#94a3b8;margin-bottom:6px;">{{dates .StartDate .EndDate}}</div>
{{- if .Bullets}}
<ul style="margin:0 0 12px 18px;padding:0;list-style:disc;">{{range .Bullets}}<li style="margin-bottom:6px;line-height:1.6;">{{.}}</li>{{end}}</ul>
{{- end}}
</div>
{{- end}}
</section>
{{- end}}
{{- if .Projects}}
<section style="margin-bottom:24px;">
<h3 style="font-size:10px;font-weight:700;text-transform:uppercase;letter-spacing:0.15em;color:#64748b;margin:0 0 8px 0;">Projects</h3>
{{- range .Projects}}
<div style="margin-bottom:12px;">
<div style="font-weight:700;font-size:14px;">{{.Name}}</div>
<div style="font-size:13px;color:#475569;margin-bottom:4px;">{{.Description}}</div>
{{- if .Bullets}}
<ul style="margin:0 0 12px 18px;padding:0;list-style:disc;">{{range .Bullets}}<li style="margin-bottom:6px;line-height:1.6;">{{.}}</li>{{end}}</ul>
{{- end}}
</div>
{{- end}}
</section>
{{- end}}
{{- if .Education}}
<section style="margin-bottom:24px;">
<h3 style="font-size:10px;font-weight:700;text-transform:uppercase;letter-spacing:0.15em;color:#64748b;margin:0 0 8px 0;">Education</h3>
{{- range .Education}}
<div style="margin-bottom:10px;">
<div style="font-weight:700;font-size:14px;">{{.Institution}}</div>
<div style="font-size:13px;color:#475569;">{{.Degree}}{{if .Location}} • {{.Location}}{{end}}</div>
<div style="font-size:12px;color:#94a3b8;">{{dates .StartDate .EndDate}}</div>
</div>
{{- end}}
</section>
{{- end}}
{{- if .Certifications}}
<section style="margin-bottom:24px;">
<h3 style="font-size:10px;font-weight:700;text-transform:uppercase;letter-spacing:0.15em;color:#64748b;margin:0 0 8px 0;">Certifications</h3>
<ul style="margin:0 0 12px 18px;padding:0;list-style:disc;">{{range .Certifications}}<li style="margin-bottom:6px;">{{.}}</li>{{end}}</ul>
</section>
{{- end}}
{{- if .Interests}}
<section style="margin-bottom:12px;">
<h3 style="font-size:10px;font-weight:700;text-transform:uppercase;letter-spacing:0.15em;color:#64748b;margin:0 0 8px 0;">Interests</h3>
<p style="margin:0;font-size:13px;">{{join .Interests ", "}}</p>
</section>
{{- end}}
</div>`
