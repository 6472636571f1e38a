// Package renderer renders store reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed *.md
var templates embed.FS

// ReportOptions holds configuration for rendering a store report.
type ReportOptions struct {
	SkipUsers bool // Do not render the users section.
}

// RenderReport renders the Report struct to a markdown string.
func RenderReport(r *Report, opts ReportOptions) string {
	partials := map[string]string{
		"report_title":    "report_title.md",
		"report_totals":   "report_totals.md",
		"report_accounts": "report_accounts.md",
		"report_rates":    "report_rates.md",
	}
	// An empty file name results in an empty template.
	if !opts.SkipUsers {
		partials["report_users"] = "report_users.md"
	} else {
		partials["report_users"] = ""
	}
	return renderTemplate("report", "report.md", partials, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
