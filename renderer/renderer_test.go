package renderer

import (
	"bytes"
	"io/fs"
	"path"
	"strings"
	"testing"
	"text/template"

	"github.com/etnz/exchange"
)

const testStore = `USER alice pw1
USER bob pw2
ACC ACC1000 IND 1 alice 11.00 0.00 0.00
ACC ACC2000 JOINT 2 alice,bob 0.00 5.00 0.85
`

func newTestReport(t *testing.T, content string) *Report {
	t.Helper()
	s, err := exchange.DecodeStore(strings.NewReader(content))
	if err != nil {
		t.Fatalf("DecodeStore() failed: %v", err)
	}
	return NewReport("exchange_db.txt", s)
}

func TestTemplatePartials(t *testing.T) {
	testCases := []struct {
		name  string
		store string
		want  string
	}{
		{
			name:  "report_totals",
			store: testStore,
			want: "## Totals\n\n" +
				"| Currency | Balance |\n" +
				"|:---|---:|\n" +
				"| USD | 11.00 |\n" +
				"| EUR | 5.00 |\n" +
				"| GBP | 0.85 |\n",
		},
		{
			name:  "report_accounts",
			store: testStore,
			want: "## Accounts\n\n" +
				"| Account | Kind | Owners | USD | EUR | GBP | Value |\n" +
				"|:---|:---|:---|---:|---:|---:|---:|\n" +
				"| ACC1000 | IND | alice | 11.00 | 0.00 | 0.00 | 10.00 |\n" +
				"| ACC2000 | JOINT | alice,bob | 0.00 | 5.00 | 0.85 | 6.00 |\n",
		},
		{
			name:  "report_accounts",
			store: "",
			want:  "## Accounts\n\nNo accounts.\n",
		},
		{
			name:  "report_users",
			store: testStore,
			want: "\n## Users\n\n" +
				"| User | Accounts |\n" +
				"|:---|---:|\n" +
				"| alice | 2 |\n" +
				"| bob | 1 |\n",
		},
		{
			name:  "report_users",
			store: "",
			want:  "\n## Users\n\nNo users.\n",
		},
		{
			name:  "report_rates",
			store: "",
			want:  "## Rates\n\n* 1 EUR = 1.10 USD\n* 1 EUR = 0.85 GBP\n",
		},
	}

	// Every partial must be covered.
	tested := make(map[string]bool)
	for _, tc := range testCases {
		tested[tc.name+".md"] = true
	}
	tested["report_title.md"] = true // covered by TestRenderReport
	partials, err := fs.Glob(templates, "report_*.md")
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range partials {
		if !tested[path.Base(p)] {
			t.Errorf("untested template partial found: %s. Please add a test case to TestTemplatePartials.", p)
		}
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := newTestReport(t, tc.store)
			content, err := fs.ReadFile(templates, tc.name+".md")
			if err != nil {
				t.Fatalf("failed to read template: %v", err)
			}
			tmpl, err := template.New(tc.name).Parse(string(content))
			if err != nil {
				t.Fatalf("failed to parse template: %v", err)
			}

			// Act
			var got bytes.Buffer
			if err := tmpl.Execute(&got, r); err != nil {
				t.Fatalf("failed to execute template: %v", err)
			}

			// Assert
			if got.String() != tc.want {
				t.Errorf("rendered output mismatch:\ngot:\n%s\nwant:\n%s\ngot: %q\nwant:%q", got.String(), tc.want, got.String(), tc.want)
			}
		})
	}
}

func TestNewReport(t *testing.T) {
	r := newTestReport(t, testStore)

	if len(r.Users) != 2 || len(r.Accounts) != 2 {
		t.Fatalf("NewReport() got %d users and %d accounts, want 2 and 2", len(r.Users), len(r.Accounts))
	}
	if got, want := r.TotalValue.Fixed(), "16.00"; got != want {
		t.Errorf("TotalValue = %s, want %s", got, want)
	}
	if got := r.TotalValue.Currency(); got != exchange.EUR {
		t.Errorf("TotalValue currency = %s, want EUR", got)
	}
}

func TestRenderReport(t *testing.T) {
	r := newTestReport(t, testStore)

	t.Run("full", func(t *testing.T) {
		got := RenderReport(r, ReportOptions{})
		for _, want := range []string{
			"# Exchange Report\n\nStore `exchange_db.txt` holds 2 users and 2 accounts, worth **",
			"\n\n## Totals\n",
			"| GBP | 0.85 |\n\n## Accounts\n",
			"| 6.00 |\n\n## Users\n",
			"| bob | 1 |\n\n## Rates\n",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("RenderReport() does not contain %q:\n%s", want, got)
			}
		}
		if !strings.HasSuffix(got, "* 1 EUR = 0.85 GBP\n") {
			t.Errorf("RenderReport() has unexpected ending:\n%q", got)
		}
	})

	t.Run("skip users", func(t *testing.T) {
		got := RenderReport(r, ReportOptions{SkipUsers: true})
		if strings.Contains(got, "## Users") {
			t.Errorf("RenderReport() rendered users although skipped:\n%s", got)
		}
		if !strings.Contains(got, "| 6.00 |\n\n## Rates\n") {
			t.Errorf("RenderReport() sections are not separated:\n%s", got)
		}
	})
}
