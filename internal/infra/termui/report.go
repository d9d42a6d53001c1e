package termui

import (
	"fmt"
	"io"
	"strings"

	"github.com/huitzo/packkit/internal/domain"
)

// ReportPrinter renders validation reports for the terminal.
type ReportPrinter struct {
	theme Theme
	out   io.Writer
}

func NewReportPrinter(out io.Writer) *ReportPrinter {
	return &ReportPrinter{theme: DefaultTheme(), out: out}
}

func (p *ReportPrinter) Print(title string, rep *domain.Report) {
	fmt.Fprintln(p.out, p.theme.Title.Render(title))
	fmt.Fprintln(p.out)

	for _, c := range rep.Checks {
		var tag string
		switch c.Level {
		case domain.LevelPass:
			tag = p.theme.Pass.Render("PASS")
		case domain.LevelFail:
			tag = p.theme.Fail.Render("FAIL")
		case domain.LevelWarn:
			tag = p.theme.Warn.Render("WARN")
		default:
			tag = p.theme.Info.Render("INFO")
		}
		if c.Detail != "" {
			fmt.Fprintf(p.out, "  [%s] %s: %s\n", tag, c.Name, c.Detail)
		} else {
			fmt.Fprintf(p.out, "  [%s] %s\n", tag, c.Name)
		}
	}

	passes, fails, warns := rep.Counts()
	fmt.Fprintln(p.out)
	summary := fmt.Sprintf("%d passed, %d failed, %d warnings", passes, fails, warns)
	if rep.HasFailures() {
		fmt.Fprintln(p.out, p.theme.Fail.Render(strings.ToUpper("validation failed"))+" "+p.theme.Help.Render(summary))
	} else {
		fmt.Fprintln(p.out, p.theme.Pass.Render("validation passed")+" "+p.theme.Help.Render(summary))
	}
}
