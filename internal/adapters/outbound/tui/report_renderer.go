package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/prfix/prfix/internal/domain"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderApplyReport renders an ApplyReport as a styled TUI string.
func RenderApplyReport(report *domain.ApplyReport) string {
	var b strings.Builder

	// Header
	mode := "Applied fixes"
	if report.DryRun {
		mode = "Dry run"
	}
	tally := passStyle.Render(fmt.Sprintf("%d succeeded", report.Succeeded)) + "  "
	if report.Failed > 0 {
		tally += failStyle.Render(fmt.Sprintf("%d failed", report.Failed))
	} else {
		tally += dimStyle.Render("0 failed")
	}
	b.WriteString(boxStyle.Render(titleStyle.Render(mode) + "\n" + tally))
	b.WriteString("\n")

	renderResultSection(&b, "Files", report.Results)

	if failed := report.FailedResults(); len(failed) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s %s\n",
			sectionHeaderStyle.Render("Failed"),
			dimStyle.Render(fmt.Sprintf("(%d)", len(failed))),
		)
		for _, r := range failed {
			fmt.Fprintf(&b, "    %s %s\n", failStyle.Render(r.File), faintStyle.Render(r.Error))
		}
	}

	if report.Commit != nil {
		b.WriteString("\n")
		line := fmt.Sprintf("  %s %s", sectionHeaderStyle.Render("Commit"), report.Commit.Hash)
		if report.Commit.Pushed {
			line += "  " + passStyle.Render("pushed")
		}
		b.WriteString(line + "\n")
	}

	if p := report.Preview; p != nil && (len(p.Files) > 0 || p.Diff != "") {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s %s\n",
			sectionHeaderStyle.Render("Changed"),
			dimStyle.Render(fmt.Sprintf("(%d)", len(p.Files))),
		)
		for _, f := range p.Files {
			b.WriteString("    " + fileStyle.Render(f) + "\n")
		}
		if p.Diff != "" {
			b.WriteString("\n")
			for _, line := range strings.Split(strings.TrimRight(p.Diff, "\n"), "\n") {
				b.WriteString("    " + diffLine(line) + "\n")
			}
			if p.Truncated {
				b.WriteString("    " + faintStyle.Render("... (truncated)") + "\n")
			}
		}
	}

	// Footer
	if report.DryRun {
		b.WriteString("\n")
		b.WriteString("  " + hintStyle.Render("Run without --dry-run to write changes."))
		b.WriteString("\n")
	}

	return b.String()
}

func renderResultSection(b *strings.Builder, title string, results []domain.FixResult) {
	b.WriteString("\n")
	fmt.Fprintf(b, "  %s %s\n",
		sectionHeaderStyle.Render(title),
		dimStyle.Render(fmt.Sprintf("(%d)", len(results))),
	)
	if len(results) == 0 {
		b.WriteString("    " + faintStyle.Render("(none)") + "\n")
		return
	}

	for _, r := range results {
		switch {
		case !r.Success:
			fmt.Fprintf(b, "    %s %s\n", failStyle.Render("✘"), r.File)
		case r.Changed:
			fmt.Fprintf(b, "    %s %s  %s\n", passStyle.Render("✔"), r.File, dimStyle.Render(fmt.Sprintf("%d edits", r.Edits)))
		default:
			fmt.Fprintf(b, "    %s %s  %s\n", skipStyle.Render("○"), r.File, skipStyle.Render("unchanged"))
		}
	}
}

func diffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return titleStyle.Render(line)
	case strings.HasPrefix(line, "+"):
		return passStyle.Render(line)
	case strings.HasPrefix(line, "-"):
		return failStyle.Render(line)
	case strings.HasPrefix(line, "@@"):
		return warnStyle.Render(line)
	}
	return dimStyle.Render(line)
}

// RenderProgress renders one apply progress line.
func RenderProgress(done, total int) string {
	return dimStyle.Render(fmt.Sprintf("  [%d/%d] files processed", done, total))
}

// RenderWatchStatus renders one poll of a long-running session.
func RenderWatchStatus(poll int, status domain.JobStatus, activities []domain.JobActivity) string {
	var b strings.Builder
	style := warnStyle
	switch status.State {
	case "SUCCEEDED":
		style = passStyle
	case "FAILED":
		style = failStyle
	}
	fmt.Fprintf(&b, "  %s %s %s\n", faintStyle.Render(fmt.Sprintf("#%d", poll)), titleStyle.Render("Status:"), style.Render(status.State))
	for _, a := range activities {
		fmt.Fprintf(&b, "    %s %s: %s - %s\n", dimStyle.Render("[Activity]"), a.CreateTime, a.Type, a.Message)
	}
	return b.String()
}
