// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/interview-assistant/internal/ingestion"
	"github.com/jonathan/interview-assistant/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the terminal commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines are
// wrapped at word boundaries.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(title, inner), inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		for _, wrapped := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(wrapped, inner))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// Printf writes a plain line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// PrintBot writes a chat message from the assistant.
func (p *Printer) PrintBot(text string) {
	p.Printf("🤖 %s\n", text)
}

// PrintExtraction outputs the fields pulled from a résumé.
func (p *Printer) PrintExtraction(result *ingestion.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	if result.Meta != nil {
		sb.WriteString(fmt.Sprintf("File:   %s (%s, %d bytes)\n\n", result.Meta.Name, result.Meta.Type, result.Meta.Size))
	}
	sb.WriteString(fmt.Sprintf("Name:   %s\n", orDash(result.Fields.Name)))
	sb.WriteString(fmt.Sprintf("Email:  %s\n", orDash(result.Fields.Email)))
	sb.WriteString(fmt.Sprintf("Phone:  %s", orDash(result.Fields.Phone)))

	p.printBox("RÉSUMÉ", sb.String())
}

// PrintQuestion outputs the question being asked with its position and limit.
func (p *Printer) PrintQuestion(index, total int, q types.Question) {
	title := fmt.Sprintf("QUESTION %d/%d  [%s, %ds]", index+1, total, strings.ToUpper(string(q.Difficulty)), q.Limit())
	p.printBox(title, q.Text)
}

// PrintScoreResult outputs per-question scores, the total and the summary.
func (p *Printer) PrintScoreResult(result types.ScoreResult) {
	var sb strings.Builder
	for _, s := range result.Scores {
		sb.WriteString(fmt.Sprintf("%-4s %-6s %2d/10  %s\n", s.QuestionID, s.Difficulty, s.Score, s.Feedback))
	}
	sb.WriteString(fmt.Sprintf("\nFinal score: %d/%d\n\n", result.FinalScore, 10*len(result.Scores)))
	sb.WriteString(result.Summary)

	p.printBox("INTERVIEW RESULTS", sb.String())
}

// PrintRosterTable outputs one line per roster entry.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRosterTable(entries []types.RosterEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "No candidates yet.")
		return
	}
	fmt.Fprintf(p.out, "%-36s  %-24s  %-28s  %5s  %s\n", "ID", "NAME", "EMAIL", "SCORE", "DATE")
	for _, e := range entries {
		score := "-"
		if e.FinalScore != nil {
			score = fmt.Sprintf("%d", *e.FinalScore)
		}
		fmt.Fprintf(p.out, "%-36s  %-24s  %-28s  %5s  %s\n",
			e.ID, truncate(e.Name, 24), truncate(e.Email, 28), score, e.CreatedAt.Format(time.DateOnly))
	}
}

// PrintRosterEntry outputs the full detail of one candidate.
func (p *Printer) PrintRosterEntry(e types.RosterEntry) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", orDash(e.Name)))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", orDash(e.Email)))
	sb.WriteString(fmt.Sprintf("Phone:    %s\n", orDash(e.Phone)))
	if e.ResumeMeta != nil {
		sb.WriteString(fmt.Sprintf("Résumé:   %s\n", e.ResumeMeta.Name))
	}
	sb.WriteString(fmt.Sprintf("Score:    %d\n", e.Score()))
	sb.WriteString(fmt.Sprintf("Date:     %s\n", e.CreatedAt.Format(time.RFC822)))
	sb.WriteString("\n")
	sb.WriteString(e.Summary)
	p.printBox("CANDIDATE "+e.ID, sb.String())

	answers := make(map[string]types.Answer, len(e.Answers))
	for _, a := range e.Answers {
		answers[a.QuestionID] = a
	}
	scores := make(map[string]types.ScoreEntry, len(e.Scores))
	for _, s := range e.Scores {
		scores[s.QuestionID] = s
	}

	for i, q := range e.Questions {
		var qb strings.Builder
		qb.WriteString(q.Text)
		qb.WriteString("\n\n")
		a, ok := answers[q.ID]
		switch {
		case !ok:
			qb.WriteString("Answer: -")
		case a.Text == "":
			qb.WriteString("Answer: (empty)")
		default:
			qb.WriteString("Answer: " + a.Text)
		}
		if ok && a.TimedOut {
			qb.WriteString(" [timed out]")
		}
		if s, ok := scores[q.ID]; ok {
			qb.WriteString(fmt.Sprintf("\n\nScore: %d/10  %s", s.Score, s.Feedback))
		}
		p.printBox(fmt.Sprintf("Q%d [%s]", i+1, q.Difficulty), qb.String())
	}

	if len(e.Messages) > 0 {
		var mb strings.Builder
		start := max(0, len(e.Messages)-maxItemsToShow)
		if start > 0 {
			mb.WriteString(fmt.Sprintf("... %d earlier messages\n", start))
		}
		for _, m := range e.Messages[start:] {
			mb.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Text))
		}
		p.printBox("CHAT", strings.TrimSuffix(mb.String(), "\n"))
	}
}

func orDash(v string) string {
	if v == "" {
		return "—"
	}
	return v
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// wrap splits line into chunks of at most width runes, breaking at spaces
// where possible.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	var out []string
	var current []rune
	for _, word := range strings.Fields(line) {
		w := []rune(word)
		for len(w) > width {
			if len(current) > 0 {
				out = append(out, string(current))
				current = nil
			}
			out = append(out, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(current) == 0:
			current = w
		case len(current)+1+len(w) <= width:
			current = append(append(current, ' '), w...)
		default:
			out = append(out, string(current))
			current = w
		}
	}
	if len(current) > 0 {
		out = append(out, string(current))
	}
	return out
}
