package formatter

import (
	"fmt"
	"strings"

	"github.com/penwyp/usage-stats/internal/core/stats"
	"github.com/penwyp/usage-stats/internal/util"
)

// LineKind tells the display how a line may be styled.
type LineKind int

const (
	LineBody LineKind = iota
	LineTitle
	LineSection
	LineRule
)

// Line is one line of rendered report text.
type Line struct {
	Kind LineKind
	Text string
}

const (
	headerWidth   = 50
	costDigits    = 6
	summaryDigits = 4
)

type lineBuilder struct {
	lines []Line
}

func (b *lineBuilder) add(kind LineKind, text string) {
	b.lines = append(b.lines, Line{Kind: kind, Text: text})
}

func (b *lineBuilder) body(format string, args ...interface{}) {
	b.add(LineBody, fmt.Sprintf(format, args...))
}

func (b *lineBuilder) blank() {
	b.add(LineBody, "")
}

func (b *lineBuilder) section(title string) {
	b.add(LineSection, title)
	b.add(LineRule, util.Underline(title, "-"))
}

// TextLines renders r as the human readable report.
func TextLines(r Report) []Line {
	b := &lineBuilder{}

	b.add(LineTitle, "🔍 Analyzing OpenRouter activity data...")
	b.add(LineRule, strings.Repeat("=", headerWidth))
	b.body("📊 Analyzed %s valid API requests", util.FormatNumber(r.Requests))
	b.blank()

	b.section("📈 OVERALL TOKEN STATISTICS")
	writeSummary(b, "Prompt Tokens", r.Prompt)
	writeSummary(b, "Completion Tokens", r.Completion)
	writeSummary(b, "Total Tokens", r.Total)

	if r.Cost != nil {
		b.body("Cost per Request:")
		b.body("  • Average: %s", util.FormatCurrency(r.Cost.Mean, costDigits))
		b.body("  • Median:  %s", util.FormatCurrency(r.Cost.Median, costDigits))
		b.body("  • Total:   %s", util.FormatCurrency(r.Cost.Sum, summaryDigits))
		b.blank()
	}

	b.section("🎯 APP-SPECIFIC STATISTICS")
	for _, app := range r.Apps {
		b.body("%s (%s requests):", app.Name, util.FormatNumber(app.Requests))
		b.body("  • Avg Prompt: %s tokens", util.FormatTokens(app.Prompt.Mean))
		b.body("  • Avg Completion: %s tokens", util.FormatTokens(app.Completion.Mean))
		b.body("  • Median Prompt: %s tokens", util.FormatTokens(app.Prompt.Median))
		b.body("  • Median Completion: %s tokens", util.FormatTokens(app.Completion.Median))
		b.blank()
	}

	b.section("🤖 TOP MODELS BY USAGE")
	for _, m := range r.Models {
		b.body("%s (%s requests):", m.Name, util.FormatNumber(m.Requests))
		b.body("  • Avg Prompt: %s tokens", util.FormatTokens(m.Prompt.Mean))
		b.body("  • Avg Completion: %s tokens", util.FormatTokens(m.Completion.Mean))
		if m.Cost != nil {
			b.body("  • Avg Cost: %s", util.FormatCurrency(m.Cost.Mean, costDigits))
		}
		b.blank()
	}

	if r.Target != nil {
		writeTarget(b, r.Target)
	}

	return b.lines
}

func writeSummary(b *lineBuilder, label string, s stats.Summary) {
	b.body("%s:", label)
	b.body("  • Average: %s", util.FormatTokens(s.Mean))
	b.body("  • Median:  %s", util.FormatTokens(s.Median))
	b.body("  • Min:     %s", util.FormatTokens(s.Min))
	b.body("  • Max:     %s", util.FormatTokens(s.Max))
	b.blank()
}

func writeTarget(b *lineBuilder, t *TargetReport) {
	b.section(fmt.Sprintf("🎯 %s-SPECIFIC RECOMMENDATIONS", strings.ToUpper(t.Name)))
	b.body("Based on %s %s requests:", util.FormatNumber(t.Requests), t.Name)
	b.blank()
	b.body("📊 Current estimates in script: %s input, %s output",
		util.FormatNumber(t.Current.Input), util.FormatNumber(t.Current.Output))
	b.body("📈 Actual averages: %s input, %s output",
		util.FormatTokens(t.Prompt.Mean), util.FormatTokens(t.Completion.Mean))
	b.body("📉 Actual medians: %s input, %s output",
		util.FormatTokens(t.Prompt.Median), util.FormatTokens(t.Completion.Median))
	b.blank()

	// Plain integers so the values can be pasted into code.
	b.body("💡 RECOMMENDED ESTIMATES:")
	b.body("   ESTIMATED_INPUT_TOKENS = %d", t.Recommended.Input)
	b.body("   ESTIMATED_OUTPUT_TOKENS = %d", t.Recommended.Output)
	b.blank()
	b.body("🔍 These estimates include a buffer for realistic usage scenarios")

	if p := t.Projection; p != nil {
		b.blank()
		b.body("💰 ACTUAL COST ANALYSIS (%s):", t.Name)
		b.body("   Average cost per request: %s", util.FormatCurrency(p.PerRequest, costDigits))
		b.body("   Anonymous users (%s/day): %s/day, %s/month",
			formatRate(t.Usage.AnonymousPerDay),
			util.FormatCurrency(p.DailyAnonymous, costDigits),
			util.FormatCurrency(p.MonthlyAnonymous, summaryDigits))
		b.body("   Signed-in users (%s/day): %s/day, %s/month",
			formatRate(t.Usage.NamedPerDay),
			util.FormatCurrency(p.DailyNamed, costDigits),
			util.FormatCurrency(p.MonthlyNamed, summaryDigits))
	}
}

func formatRate(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
