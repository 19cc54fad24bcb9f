package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/tarper/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Result Output
// =============================================================================

// formatCost renders a byte count as "12 kB (12,345 B)".
func formatCost(cost int64, measured bool) string {
	if !measured {
		return "—"
	}
	return fmt.Sprintf("%s (%s B)", humanize.Bytes(uint64(cost)), humanize.Comma(cost))
}

// formatSaving describes cost relative to baseline, e.g. "-3.2%".
func formatSaving(cost, baseline int64) string {
	if baseline <= 0 {
		return "—"
	}
	return fmt.Sprintf("%+.2f%%", 100*float64(cost-baseline)/float64(baseline))
}

// printResult prints one run summary.
func printResult(res *pipeline.Result) {
	printSuccess("%s %s", StyleTitle.Render(res.Strategy), StyleNumber.Render(formatCost(res.Cost, res.Measured)))
	printStats(res.Stats)
	if res.Archive != "" {
		printFile(res.Archive)
	}
}

// printStats prints run statistics on a single line.
func printStats(s pipeline.Stats) {
	parts := []string{
		humanize.Comma(int64(s.Files)) + " files",
		humanize.Comma(int64(s.Evaluations)) + " evaluations",
	}
	if s.Failures > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d failed", s.Failures)))
	}
	parts = append(parts, s.Duration.Round(time.Millisecond).String())

	rendered := make([]string, len(parts))
	for i, p := range parts {
		rendered[i] = StyleDim.Render(p)
	}
	fmt.Println("  " + strings.Join(rendered, StyleDim.Render(" · ")))
}

// printOrder prints an ordering, one file per line, truncated after limit
// entries when limit > 0.
func printOrder(order []string, limit int) {
	for i, f := range order {
		if limit > 0 && i == limit {
			printDetail("… %d more", len(order)-limit)
			return
		}
		fmt.Printf("  %s %s\n", StyleDim.Render(fmt.Sprintf("%4d", i+1)), StyleValue.Render(f))
	}
}
