package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gpuvenv/gpuvenv/pkg/pipeline"
)

// timeRound is the display granularity for durations.
const timeRound = 10 * time.Millisecond

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

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for fatal diagnostics.
	StyleError = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

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

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}

// =============================================================================
// Diagnostics
// =============================================================================

// printMissingPyenv renders the fatal precondition diagnostic: pyenv is
// not on PATH, so nothing else in the pipeline can work.
func printMissingPyenv() {
	fmt.Println(StyleError.Render("Error: pyenv is not installed or not on PATH."))
	printDetail("gpuvenv relies on pyenv to select the Python interpreter.")
	printDetail("Install pyenv and the target interpreter, then re-run.")
	printDetail("See " + styleCommand.Render("https://github.com/pyenv/pyenv#installation"))
}

// =============================================================================
// Run Reporting
// =============================================================================

// printRunSummary prints the closing banner for a successful run.
func printRunSummary(result *pipeline.Result) {
	printNewline()
	fmt.Println(StyleSuccess.Render(iconSuccess+" Environment ready") +
		" " + StyleDim.Render("for "+result.Purpose))
	printKeyValue("python", result.Interpreter.String())
	printKeyValue("location", result.Env.Root)
	printKeyValue("duration", result.Duration.Round(timeRound).String())
	printNewline()
	printNextStep("Activate with", "source "+result.Env.Root+"/bin/activate")
}

// printPlan prints the dry-run command plan.
func printPlan(lines []string) {
	fmt.Println(StyleTitle.Render("Plan") + " " + StyleDim.Render(fmt.Sprintf("(%d commands, nothing executed)", len(lines))))
	for _, line := range lines {
		fmt.Println("  " + StyleDim.Render(iconArrow) + " " + styleCommand.Render(line))
	}
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printInline prints a dim message without a trailing newline.
func printInline(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Print(StyleDim.Render(msg))
}

// checkMark renders a boolean as a colored yes/no marker.
func checkMark(ok bool) string {
	if ok {
		return styleIconSuccess.Render(iconSuccess)
	}
	return styleIconError.Render(iconError)
}
