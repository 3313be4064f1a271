package commands

import (
	"fmt"
	"strings"

	"github.com/wonny/folio/internal/engine"
	"github.com/wonny/folio/internal/indicators"
	"github.com/wonny/folio/internal/valuation"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a formatted command header
func PrintHeader(title string, lines ...string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	if len(lines) > 0 {
		PrintSeparator()
		for _, l := range lines {
			fmt.Printf("  %s\n", l)
		}
	}
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintIndicators prints every group with its metrics, nested groups indented
func PrintIndicators(ind *indicators.Indicators) {
	if ind.Error != "" {
		PrintError(ind.Error)
		return
	}
	for _, g := range ind.Groups {
		printGroup(g, 0)
	}
}

func printGroup(g indicators.Group, depth int) {
	indent := strings.Repeat("  ", depth)
	if g.Status == indicators.StatusOmitted {
		fmt.Printf("\n%s[%s] N/A (%s)\n", indent, g.Label(), g.Reason)
		return
	}

	fmt.Printf("\n%s[%s]\n", indent, g.Label())
	for _, m := range g.Metrics {
		if m.Status == indicators.StatusOmitted {
			continue
		}
		PrintKeyValue(indent+m.Label(g), m.Display(), 28)
	}
	for _, c := range g.Children {
		printGroup(c, depth+1)
	}
}

// PrintWarnings prints everything that degraded a result
func PrintWarnings(w engine.Warnings) {
	if w.Empty() {
		return
	}
	fmt.Println()
	PrintSeparator()
	for _, st := range w.UnresolvedSymbols {
		if st.Status == valuation.StatusPartial {
			PrintWarning(fmt.Sprintf("%s: %d일 가격 누락 (0 처리)", st.Symbol, st.MissingDays))
			continue
		}
		PrintWarning(fmt.Sprintf("%s: 가격 없음, 합계에서 제외 (%s)", st.Symbol, st.Reason))
	}
	for _, g := range w.OmittedGroups {
		name := string(g.Group)
		if g.Window > 0 {
			name = fmt.Sprintf("%s(%d)", name, g.Window)
		}
		PrintWarning(fmt.Sprintf("%s 생략: %s", name, g.Reason))
	}
	for _, m := range w.Messages {
		PrintWarning(m)
	}
}
