package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// RunHeader describes a command run
type RunHeader struct {
	Title  string
	Tag    string
	Fields [][2]string // key, value in display order
}

// PrintRunHeader prints a formatted run header
func PrintRunHeader(h RunHeader) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", h.Title)
	PrintSeparator()
	for _, kv := range h.Fields {
		fmt.Printf("  %-10s: %s\n", kv[0], kv[1])
	}
	PrintSeparator()
	fmt.Printf("[%s] Started at %s\n", h.Tag, time.Now().Format("2006-01-02 15:04:05"))
}

// PrintProgress prints a progress step with counter
// Example: [Fetcher] Downloaded inf_mensal_fii_2024.zip [1/3]
func PrintProgress(tag string, message string, current int, total int) {
	fmt.Printf("[%s] %s [%d/%d]\n", tag, message, current, total)
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
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row; widths count runes so accented labels align
func PrintTableRow(values []string, widths []int) {
	var b strings.Builder
	for i, val := range values {
		b.WriteString(val)
		if pad := widths[i] - utf8.RuneCountInString(val); pad > 0 && i < len(values)-1 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		if i < len(values)-1 {
			b.WriteString("  ")
		}
	}
	fmt.Println(b.String())
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

// PrintJSON writes v as indented JSON to stdout
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
