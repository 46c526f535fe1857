package report

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Colored prefixes for error/warning display, grounded on
// chai/src/logging/display.go's Style constants.
var (
	errorStyle = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	warnStyle  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	infoColor  = pterm.FgLightGreen
	errorColor = pterm.FgRed
	warnColor  = pterm.FgYellow
)

// display prints one diagnostic to the terminal, following the
// banner-then-message-then-notes layout of chai's CompileMessage.display.
func display(m *Message) {
	if m.IsError {
		errorStyle.Print(m.Kind.String() + " error")
	} else {
		warnStyle.Print(m.Kind.String() + " warning")
	}

	if m.Pos.File != "" {
		fmt.Print(" ")
		infoColor.Print(fmt.Sprintf("%s:%d:%d", m.Pos.File, m.Pos.StartLine+1, m.Pos.StartCol+1))
	}

	fmt.Println()

	if m.IsError {
		errorColor.Println(m.Text)
	} else {
		warnColor.Println(m.Text)
	}

	for _, n := range m.Notes {
		fmt.Print("  note: ")
		if n.Pos.File != "" {
			infoColor.Print(fmt.Sprintf("%s:%d:%d: ", n.Pos.File, n.Pos.StartLine+1, n.Pos.StartCol+1))
		}
		fmt.Println(n.Text)
	}
}

// Summary prints the closing compilation message, grounded on
// chai/src/logging/display.go's displayCompilationFinished.
func Summary(errorCount, warningCount int) {
	if errorCount == 0 {
		infoColor.Print("done ")
	} else {
		errorColor.Print("failed ")
	}

	fmt.Print("(")
	if errorCount == 0 {
		infoColor.Print(0)
	} else {
		errorColor.Print(errorCount)
	}
	fmt.Print(" errors, ")

	if warningCount == 0 {
		infoColor.Print(0)
	} else {
		warnColor.Print(warningCount)
	}
	fmt.Println(" warnings)")
}
