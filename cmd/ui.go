package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Terminal colors
var (
	Brand  = color.New(color.FgHiMagenta, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Good   = color.New(color.FgGreen)
	Warn   = color.New(color.FgYellow)
	Bad    = color.New(color.FgRed)
)

// field prints an aligned "name: value" line.
func field(w io.Writer, name string, value any) {
	fmt.Fprintf(w, "  %-10s %s\n", name+":", Brand.Sprint(value))
}
