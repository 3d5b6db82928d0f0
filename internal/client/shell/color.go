package shell

import "github.com/fatih/color"

var (
	red   = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

// DisableColor turns colored output off for the whole process.
func DisableColor() {
	color.NoColor = true
}
