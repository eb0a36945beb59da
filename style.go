package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"github.com/dgnsrekt/narrator/internal/config"
)

var (
	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"})

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"})
)

func keyword(s string) string {
	return keywordStyle.Render(s)
}

// paragraph wraps and indents help text to the terminal width.
func paragraph(s string) string {
	w := 80
	if tw, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && tw < w {
		w = tw
	}
	return indent.String(wordwrap.String(s, w-4), 2)
}

// printBanner announces what the narrator is watching and speaking with.
func printBanner(cfg config.Config, dir, engine string) {
	mode := "active transcript"
	if !cfg.ActiveOnly {
		mode = "all transcripts"
	}
	control := cfg.Control.URL
	if !cfg.Control.Enabled {
		control = "disabled"
	}

	fmt.Println(keyword("narrator") + " is listening")
	fmt.Println(dimStyle.Render("  watching  ") + dir + dimStyle.Render(" ("+mode+")"))
	fmt.Println(dimStyle.Render("  speaking  ") + engine)
	fmt.Println(dimStyle.Render("  control   ") + control)
}
