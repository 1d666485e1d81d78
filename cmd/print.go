package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/jsphweid/evomelody/history"
	"github.com/jsphweid/evomelody/melody"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	restStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func printSummaries(w io.Writer, summaries []history.Summary) {
	if len(summaries) == 0 {
		return
	}
	fmt.Fprintln(w, titleStyle.Render("generation  size  best  worst  mean"))
	for _, s := range summaries {
		fmt.Fprintf(w, "%10d  %4d  %4d  %5d  %4.2f\n", s.Generation, s.Size, s.Best, s.Worst, s.Mean)
	}
}

func printMelody(w io.Writer, m melody.Melody) {
	keys := m.ChordKeys()
	fmt.Fprintln(w, titleStyle.Render("slot  beat   notes"))
	for i := 0; i < m.Len(); i++ {
		line := fmt.Sprintf("%4d  %4.2f   ", i, m.Beat[i])
		if m.Velocity[i] == 0 {
			fmt.Fprintln(w, line+restStyle.Render("rest"))
			continue
		}
		fmt.Fprintln(w, line+noteStyle.Render(keys[i]))
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d slots, %.2f quarters", m.Len(), m.Duration())))
}
