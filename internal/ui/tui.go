// ABOUTME: TUI initialization and control channels
// ABOUTME: Wraps the bubbletea program for the soundboard UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Control carries user actions from the TUI to the application
type Control struct {
	Plays   chan string
	Volumes chan float64
	Mutes   chan bool
	Stops   chan struct{}
	Quits   chan struct{}
}

// NewControl creates a control handler with buffered channels
func NewControl() *Control {
	return &Control{
		Plays:   make(chan string, 10),
		Volumes: make(chan float64, 10),
		Mutes:   make(chan bool, 10),
		Stops:   make(chan struct{}, 1),
		Quits:   make(chan struct{}, 1),
	}
}

// Sends never block the render loop; a full channel drops the action

func (c *Control) play(name string) {
	if c == nil {
		return
	}
	select {
	case c.Plays <- name:
	default:
	}
}

func (c *Control) setVolume(v float64) {
	if c == nil {
		return
	}
	select {
	case c.Volumes <- v:
	default:
	}
}

func (c *Control) setMuted(muted bool) {
	if c == nil {
		return
	}
	select {
	case c.Mutes <- muted:
	default:
	}
}

func (c *Control) stopAll() {
	if c == nil {
		return
	}
	select {
	case c.Stops <- struct{}{}:
	default:
	}
}

func (c *Control) quit() {
	if c == nil {
		return
	}
	select {
	case c.Quits <- struct{}{}:
	default:
	}
}

// NewModel creates a TUI model for the given soundboard
func NewModel(sounds []string, musicName string, volume int, control *Control) Model {
	return Model{
		sounds:       sounds,
		musicName:    musicName,
		musicPlaying: musicName != "",
		volume:       volume,
		control:      control,
	}
}

// Run starts the TUI program
func Run(model Model) *tea.Program {
	return tea.NewProgram(model, tea.WithAltScreen())
}
