// ABOUTME: Bubbletea model for the soundboard TUI
// ABOUTME: Defines soundboard state, key handling, and rendering
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Soundboard
	sounds     []string
	lastPlayed string

	// Music bed
	musicName    string
	musicPlaying bool

	// Output
	volume int // 0-100 for display
	muted  bool

	// Meter
	peak []float64
	rms  []float64

	// Dimensions
	width  int
	height int

	control *Control
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case LevelsMsg:
		m.peak = msg.Peak
		m.rms = msg.RMS
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderSounds()
	s += m.renderControls()
	s += m.renderMeter()
	s += m.renderHelp()

	return s
}

// renderHeader renders the title and music status
func (m Model) renderHeader() string {
	music := "(none)"
	if m.musicName != "" {
		music = m.musicName
		if !m.musicPlaying {
			music += " (stopped)"
		}
	}

	return fmt.Sprintf(`┌─ Chime Soundboard ───────────────────────────────────┐
│ Music: %-45s │
├──────────────────────────────────────────────────────┤
`, truncate(music, 45))
}

// renderSounds renders the numbered sound list
func (m Model) renderSounds() string {
	if len(m.sounds) == 0 {
		return "│ No sounds registered                                 │\n"
	}

	s := "│ Sounds:                                              │\n"
	for i, name := range m.sounds {
		if i >= 9 {
			break
		}
		marker := " "
		if name == m.lastPlayed {
			marker = "▶"
		}
		s += fmt.Sprintf("│   %d. %s %-44s │\n", i+1, marker, truncate(name, 44))
	}
	return s
}

// renderControls renders volume and mute status
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " 🔇"
	}

	volumeBar := renderBar(m.volume, 100, 10)

	return fmt.Sprintf("│                                                      │\n"+
		"│ Volume: [%s] %d%%%s%-17s │\n",
		volumeBar, m.volume, muteIcon, "")
}

// renderMeter renders per-channel output levels
func (m Model) renderMeter() string {
	if len(m.peak) == 0 {
		return "│ Meter:  (no signal)                                  │\n"
	}

	s := ""
	for ch := range m.peak {
		peakBar := renderBar(int(m.peak[ch]*100), 100, 20)
		s += fmt.Sprintf("│ Ch %d:   [%s] rms %.2f%-10s │\n",
			ch+1, peakBar, m.rms[ch], "")
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ 1-9:Play  ↑/↓:Volume  m:Mute  s:Stop all  q:Quit    │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		m.control.quit()
		return m, tea.Quit
	case "up", "+":
		m.volume += 5
		if m.volume > 100 {
			m.volume = 100
		}
		m.control.setVolume(float64(m.volume) / 100.0)
	case "down", "-":
		m.volume -= 5
		if m.volume < 0 {
			m.volume = 0
		}
		m.control.setVolume(float64(m.volume) / 100.0)
	case "m":
		m.muted = !m.muted
		m.control.setMuted(m.muted)
	case "s":
		m.control.stopAll()
		m.lastPlayed = ""
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			idx := int(key[0] - '1')
			if idx < len(m.sounds) {
				m.lastPlayed = m.sounds[idx]
				m.control.play(m.sounds[idx])
			}
		}
	}

	return m, nil
}

// applyStatus updates the model from a status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Sounds != nil {
		m.sounds = msg.Sounds
	}
	if msg.Volume != nil {
		m.volume = *msg.Volume
	}
	if msg.Muted != nil {
		m.muted = *msg.Muted
	}
	if msg.MusicName != "" {
		m.musicName = msg.MusicName
	}
	if msg.MusicPlaying != nil {
		m.musicPlaying = *msg.MusicPlaying
	}
}

// StatusMsg updates TUI state from the application
type StatusMsg struct {
	Sounds       []string
	Volume       *int
	Muted        *bool
	MusicName    string
	MusicPlaying *bool
}

// LevelsMsg carries a meter snapshot into the TUI
type LevelsMsg struct {
	Peak []float64
	RMS  []float64
}

// Utility functions
func renderBar(value, max, width int) string {
	if value > max {
		value = max
	}
	if value < 0 {
		value = 0
	}
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
