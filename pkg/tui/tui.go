// Package tui provides a terminal user interface for midi2beep
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/midi2beep/pkg/converter"
	"github.com/james-see/midi2beep/pkg/converter/renderers"
	"github.com/james-see/midi2beep/pkg/preview"
)

// Terminal beeper color scheme
var (
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	snippetStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			Border(lipgloss.NormalBorder()).
			BorderForeground(darkGray).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(acidGreen).
			Padding(1, 2)
)

const (
	snippetLines = 8
	snippetWidth = 72
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateConverting
	StateResult
)

// Action is what a menu item does with the selected file
type Action int

const (
	ActionRender Action = iota
	ActionMono
	ActionPreview
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
	Renderer    converter.Renderer
}

func defaultMenu() []MenuItem {
	items := make([]MenuItem, 0)
	for _, r := range renderers.All() {
		items = append(items, MenuItem{
			Title:       fmt.Sprintf("MIDI → %s (%s)", r.Name(), r.Extension()),
			Description: r.Description(),
			Action:      ActionRender,
			Renderer:    r,
		})
	}
	return append(items,
		MenuItem{Title: "MIDI → Mono MIDI", Description: "Write the extracted melody as a single-track MIDI file", Action: ActionMono},
		MenuItem{Title: "MIDI → Piano roll", Description: "Draw the extracted melody as a PNG piano roll", Action: ActionPreview},
		MenuItem{Title: "Exit", Description: "Exit the application", Action: ActionExit},
	)
}

// Model represents the TUI model
type Model struct {
	state        State
	menu         []MenuItem
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	opts         converter.Options
	reverse      bool
	legacy       bool
	speed        float64
	selectedFile string
	outputFile   string
	snippet      string
	timeline     *converter.Timeline
	conversion   MenuItem
	err          error
	width        int
	height       int
}

// conversionDoneMsg signals conversion completion
type conversionDoneMsg struct {
	outputFile string
	snippet    string
	timeline   *converter.Timeline
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New() Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(acidGreen)

	return Model{
		state:      StateMenu,
		menu:       defaultMenu(),
		filePicker: fp,
		spinner:    s,
		opts:       converter.DefaultOptions(),
		speed:      1.0,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs to receive all messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateConverting
			return m, tea.Batch(m.spinner.Tick, m.performConversion())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case conversionDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.snippet = msg.snippet
		m.timeline = msg.timeline
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(m.menu)-1 {
			m.menuIndex++
		}
	case "m":
		m.opts.Merge = !m.opts.Merge
	case "r":
		m.reverse = !m.reverse
		m.opts.Ordering = converter.PolicyFor(m.reverse, m.legacy)
	case "o":
		m.legacy = !m.legacy
		m.opts.Ordering = converter.PolicyFor(m.reverse, m.legacy)
	case "[":
		m.opts.Channel = (m.opts.Channel + 15) % 16
	case "]":
		m.opts.Channel = (m.opts.Channel + 1) % 16
	case "-":
		if m.speed > 0.25 {
			m.speed -= 0.25
		}
	case "+", "=":
		m.speed += 0.25
	case "enter":
		item := m.menu[m.menuIndex]
		if item.Action == ActionExit {
			return m, tea.Quit
		}
		m.conversion = item
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.outputFile = ""
		m.snippet = ""
		m.timeline = nil
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performConversion() tea.Cmd {
	item, input, opts, speed := m.conversion, m.selectedFile, m.opts, m.speed
	return func() tea.Msg {
		return convert(item, input, opts, speed)
	}
}

// convert runs one menu action against a MIDI file and writes the result
// next to it
func convert(item MenuItem, input string, opts converter.Options, speed float64) conversionDoneMsg {
	switch item.Action {
	case ActionRender:
		out := converter.OutputPath(input, item.Renderer.Extension())
		tl, err := converter.New(item.Renderer).ConvertFile(input, out, opts, speed)
		if err != nil {
			return conversionDoneMsg{err: err}
		}
		text, err := os.ReadFile(out)
		if err != nil {
			return conversionDoneMsg{err: err}
		}
		return conversionDoneMsg{outputFile: out, snippet: snippet(string(text)), timeline: tl}

	case ActionMono, ActionPreview:
		data, err := os.ReadFile(input)
		if err != nil {
			return conversionDoneMsg{err: err}
		}
		tl, err := converter.New(nil).Extract(data, opts)
		if err != nil {
			return conversionDoneMsg{err: err}
		}

		var out string
		if item.Action == ActionMono {
			out = converter.OutputPath(input, ".mid")
			err = converter.NewMIDIConverter().WriteMIDIFile(tl, out)
		} else {
			out = converter.OutputPath(input, ".png")
			err = preview.SavePNG(tl, out, preview.DefaultOptions())
		}
		if err != nil {
			return conversionDoneMsg{err: err}
		}
		return conversionDoneMsg{outputFile: out, timeline: tl}
	}
	return conversionDoneMsg{err: fmt.Errorf("unsupported action %d", item.Action)}
}

// snippet keeps the first lines of rendered output, clipping long lines
func snippet(text string) string {
	lines := strings.Split(text, "\n")
	more := len(lines) > snippetLines
	if more {
		lines = lines[:snippetLines]
	}
	for i, l := range lines {
		if len(l) > snippetWidth {
			lines[i] = l[:snippetWidth-1] + "…"
		}
	}
	if more {
		lines = append(lines, "…")
	}
	return strings.Join(lines, "\n")
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateConverting:
		s.WriteString(m.viewConverting())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT EXPORT "))
	s.WriteString("\n\n")

	for i, item := range m.menu {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(acidYellow).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	s.WriteString(statusStyle.Render(m.settings()))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("m: merge • r: reverse • o: old logic • [/]: channel • -/+: speed"))

	return boxStyle.Render(s.String())
}

func (m Model) settings() string {
	channel := fmt.Sprintf("channel %d", m.opts.Channel)
	if m.opts.Merge {
		channel = "all channels"
	}
	return fmt.Sprintf("%s • %s ordering • speed %.2fx", channel, m.opts.Ordering, m.speed)
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewConverting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CONVERTING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Converting %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render("  " + m.conversion.Title))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Conversion failed: %s", m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Conversion complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Output: %s", filepath.Base(m.outputFile)))
		if m.timeline != nil {
			s.WriteString(fmt.Sprintf("\nNotes:  %d (%d rests, %.2fs)",
				m.timeline.Pitched(), m.timeline.Rests(), m.timeline.Duration()))
		}
		if m.snippet != "" {
			s.WriteString("\n\n")
			s.WriteString(snippetStyle.Render(m.snippet))
		}
		if m.conversion.Renderer != nil && strings.HasPrefix(m.conversion.Renderer.Name(), "arduino") {
			s.WriteString("\n")
			s.WriteString(statusStyle.Render("Connect the buzzer to pin 8"))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
  __  __ ___ ___ ___ ___ ___ ___ ___ ___ 
 |  \/  |_ _|   \_ _|_  ) _ ) __| __| _ \
 | |\/| || || |) | | / /| _ \ _|| _||  _/
 |_|  |_|___|___/___/___|___/___|___|_|  
`
	return lipgloss.NewStyle().Foreground(acidGreen).Render(logo)
}

// Run starts the TUI application
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
