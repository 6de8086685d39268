package filePicker

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rescp17/mailingDashboard/internal/style"
	"github.com/rescp17/mailingDashboard/internal/util"
	"github.com/rescp17/mailingDashboard/pkg/fileInfo"
)

type mode int

const (
	modeBrowse mode = iota
	modeInput
)

// FileChosenMsg is emitted when the operator picks a file. The path is not
// validated beyond existing; the upload session decides if it is acceptable.
type FileChosenMsg struct {
	Path string
}

// CancelledMsg is emitted when the picker is closed without a choice.
type CancelledMsg struct{}

// --- Key Map ---
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding // Page up
	Right       key.Binding // Page down
	Parent      key.Binding
	ToggleInput key.Binding
	Confirm     key.Binding
	Quit        key.Binding
}

var DefaultKeyMap = KeyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
	Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "page up")),
	Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "page down")),
	Parent:      key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "parent dir")),
	ToggleInput: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "input path")),
	Confirm:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/choose")),
	Quit:        key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "back")),
}

type entry struct {
	name  string
	isDir bool
	size  int64
	mime  string
}

// --- Model ---
type Model struct {
	path      string
	lastPath  string // For relative path resolution
	items     []entry
	cursor    int
	keys      KeyMap
	mode      mode
	input     textinput.Model
	inputErr  error
	height    int // For viewport height
	offset    int // For scrolling
	extension string
}

// New creates a picker that highlights files with extension. It starts in
// input mode, relative to the working directory.
func New(extension string) Model {
	ti := textinput.New()
	ti.Placeholder = "path to a directory or a .csv file"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 80
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))

	wd, err := os.Getwd()
	if err != nil {
		slog.Warn("Could not get working directory", "error", err)
		wd = ""
	}

	return Model{
		lastPath:  wd,
		keys:      DefaultKeyMap,
		mode:      modeInput,
		input:     ti,
		extension: extension,
	}
}

// --- Bubble Tea Methods ---
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			// Leaving input mode goes back to the loaded directory, if any.
			if m.mode == modeInput && m.path != "" {
				m.mode = modeBrowse
				m.input.Blur()
				m.input.Reset()
				m.inputErr = nil
				return m, nil
			}
			return m, func() tea.Msg { return CancelledMsg{} }
		}

		switch m.mode {
		case modeBrowse:
			return m.updateBrowse(msg)
		case modeInput:
			return m.updateInput(msg)
		}
	}

	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleInput):
		m.mode = modeInput
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset--
			}
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.visibleItems() {
				m.offset++
			}
		}

	case key.Matches(msg, m.keys.Right): // Page down
		if len(m.items) == 0 {
			break
		}
		visible := m.visibleItems()
		m.cursor = min(m.cursor+visible, len(m.items)-1)
		m.offset = max(0, min(m.offset+visible, len(m.items)-visible))
		if m.cursor >= m.offset+visible {
			m.offset = m.cursor - visible + 1
		}

	case key.Matches(msg, m.keys.Left): // Page up
		visible := m.visibleItems()
		m.cursor = max(m.cursor-visible, 0)
		m.offset = max(m.offset-visible, 0)
		if m.cursor < m.offset {
			m.offset = m.cursor
		}

	case key.Matches(msg, m.keys.Parent):
		if m.path != "" {
			if err := m.SetPath(filepath.Dir(m.path)); err != nil {
				m.inputErr = err
			}
		}

	case key.Matches(msg, m.keys.Confirm):
		if m.cursor >= len(m.items) {
			return m, nil
		}
		item := m.items[m.cursor]
		path := filepath.Join(m.path, item.name)
		if item.isDir {
			if err := m.SetPath(path); err != nil {
				m.inputErr = err
			}
			return m, nil
		}
		return m, choose(path)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Confirm) {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	path := util.ExpandHome(strings.Trim(strings.TrimSpace(m.input.Value()), `"'`))
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.lastPath, path)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		m.inputErr = fmt.Errorf("invalid path: %w", err)
		return m, nil
	}

	exists, isDir, err := util.CheckDirectory(absPath)
	switch {
	case err != nil:
		m.inputErr = fmt.Errorf("cannot access %s: %w", absPath, err)
		return m, nil
	case !exists:
		m.inputErr = fmt.Errorf("path does not exist: %s", absPath)
		return m, nil
	case !isDir:
		m.input.Reset()
		m.inputErr = nil
		return m, choose(absPath)
	}

	if err := m.SetPath(absPath); err != nil {
		m.inputErr = err
		return m, nil
	}
	m.input.Reset()
	return m, nil
}

func choose(path string) tea.Cmd {
	return func() tea.Msg {
		return FileChosenMsg{Path: path}
	}
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(style.TitleStyle.Render("Choose a mailing file") + " " + m.helpView() + "\n\n")
	if m.mode == modeInput {
		s.WriteString(m.input.View())
	}
	if m.inputErr != nil {
		s.WriteString("\n" + style.ErrorStyle.Render(m.inputErr.Error()))
	}
	s.WriteString("\n\n")

	if m.path == "" {
		return s.String()
	}

	s.WriteString(fmt.Sprintf("Browsing: %s\n\n", m.path))

	nameWidth := 40
	sizeWidth := 12
	typeWidth := 30

	s.WriteString(style.HeaderStyle.Render(
		util.PadRight("", 2) +
			util.PadRight("Name", nameWidth) + " " +
			util.PadRight("Size", sizeWidth) + " " +
			util.PadRight("Type", typeWidth)) + "\n")

	visible := m.visibleItems()
	start := max(m.offset, 0)
	end := min(start+visible, len(m.items))

	for i := start; i < end; i++ {
		item := m.items[i]
		if m.cursor == i {
			s.WriteString(style.CursorStyle.String())
		} else {
			s.WriteString(style.NoCursorStyle.String())
		}

		name := item.name
		size := "<DIR>"
		if item.isDir {
			name += "/"
		} else {
			size = util.FormatSize(item.size)
		}

		// Pad first, then style
		nameCell := util.PadRight(name, nameWidth)
		switch {
		case item.isDir:
			nameCell = style.DirStyle.Render(nameCell)
		case fileInfo.HasExtension(item.name, m.extension):
			nameCell = style.CSVStyle.Render(nameCell)
		default:
			nameCell = style.FileStyle.Render(nameCell)
		}
		s.WriteString(nameCell + " " +
			util.PadRight(size, sizeWidth) + " " +
			util.PadRight(item.mime, typeWidth) + "\n")
	}

	if len(m.items) == 0 {
		s.WriteString(style.HelpStyle.Render("  (empty directory)") + "\n")
	}
	if len(m.items) > visible {
		s.WriteString(fmt.Sprintf("\n... %d/%d ...\n", m.cursor+1, len(m.items)))
	}

	return s.String()
}

func (m Model) helpView() string {
	return style.HelpStyle.Render(
		fmt.Sprintf("'%s' %s, '%s' %s, '%s' %s, '%s' %s",
			m.keys.Confirm.Help().Key, m.keys.Confirm.Help().Desc,
			m.keys.Parent.Help().Key, m.keys.Parent.Help().Desc,
			m.keys.ToggleInput.Help().Key, m.keys.ToggleInput.Help().Desc,
			m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc),
	)
}

// SetPath loads directory path into the browser.
func (m *Model) SetPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	dirEntries, err := os.ReadDir(absPath)
	if err != nil {
		return fmt.Errorf("could not read directory: %w", err)
	}

	items := make([]entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		items = append(items, newEntry(absPath, d))
	}
	// Directories first, then by name.
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].isDir != items[j].isDir {
			return items[i].isDir
		}
		return strings.ToLower(items[i].name) < strings.ToLower(items[j].name)
	})

	m.path = absPath
	m.lastPath = absPath
	m.items = items
	m.cursor = 0
	m.offset = 0
	m.inputErr = nil
	m.mode = modeBrowse
	m.input.Blur()
	return nil
}

// Path is the directory being browsed, empty before one is loaded.
func (m Model) Path() string {
	return m.path
}

func newEntry(dir string, d fs.DirEntry) entry {
	e := entry{name: d.Name(), isDir: d.IsDir(), size: -1}
	if e.isDir {
		return e
	}
	if info, err := d.Info(); err == nil {
		e.size = info.Size()
	}
	if mt, err := mimetype.DetectFile(filepath.Join(dir, d.Name())); err == nil {
		e.mime = mt.String()
	}
	return e
}

func (m Model) visibleItems() int {
	headerHeight := 8
	if m.inputErr != nil {
		headerHeight++
	}
	visible := m.height - headerHeight
	if visible < 1 {
		visible = 10
	}
	return visible
}
