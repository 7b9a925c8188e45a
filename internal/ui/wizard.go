package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/owenvale/flacpress/internal/library"
)

// Selection is the outcome of the interactive wizard.
type Selection struct {
	Artists   []string
	Format    string
	Bitrate   string
	Level     int
	Cancelled bool
}

type step int

const (
	stepArtists step = iota
	stepFormat
	stepBitrate
	stepLevel
	stepConfirm
)

type artistItem struct {
	name     string
	albums   int
	selected *map[string]bool
}

func (i artistItem) Title() string {
	mark := "[ ]"
	if (*i.selected)[i.name] {
		mark = "[x]"
	}
	return mark + " " + i.name
}
func (i artistItem) Description() string {
	if i.albums == 1 {
		return "1 album"
	}
	return fmt.Sprintf("%d albums", i.albums)
}
func (i artistItem) FilterValue() string { return i.name }

type choiceItem struct {
	value string
	title string
	desc  string
}

func (i choiceItem) Title() string       { return i.title }
func (i choiceItem) Description() string { return i.desc }
func (i choiceItem) FilterValue() string { return i.title }

var formatChoices = []choiceItem{
	{"mp3", "MP3", "Most compatible"},
	{"aac", "AAC", "Good for Apple devices"},
	{"ogg", "OGG Vorbis", "Open format, good quality"},
	{"opus", "Opus", "Best compression, modern"},
	{"m4a", "M4A", "Apple format, AAC in MP4 container"},
	{"flac", "FLAC", "Lossless compression"},
}

var bitrateChoices = map[string][]string{
	"mp3":  {"128k", "192k", "256k", "320k"},
	"aac":  {"128k", "192k", "256k", "320k"},
	"ogg":  {"128k", "192k", "256k", "320k"},
	"opus": {"96k", "128k", "192k", "256k"},
	"m4a":  {"128k", "192k", "256k", "320k"},
}

// DefaultBitrates maps each lossy format to its default bitrate.
var DefaultBitrates = map[string]string{
	"mp3":  "320k",
	"aac":  "256k",
	"ogg":  "256k",
	"opus": "128k",
	"m4a":  "256k",
}

// DefaultCompressionLevel is preselected in the FLAC level picker.
const DefaultCompressionLevel = 5

// WizardModel walks through artist, format and quality selection.
type WizardModel struct {
	step     step
	list     list.Model
	selected map[string]bool
	order    []library.ArtistCount

	format  string
	bitrate string
	level   int

	result *Selection
}

// NewWizard builds the wizard over the artists found in the album
// database.
func NewWizard(artists []library.ArtistCount) WizardModel {
	m := WizardModel{
		selected: make(map[string]bool),
		order:    artists,
		level:    DefaultCompressionLevel,
	}
	m.list = newWizardList("Select Artists", m.artistItems())
	return m
}

func newWizardList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	l := list.New(items, delegate, 80, 20)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = headerStyle
	return l
}

func (m *WizardModel) artistItems() []list.Item {
	items := make([]list.Item, len(m.order))
	for i, a := range m.order {
		items[i] = artistItem{name: a.Name, albums: a.Albums, selected: &m.selected}
	}
	return items
}

func formatItems() []list.Item {
	items := make([]list.Item, len(formatChoices))
	for i, c := range formatChoices {
		items[i] = c
	}
	return items
}

func bitrateItems(format string) []list.Item {
	def := DefaultBitrates[format]
	var items []list.Item
	for _, b := range bitrateChoices[format] {
		desc := ""
		if b == def {
			desc = "default"
		}
		items = append(items, choiceItem{value: b, title: b, desc: desc})
	}
	return items
}

func levelItems() []list.Item {
	items := make([]list.Item, 9)
	for l := 0; l <= 8; l++ {
		desc := ""
		switch l {
		case 0:
			desc = "fastest, least compression"
		case DefaultCompressionLevel:
			desc = "default"
		case 8:
			desc = "slowest, most compression"
		}
		items[l] = choiceItem{value: strconv.Itoa(l), title: strconv.Itoa(l), desc: desc}
	}
	return items
}

// Result returns the wizard outcome after the program finishes.
func (m WizardModel) Result() Selection {
	if m.result != nil {
		return *m.result
	}
	return Selection{Cancelled: true}
}

func (m WizardModel) Init() tea.Cmd {
	return tea.SetWindowTitle("flacpress")
}

func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.step != stepConfirm && m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			m.result = &Selection{Cancelled: true}
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		case " ", "space":
			if m.step == stepArtists {
				if item, ok := m.list.SelectedItem().(artistItem); ok {
					m.selected[item.name] = !m.selected[item.name]
				}
				return m, nil
			}
		case "enter":
			return m.advance()
		case "q":
			if m.step == stepConfirm {
				m.result = &Selection{Cancelled: true}
				return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
			}
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m WizardModel) advance() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepArtists:
		m.step = stepFormat
		m.list = newWizardList("Select Format", formatItems())
	case stepFormat:
		item, ok := m.list.SelectedItem().(choiceItem)
		if !ok {
			return m, nil
		}
		m.format = item.value
		if m.format == "flac" {
			m.step = stepLevel
			m.list = newWizardList("Select Compression Level", levelItems())
			m.list.Select(DefaultCompressionLevel)
		} else {
			m.step = stepBitrate
			m.list = newWizardList("Select Bitrate", bitrateItems(m.format))
			for i, b := range bitrateChoices[m.format] {
				if b == DefaultBitrates[m.format] {
					m.list.Select(i)
				}
			}
		}
	case stepBitrate:
		item, ok := m.list.SelectedItem().(choiceItem)
		if !ok {
			return m, nil
		}
		m.bitrate = item.value
		m.step = stepConfirm
	case stepLevel:
		item, ok := m.list.SelectedItem().(choiceItem)
		if !ok {
			return m, nil
		}
		m.level, _ = strconv.Atoi(item.value)
		m.step = stepConfirm
	case stepConfirm:
		m.result = &Selection{
			Artists: m.selectedArtists(),
			Format:  m.format,
			Bitrate: m.bitrate,
			Level:   m.level,
		}
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}
	return m, nil
}

// selectedArtists returns the toggled artists in database order. Nil
// means no filter, convert everything.
func (m WizardModel) selectedArtists() []string {
	var out []string
	for _, a := range m.order {
		if m.selected[a.Name] {
			out = append(out, a.Name)
		}
	}
	return out
}

func (m WizardModel) View() string {
	if m.step == stepConfirm {
		var b strings.Builder
		b.WriteString("\n  " + headerStyle.Render("Confirm Conversion") + "\n\n")

		artists := m.selectedArtists()
		if len(artists) == 0 {
			b.WriteString("  " + statusStyle.Render("Artists: all") + "\n")
		} else {
			b.WriteString("  " + statusStyle.Render("Artists: "+strings.Join(artists, ", ")) + "\n")
		}
		b.WriteString("  " + statusStyle.Render("Format: "+strings.ToUpper(m.format)) + "\n")
		if m.format == "flac" {
			b.WriteString("  " + statusStyle.Render(fmt.Sprintf("Compression Level: %d", m.level)) + "\n")
		} else {
			b.WriteString("  " + statusStyle.Render("Bitrate: "+m.bitrate) + "\n")
		}
		b.WriteString("\n  " + helpStyle.Render("enter start  q/esc cancel") + "\n")
		return b.String()
	}
	return m.list.View()
}
