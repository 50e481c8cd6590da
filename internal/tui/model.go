package tui

import (
	"image"
	"io"
	"log"
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mchughj/PixelArt/internal/frames"
	"github.com/mchughj/PixelArt/internal/store"
	"github.com/mchughj/PixelArt/internal/view"
)

// Overview box used by the terminal UI, in pixels. Two pixel rows share
// one terminal line.
const (
	OverviewWidth  = 40
	OverviewHeight = 48
)

// gridCellScale is the on-screen size of one tile pixel.
const gridCellScale = 2

// History persists sessions and exports. *store.Store implements it.
type History interface {
	SaveSession(store.Session) error
	Session(path string) (*store.Session, error)
	RecordExport(store.Export) error
	Exports(limit int) ([]store.Export, error)
}

type mode int

const (
	modeView mode = iota
	modePicker
	modeExport
	modeHistory
)

type Model struct {
	width  int
	height int

	ctl     *view.Controller
	history History
	logger  *log.Logger

	mode        mode
	helpVisible bool
	showBorder  bool
	status      string
	failed      bool

	cache *renderCache

	// file picker
	cwd string
	l   list.Model

	// export dialog
	inputs    []textinput.Model
	focus     int
	req       frames.Request
	exporting bool

	// export history
	tbl table.Model

	// animated preview
	preview      bool
	previewID    int
	previewSeq   *frames.Sequencer
	previewReq   frames.Request
	previewFrame *image.NRGBA
}

// renderCache holds the last rendered grid and overview. The controller
// marks it dirty on every redraw.
type renderCache struct {
	dirty    bool
	border   bool
	grid     string
	overview string
}

// New returns a model driving ctl. history and logger may be nil.
func New(ctl *view.Controller, history History, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	m := Model{
		ctl:         ctl,
		history:     history,
		logger:      logger,
		helpVisible: true,
		showBorder:  true,
		status:      "pixelart ready",
		cache:       &renderCache{dirty: true},
	}
	cache := m.cache
	ctl.OnRedraw(func(view.Display) { cache.dirty = true })

	m.cwd, _ = os.Getwd()
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Images"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)

	m.tbl = table.New(table.WithFocused(true), table.WithHeight(12))
	return m
}

// NewWithPath loads path before the program starts.
func NewWithPath(ctl *view.Controller, history History, logger *log.Logger, path string) Model {
	m := New(ctl, history, logger)
	m.loadPath(path)
	return m
}

func (m Model) Init() tea.Cmd { return nil }
