package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	list "github.com/charmbracelet/bubbles/list"

	"github.com/mchughj/PixelArt/internal/imgio"
	"github.com/mchughj/PixelArt/internal/store"
)

type fileItem struct {
	title, desc string
	path        string
	isDir       bool
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

// refreshDir lists the sub-directories and supported images of m.cwd.
func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var dirs, files []list.Item
	for _, e := range entries {
		name := e.Name()
		p := filepath.Join(m.cwd, name)
		if e.IsDir() {
			dirs = append(dirs, fileItem{title: name + "/", desc: "dir", path: p, isDir: true})
			continue
		}
		if imgio.Supported(name) {
			files = append(files, fileItem{title: name, desc: filepath.Ext(name), path: p})
		}
	}
	byTitle := func(items []list.Item) {
		sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	}
	byTitle(dirs)
	byTitle(files)

	items := []list.Item{fileItem{title: "../", desc: "dir", path: filepath.Dir(m.cwd), isDir: true}}
	items = append(items, dirs...)
	items = append(items, files...)
	m.l.SetItems(items)
	if len(files) == 0 {
		m.status = "no images in " + m.cwd
	}
}

// choose opens the selected picker entry. Leaving the picker without a
// file is not an error.
func (m *Model) choose() {
	it, ok := m.l.SelectedItem().(fileItem)
	if !ok {
		m.closePicker()
		return
	}
	if it.isDir {
		m.cwd = it.path
		m.l.ResetFilter()
		m.refreshDir()
		return
	}
	m.closePicker()
	m.loadPath(it.path)
}

func (m *Model) closePicker() {
	m.mode = modeView
}

// loadPath saves the current session, loads p and restores its saved
// viewport if there is one.
func (m *Model) loadPath(p string) {
	if abs, err := filepath.Abs(p); err == nil && p != "" {
		p = abs
	}
	m.saveSession()
	if err := m.ctl.LoadFile(p); err != nil {
		if errors.Is(err, imgio.ErrNoFileSelected) {
			return
		}
		m.status = "load error: " + err.Error()
		return
	}
	m.stopPreview()
	img := m.ctl.Image()
	m.status = fmt.Sprintf("loaded: %s  %dx%d", filepath.Base(p), img.Width(), img.Height())

	if m.history == nil {
		return
	}
	sess, err := m.history.Session(p)
	if err != nil {
		m.logger.Printf("session %s: %v", p, err)
		return
	}
	if sess == nil {
		return
	}
	if sess.Scale != 1 && sess.Scale > 0 {
		if err := m.ctl.Rescale(sess.Scale); err != nil {
			m.logger.Printf("restore scale %.3f: %v", sess.Scale, err)
		}
	}
	if err := m.ctl.SetOffset(sess.OffsetX, sess.OffsetY); err != nil {
		m.logger.Printf("restore offset: %v", err)
	}
	m.status += fmt.Sprintf("  (restored %d,%d x%.3g)", m.ctl.Offset().X, m.ctl.Offset().Y, m.ctl.Scale())
}

// saveSession records the viewport of the current image file.
func (m *Model) saveSession() {
	if m.history == nil || !m.ctl.Loaded() || m.ctl.Path() == "" {
		return
	}
	off := m.ctl.Offset()
	err := m.history.SaveSession(store.Session{
		Path:    m.ctl.Path(),
		OffsetX: off.X,
		OffsetY: off.Y,
		Scale:   m.ctl.Scale(),
	})
	if err != nil {
		m.logger.Printf("save session: %v", err)
	}
}
