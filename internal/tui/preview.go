package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mchughj/PixelArt/internal/frames"
)

type previewTickMsg struct{ id int }

// startPreview plays the frames an export of the current view would
// contain, using the edited request when the dialog was used on the same
// image.
func (m *Model) startPreview() tea.Cmd {
	snap, err := m.ctl.Snapshot()
	if err != nil {
		m.status = "preview: " + err.Error()
		return nil
	}
	req := frames.NewRequest(snap)
	if m.req.Snapshot.Image != nil && m.req.Snapshot.Path == snap.Path &&
		m.req.Snapshot.Image.Size() == snap.Image.Size() {
		req.StrideX, req.StrideY = m.req.StrideX, m.req.StrideY
		req.FrameCount, req.DelayMS, req.Columns = m.req.FrameCount, m.req.DelayMS, m.req.Columns
	}
	if err := req.Validate(); err != nil {
		m.status = "preview: " + err.Error()
		return nil
	}
	m.previewReq = req
	m.previewSeq = nil
	m.preview = true
	m.previewID++
	if !m.nextPreviewFrame() {
		m.stopPreview()
		m.status = "preview: every frame is out of bounds"
		return nil
	}
	m.status = "preview playing (p stops)"
	return previewTick(m.previewID, req.DelayMS)
}

func (m *Model) stopPreview() {
	m.preview = false
	m.previewSeq = nil
	m.previewFrame = nil
}

// nextPreviewFrame advances to the next in-bounds frame, restarting the
// run after FrameCount frames. It reports false when a whole run has no
// frame inside the image.
func (m *Model) nextPreviewFrame() bool {
	spec := m.previewReq.Spec()
	spec.Limit = 0
	img := m.previewReq.Snapshot.Image
	for tries := 0; tries <= m.previewReq.FrameCount; tries++ {
		if m.previewSeq == nil {
			m.previewSeq = frames.NewSequencer(spec)
		}
		f, err := m.previewSeq.Next()
		if f.Index+1 >= m.previewReq.FrameCount {
			m.previewSeq = nil
		}
		if errors.Is(err, frames.ErrFrameOutOfBounds) {
			continue
		}
		if err != nil {
			return false
		}
		tile, ok := img.Crop(f.Rect)
		if !ok {
			continue
		}
		m.previewFrame = tile
		return true
	}
	return false
}

func previewTick(id, delayMS int) tea.Cmd {
	if delayMS < 10 {
		delayMS = 10
	}
	return tea.Tick(time.Duration(delayMS)*time.Millisecond, func(time.Time) tea.Msg {
		return previewTickMsg{id: id}
	})
}

func (m Model) onPreviewTick(msg previewTickMsg) (tea.Model, tea.Cmd) {
	if !m.preview || msg.id != m.previewID {
		return m, nil
	}
	if !m.nextPreviewFrame() {
		m.stopPreview()
		return m, nil
	}
	return m, previewTick(m.previewID, m.previewReq.DelayMS)
}
