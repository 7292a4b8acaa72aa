package desktop

import (
	"fmt"
	"time"
)

// PanelName identifies a system panel. Panels stack with windows but are
// not window records: they have no content identity and no taskbar entry.
type PanelName string

const (
	PanelTaskManager PanelName = "task-manager"
	PanelGitHub      PanelName = "github"
)

// ParsePanel validates a panel name.
func ParsePanel(s string) (PanelName, error) {
	switch p := PanelName(s); p {
	case PanelTaskManager, PanelGitHub:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPanel, s)
}

// Panel is the persisted state of a system panel. StartTime is kept for
// the GitHub panel only.
type Panel struct {
	Open      bool       `json:"open"`
	ZIndex    int        `json:"zIndex"`
	StartTime *time.Time `json:"startTime,omitempty"`
}

func (p Panel) clone() Panel {
	if p.StartTime != nil {
		t := *p.StartTime
		p.StartTime = &t
	}
	return p
}

func newPanels() map[PanelName]*Panel {
	return map[PanelName]*Panel{
		PanelTaskManager: {},
		PanelGitHub:      {},
	}
}

func panelKey(name PanelName) string {
	if name == PanelGitHub {
		return KeyGitHub
	}
	return KeyTaskManager
}

// OpenPanel shows a panel on top of everything. Opening an open panel
// brings it to the front.
func (d *Desktop) OpenPanel(name PanelName) (bool, error) {
	if _, err := ParsePanel(string(name)); err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	p := d.panels[name]
	if !p.Open && name == PanelGitHub {
		now := d.opts.Now()
		p.StartTime = &now
	}
	p.Open = true
	p.ZIndex = d.windows.AllocateZ()

	d.savePanelLocked(name)
	d.persistLocked()
	d.changedLocked()
	return true, nil
}

// ClosePanel hides a panel. Closing a closed panel is a no-op.
func (d *Desktop) ClosePanel(name PanelName) (bool, error) {
	if _, err := ParsePanel(string(name)); err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	p := d.panels[name]
	if !p.Open {
		return false, nil
	}
	p.Open = false

	d.savePanelLocked(name)
	d.changedLocked()
	return true, nil
}

// FocusPanel brings an open panel to the front.
func (d *Desktop) FocusPanel(name PanelName) (bool, error) {
	if _, err := ParsePanel(string(name)); err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	p := d.panels[name]
	if !p.Open {
		return false, nil
	}
	p.ZIndex = d.windows.AllocateZ()

	d.savePanelLocked(name)
	d.persistLocked()
	d.changedLocked()
	return true, nil
}
