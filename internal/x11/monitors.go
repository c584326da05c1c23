package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// Monitor is one enabled CRTC in root window coordinates.
type Monitor struct {
	Name                string
	X, Y, Width, Height int
}

func (m Monitor) contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// Monitors lists the enabled CRTCs reported by RandR.
func (c *Connection) Monitors() ([]Monitor, error) {
	conn := c.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr: %w", err)
	}
	res, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}

	var out []Monitor
	for i, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, res.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		m := Monitor{
			Name:   fmt.Sprintf("crtc%d", i),
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		}
		if o, err := randr.GetOutputInfo(conn, info.Outputs[0], res.ConfigTimestamp).Reply(); err == nil {
			m.Name = string(o.Name)
		}
		out = append(out, m)
	}
	return out, nil
}

// ScreenMonitor picks the area to lay out: the monitor holding the
// pointer, else the first monitor, else the root window.
func (c *Connection) ScreenMonitor() Monitor {
	whole := Monitor{Name: "root", Width: int(c.Screen.WidthInPixels), Height: int(c.Screen.HeightInPixels)}
	ms, err := c.Monitors()
	if err != nil || len(ms) == 0 {
		return whole
	}
	p, err := xproto.QueryPointer(c.Conn(), c.Root).Reply()
	if err != nil {
		return ms[0]
	}
	for _, m := range ms {
		if m.contains(int(p.RootX), int(p.RootY)) {
			return m
		}
	}
	return ms[0]
}
