// Package x11 installs and reads back root window wallpapers on an X server.
//
// A wallpaper is a server-side pixmap recorded in the _XROOTPMAP_ID and
// ESETROOT_PMAP_ID properties of the root window and used as the root
// window's background. Every operation talks to the server through Conn so
// that the protocol steps can be exercised without a display.
package x11

import (
	"fmt"
	"image"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

// putImageHeader is the fixed part of a PutImage request in bytes.
const putImageHeader = 24

// Conn is the subset of the X protocol used to manage root wallpapers.
type Conn interface {
	Setup() *xproto.SetupInfo
	DefaultScreen() *xproto.ScreenInfo
	// MaxRequestBytes is the largest request the server accepts.
	MaxRequestBytes() int

	InternAtom(name string, onlyIfExists bool) (xproto.Atom, error)
	GetProperty(win xproto.Window, prop, typ xproto.Atom, longLength uint32) (*xproto.GetPropertyReply, error)
	ChangeProperty(win xproto.Window, prop, typ xproto.Atom, format byte, count uint32, data []byte) error
	DeleteProperty(win xproto.Window, prop xproto.Atom) error

	CreatePixmap(depth byte, drawable xproto.Drawable, width, height uint16) (xproto.Pixmap, error)
	FreePixmap(p xproto.Pixmap) error
	CreateGC(drawable xproto.Drawable) (xproto.Gcontext, error)
	FreeGC(gc xproto.Gcontext) error
	PutImage(drawable xproto.Drawable, gc xproto.Gcontext, width, height uint16, dstY int16, depth byte, data []byte) error
	GetImage(drawable xproto.Drawable, y int16, width, height uint16) (*xproto.GetImageReply, error)
	GetGeometry(drawable xproto.Drawable) (*xproto.GetGeometryReply, error)

	SetBackgroundPixmap(win xproto.Window, p xproto.Pixmap) error
	ClearArea(win xproto.Window, width, height uint16) error
	SetCloseDownMode(mode byte) error
	KillClient(resource uint32) error

	Monitors(root xproto.Window) ([]Monitor, error)
	Close()
}

// Monitor is one active RandR output.
type Monitor struct {
	Name    string
	Rect    image.Rectangle
	Primary bool
}

type xgbConn struct {
	conn   *xgb.Conn
	setup  *xproto.SetupInfo
	screen *xproto.ScreenInfo
}

// Open connects to display, or to $DISPLAY when display is empty.
func Open(display string) (Conn, error) {
	var (
		conn *xgb.Conn
		err  error
	)
	if display == "" {
		conn, err = xgb.NewConn()
	} else {
		conn, err = xgb.NewConnDisplay(display)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	setup := xproto.Setup(conn)
	if setup == nil {
		conn.Close()
		return nil, fmt.Errorf("%w: xproto setup unavailable", ErrConnect)
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		conn.Close()
		return nil, fmt.Errorf("%w: xproto screen unavailable", ErrConnect)
	}
	return &xgbConn{conn: conn, setup: setup, screen: screen}, nil
}

func (x *xgbConn) Setup() *xproto.SetupInfo { return x.setup }

func (x *xgbConn) DefaultScreen() *xproto.ScreenInfo { return x.screen }

func (x *xgbConn) MaxRequestBytes() int { return int(x.setup.MaximumRequestLength) * 4 }

func (x *xgbConn) InternAtom(name string, onlyIfExists bool) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(x.conn, onlyIfExists, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

func (x *xgbConn) GetProperty(win xproto.Window, prop, typ xproto.Atom, longLength uint32) (*xproto.GetPropertyReply, error) {
	return xproto.GetProperty(x.conn, false, win, prop, typ, 0, longLength).Reply()
}

func (x *xgbConn) ChangeProperty(win xproto.Window, prop, typ xproto.Atom, format byte, count uint32, data []byte) error {
	return xproto.ChangePropertyChecked(x.conn, xproto.PropModeReplace, win, prop, typ, format, count, data).Check()
}

func (x *xgbConn) DeleteProperty(win xproto.Window, prop xproto.Atom) error {
	return xproto.DeletePropertyChecked(x.conn, win, prop).Check()
}

func (x *xgbConn) CreatePixmap(depth byte, drawable xproto.Drawable, width, height uint16) (xproto.Pixmap, error) {
	pid, err := xproto.NewPixmapId(x.conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreatePixmapChecked(x.conn, depth, pid, drawable, width, height).Check(); err != nil {
		return 0, err
	}
	return pid, nil
}

func (x *xgbConn) FreePixmap(p xproto.Pixmap) error {
	return xproto.FreePixmapChecked(x.conn, p).Check()
}

func (x *xgbConn) CreateGC(drawable xproto.Drawable) (xproto.Gcontext, error) {
	gc, err := xproto.NewGcontextId(x.conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreateGCChecked(x.conn, gc, drawable, 0, nil).Check(); err != nil {
		return 0, err
	}
	return gc, nil
}

func (x *xgbConn) FreeGC(gc xproto.Gcontext) error {
	return xproto.FreeGCChecked(x.conn, gc).Check()
}

func (x *xgbConn) PutImage(drawable xproto.Drawable, gc xproto.Gcontext, width, height uint16, dstY int16, depth byte, data []byte) error {
	return xproto.PutImageChecked(x.conn, xproto.ImageFormatZPixmap, drawable, gc, width, height, 0, dstY, 0, depth, data).Check()
}

func (x *xgbConn) GetImage(drawable xproto.Drawable, y int16, width, height uint16) (*xproto.GetImageReply, error) {
	return xproto.GetImage(x.conn, xproto.ImageFormatZPixmap, drawable, 0, y, width, height, ^uint32(0)).Reply()
}

func (x *xgbConn) GetGeometry(drawable xproto.Drawable) (*xproto.GetGeometryReply, error) {
	return xproto.GetGeometry(x.conn, drawable).Reply()
}

func (x *xgbConn) SetBackgroundPixmap(win xproto.Window, p xproto.Pixmap) error {
	return xproto.ChangeWindowAttributesChecked(x.conn, win, xproto.CwBackPixmap, []uint32{uint32(p)}).Check()
}

func (x *xgbConn) ClearArea(win xproto.Window, width, height uint16) error {
	return xproto.ClearAreaChecked(x.conn, false, win, 0, 0, width, height).Check()
}

func (x *xgbConn) SetCloseDownMode(mode byte) error {
	return xproto.SetCloseDownModeChecked(x.conn, mode).Check()
}

func (x *xgbConn) KillClient(resource uint32) error {
	return xproto.KillClientChecked(x.conn, resource).Check()
}

func (x *xgbConn) Monitors(root xproto.Window) ([]Monitor, error) {
	if err := randr.Init(x.conn); err != nil {
		return nil, fmt.Errorf("init randr: %w", err)
	}
	res, err := randr.GetScreenResources(x.conn, root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}
	primaryOutput := randr.Output(0)
	if primary, err := randr.GetOutputPrimary(x.conn, root).Reply(); err == nil {
		primaryOutput = primary.Output
	}
	monitors := make([]Monitor, 0, len(res.Outputs))
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(x.conn, output, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(x.conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		monitors = append(monitors, Monitor{
			Name: strings.TrimSpace(string(info.Name)),
			Rect: image.Rect(
				int(crtc.X),
				int(crtc.Y),
				int(crtc.X)+int(crtc.Width),
				int(crtc.Y)+int(crtc.Height),
			),
			Primary: output == primaryOutput,
		})
	}
	return monitors, nil
}

func (x *xgbConn) Close() {
	x.conn.Close()
}
