//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

// Package clipboard publishes images on the desktop clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	owner        *selectionOwner
)

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		o := &selectionOwner{}
		if err := o.initialize(); err != nil {
			initErr = err
			return
		}
		owner = o
	})
	return initErr
}

// WriteImage encodes img as PNG and takes ownership of the CLIPBOARD
// selection to serve it. The returned channel is closed when another client
// takes the selection.
func WriteImage(img image.Image) (<-chan struct{}, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return owner.publish(buf.Bytes())
}

// incrTransfer is a payload being sent to one requestor in INCR chunks.
type incrTransfer struct {
	data   []byte
	target xproto.Atom
}

type transferKey struct {
	window   xproto.Window
	property xproto.Atom
}

type selectionOwner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atomSet
	// chunk is the largest property payload sent in one request.
	chunk int

	mu        sync.Mutex
	payload   []byte
	lost      chan struct{}
	transfers map[transferKey]*incrTransfer
}

type atomSet struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	png       xproto.Atom
	incr      xproto.Atom
}

func (o *selectionOwner) initialize() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}
	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return err
	}
	if err := xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0, xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		conn.Close()
		return err
	}
	atoms, err := internAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return err
	}
	o.conn = conn
	o.window = window
	o.atoms = atoms
	// Leave room for the ChangeProperty header.
	o.chunk = int(setup.MaximumRequestLength)*4 - 64
	o.transfers = map[transferKey]*incrTransfer{}
	go o.serve()
	return nil
}

func internAtoms(conn *xgb.Conn) (atomSet, error) {
	get := func(name string) (xproto.Atom, error) {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return 0, err
		}
		return reply.Atom, nil
	}
	var (
		set atomSet
		err error
	)
	if set.clipboard, err = get("CLIPBOARD"); err != nil {
		return atomSet{}, err
	}
	if set.targets, err = get("TARGETS"); err != nil {
		return atomSet{}, err
	}
	if set.png, err = get("image/png"); err != nil {
		return atomSet{}, err
	}
	if set.incr, err = get("INCR"); err != nil {
		return atomSet{}, err
	}
	return set, nil
}

func (o *selectionOwner) publish(data []byte) (<-chan struct{}, error) {
	lost := make(chan struct{})
	o.mu.Lock()
	o.payload = append([]byte(nil), data...)
	prev := o.lost
	o.lost = lost
	o.mu.Unlock()
	if prev != nil {
		close(prev)
	}
	if err := xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms.clipboard, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}
	return lost, nil
}

func (o *selectionOwner) serve() {
	defer o.release()
	for {
		ev, err := o.conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		if err != nil {
			log.Debug("clipboard event", "err", err)
			continue
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.PropertyNotifyEvent:
			if e.State == xproto.PropertyDelete {
				o.sendChunk(transferKey{e.Window, e.Atom})
			}
		case xproto.SelectionClearEvent:
			o.release()
		}
	}
}

// release drops the payload and wakes anyone waiting on publish.
func (o *selectionOwner) release() {
	o.mu.Lock()
	o.payload = nil
	lost := o.lost
	o.lost = nil
	o.mu.Unlock()
	if lost != nil {
		close(lost)
	}
}

func (o *selectionOwner) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}

	o.mu.Lock()
	payload := o.payload
	o.mu.Unlock()

	switch {
	case len(payload) == 0:
		property = xproto.AtomNone
	case e.Target == o.atoms.targets:
		targets := make([]byte, 8)
		xgb.Put32(targets, uint32(o.atoms.targets))
		xgb.Put32(targets[4:], uint32(o.atoms.png))
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, 2, targets)
	case e.Target == o.atoms.png && len(payload) <= o.chunk:
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, o.atoms.png, 8, uint32(len(payload)), payload)
	case e.Target == o.atoms.png:
		o.startIncr(e.Requestor, property, payload)
	default:
		property = xproto.AtomNone
	}

	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	xproto.SendEvent(o.conn, false, e.Requestor, 0, string(notify.Bytes()))
}

// startIncr announces an INCR transfer. The requestor deletes the property
// after each chunk, which triggers the next one in sendChunk.
func (o *selectionOwner) startIncr(requestor xproto.Window, property xproto.Atom, payload []byte) {
	o.mu.Lock()
	o.transfers[transferKey{requestor, property}] = &incrTransfer{data: payload, target: o.atoms.png}
	o.mu.Unlock()
	xproto.ChangeWindowAttributes(o.conn, requestor, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange})
	size := make([]byte, 4)
	xgb.Put32(size, uint32(len(payload)))
	xproto.ChangeProperty(o.conn, xproto.PropModeReplace, requestor, property, o.atoms.incr, 32, 1, size)
}

func (o *selectionOwner) sendChunk(key transferKey) {
	o.mu.Lock()
	t, ok := o.transfers[key]
	if !ok {
		o.mu.Unlock()
		return
	}
	n := min(len(t.data), o.chunk)
	chunk := t.data[:n]
	t.data = t.data[n:]
	if n == 0 {
		// The zero-length chunk just sent ends the transfer.
		delete(o.transfers, key)
	}
	o.mu.Unlock()
	xproto.ChangeProperty(o.conn, xproto.PropModeReplace, key.window, key.property, t.target, 8, uint32(n), chunk)
}
