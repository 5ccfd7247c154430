package x11

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const (
	rootPmapAtom     = "_XROOTPMAP_ID"
	esetrootPmapAtom = "ESETROOT_PMAP_ID"
)

// readPixmapProperty returns the pixmap stored in prop on win, or false when
// the property is missing or not a PIXMAP.
func readPixmapProperty(c Conn, win xproto.Window, prop xproto.Atom) (xproto.Pixmap, bool, error) {
	if prop == xproto.AtomNone {
		return 0, false, nil
	}
	reply, err := c.GetProperty(win, prop, xproto.AtomPixmap, 1)
	if err != nil {
		return 0, false, err
	}
	if reply == nil || reply.Type != xproto.AtomPixmap || reply.Format != 32 || reply.ValueLen == 0 || len(reply.Value) < 4 {
		return 0, false, nil
	}
	id := xproto.Pixmap(xgb.Get32(reply.Value))
	return id, id != 0, nil
}

type rootAtom struct {
	name string
	id   xproto.Atom
	old  xproto.Pixmap
	set  bool
}

// Install makes p the root window background and records it in both root
// pixmap atoms. The returned bool reports whether the atoms now name p; once
// they do, p belongs to the server and the caller must not free it, even if
// a later step fails. A previous pixmap that both atoms agreed on is
// released once the atoms are committed; failing to release it is only
// logged.
func Install(c Conn, v ScreenVisual, p ServerPixmap) (bool, error) {
	atoms := []rootAtom{{name: rootPmapAtom}, {name: esetrootPmapAtom}}
	for i := range atoms {
		a := &atoms[i]
		id, err := c.InternAtom(a.name, false)
		if err != nil {
			return false, fmt.Errorf("%w: intern %s: %w", ErrServerRejected, a.name, err)
		}
		a.id = id
		a.old, a.set, err = readPixmapProperty(c, v.Root, id)
		if err != nil {
			log.Debug("read previous root pixmap", "atom", a.name, "err", err)
		}
	}
	log.Debug("root pixmap atoms", rootPmapAtom, atoms[0].old, esetrootPmapAtom, atoms[1].old)

	// Retain before anything names p, so no failure can leave the atoms or
	// the background pointing at a pixmap destroyed with this connection.
	if err := c.SetCloseDownMode(xproto.CloseDownRetainPermanent); err != nil {
		return false, fmt.Errorf("%w: retain pixmap: %w", ErrServerRejected, err)
	}

	value := make([]byte, 4)
	xgb.Put32(value, uint32(p.ID))
	for i, a := range atoms {
		if err := c.ChangeProperty(v.Root, a.id, xproto.AtomPixmap, 32, 1, value); err != nil {
			restoreAtoms(c, v.Root, atoms[:i])
			return false, fmt.Errorf("%w: set %s: %w", ErrServerRejected, a.name, err)
		}
	}

	err := c.SetBackgroundPixmap(v.Root, p.ID)
	if err != nil {
		err = fmt.Errorf("%w: set root background: %w", ErrServerRejected, err)
	} else if cerr := c.ClearArea(v.Root, v.Width, v.Height); cerr != nil {
		err = fmt.Errorf("%w: clear root window: %w", ErrServerRejected, cerr)
	}

	// The atoms name p now, so the old pixmap is unreferenced whatever
	// happened to the background.
	releasePrevious(c, atoms, p.ID)
	return true, err
}

// restoreAtoms puts back the values atoms held before Install touched them.
func restoreAtoms(c Conn, root xproto.Window, atoms []rootAtom) {
	for _, a := range atoms {
		var err error
		if a.set {
			value := make([]byte, 4)
			xgb.Put32(value, uint32(a.old))
			err = c.ChangeProperty(root, a.id, xproto.AtomPixmap, 32, 1, value)
		} else {
			err = c.DeleteProperty(root, a.id)
		}
		if err != nil {
			log.Warn("could not restore root pixmap atom", "atom", a.name, "err", err)
		}
	}
}

func releasePrevious(c Conn, atoms []rootAtom, installed xproto.Pixmap) {
	root, eset := atoms[0], atoms[1]
	if !root.set || !eset.set || root.old != eset.old || root.old == installed {
		return
	}
	if err := c.KillClient(uint32(root.old)); err != nil {
		log.Warn("could not release previous wallpaper pixmap", "pixmap", root.old, "err", err)
		return
	}
	log.Debug("released previous wallpaper pixmap", "pixmap", root.old)
}

// ReadAtom returns the pixmap currently recorded as the root background,
// preferring _XROOTPMAP_ID over ESETROOT_PMAP_ID.
func ReadAtom(c Conn, root xproto.Window) (ServerPixmap, error) {
	for _, name := range []string{rootPmapAtom, esetrootPmapAtom} {
		atom, err := c.InternAtom(name, true)
		if err != nil {
			return ServerPixmap{}, fmt.Errorf("intern %s: %w", name, err)
		}
		id, ok, err := readPixmapProperty(c, root, atom)
		if err != nil {
			return ServerPixmap{}, fmt.Errorf("read %s: %w", name, err)
		}
		if ok {
			log.Debug("found root pixmap", "atom", name, "pixmap", id)
			return ServerPixmap{ID: id}, nil
		}
	}
	return ServerPixmap{}, ErrNoWallpaperSet
}
