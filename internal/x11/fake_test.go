package x11

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

type fakeScreen struct {
	width, height    uint16
	depth, bpp       byte
	lsbFirst         bool
	red, green, blue uint32
	class            byte
}

var screen24 = fakeScreen{
	width: 1920, height: 1080,
	depth: 24, bpp: 32,
	lsbFirst: true,
	red:      0xFF0000, green: 0x00FF00, blue: 0x0000FF,
	class: xproto.VisualClassTrueColor,
}

type fakeProp struct {
	typ    xproto.Atom
	format byte
	data   []byte
}

type fakePixmap struct {
	width, height uint16
	depth         byte
	stride        int
	data          []byte
}

// fakeServer is an in-memory X server with a single screen.
type fakeServer struct {
	setup      *xproto.SetupInfo
	screen     *xproto.ScreenInfo
	maxRequest int

	atoms      map[string]xproto.Atom
	props      map[xproto.Atom]fakeProp
	pixmaps    map[xproto.Pixmap]*fakePixmap
	gcs        map[xproto.Gcontext]bool
	nextID     uint32
	background xproto.Pixmap
	clears     int
	closeDown  byte
	closed     bool
	killed     []uint32
	putSizes   []int
	calls      []string
	fail       map[string]error
	// failNth fails only the nth (1-based) call of a request with errInjected.
	failNth  map[string]int
	counts   map[string]int
	monitors []Monitor
}

func newFakeServer(t *testing.T, s fakeScreen) *fakeServer {
	t.Helper()
	const rootVisual = 0x21
	screen := xproto.ScreenInfo{
		Root:           0x1e0,
		WidthInPixels:  s.width,
		HeightInPixels: s.height,
		RootVisual:     rootVisual,
		RootDepth:      s.depth,
		AllowedDepths: []xproto.DepthInfo{{
			Depth: s.depth,
			Visuals: []xproto.VisualInfo{{
				VisualId:  rootVisual,
				Class:     s.class,
				RedMask:   s.red,
				GreenMask: s.green,
				BlueMask:  s.blue,
			}},
		}},
	}
	formats := []xproto.Format{
		{Depth: 1, BitsPerPixel: 1, ScanlinePad: 32},
		{Depth: s.depth, BitsPerPixel: s.bpp, ScanlinePad: 32},
	}
	if s.depth != 32 {
		formats = append(formats, xproto.Format{Depth: 32, BitsPerPixel: 32, ScanlinePad: 32})
	}
	order := byte(xproto.ImageOrderMSBFirst)
	if s.lsbFirst {
		order = xproto.ImageOrderLSBFirst
	}
	setup := &xproto.SetupInfo{
		MaximumRequestLength: 65535,
		ImageByteOrder:       order,
		PixmapFormats:        formats,
		Roots:                []xproto.ScreenInfo{screen},
	}
	return &fakeServer{
		setup:      setup,
		screen:     &setup.Roots[0],
		maxRequest: int(setup.MaximumRequestLength) * 4,
		atoms:      map[string]xproto.Atom{},
		props:      map[xproto.Atom]fakeProp{},
		pixmaps:    map[xproto.Pixmap]*fakePixmap{},
		gcs:        map[xproto.Gcontext]bool{},
		nextID:     0x400000,
		fail:       map[string]error{},
		failNth:    map[string]int{},
		counts:     map[string]int{},
	}
}

// dialer installs s as the server reached by dial for the rest of the test.
func (s *fakeServer) dialer(t *testing.T) {
	t.Helper()
	orig := dial
	dial = func(string) (Conn, error) {
		s.closed = false
		return s, nil
	}
	t.Cleanup(func() { dial = orig })
}

func (s *fakeServer) call(name string) error {
	s.calls = append(s.calls, name)
	s.counts[name]++
	if n, ok := s.failNth[name]; ok && n == s.counts[name] {
		return errInjected
	}
	return s.fail[name]
}

func (s *fakeServer) id() uint32 {
	s.nextID++
	return s.nextID
}

func (s *fakeServer) stride(depth byte, width int) int {
	for _, f := range s.setup.PixmapFormats {
		if f.Depth == depth {
			return PixelFormat{BitsPerPixel: int(f.BitsPerPixel), ScanlinePad: int(f.ScanlinePad)}.Stride(width)
		}
	}
	panic(fmt.Sprintf("no pixmap format for depth %d", depth))
}

// setRootPixmap records id in the named root atom the way another setter would.
func (s *fakeServer) setRootPixmap(name string, id xproto.Pixmap) {
	atom, _ := s.InternAtom(name, false)
	value := make([]byte, 4)
	xgb.Put32(value, uint32(id))
	s.props[atom] = fakeProp{typ: xproto.AtomPixmap, format: 32, data: value}
}

func (s *fakeServer) rootPixmap(name string) (xproto.Pixmap, bool) {
	atom, ok := s.atoms[name]
	if !ok {
		return 0, false
	}
	prop, ok := s.props[atom]
	if !ok || prop.typ != xproto.AtomPixmap || len(prop.data) != 4 {
		return 0, false
	}
	return xproto.Pixmap(xgb.Get32(prop.data)), true
}

// addPixmap creates a pixmap owned by some other client.
func (s *fakeServer) addPixmap(width, height uint16, depth byte) xproto.Pixmap {
	pid := xproto.Pixmap(s.id())
	stride := s.stride(depth, int(width))
	s.pixmaps[pid] = &fakePixmap{width: width, height: height, depth: depth, stride: stride, data: make([]byte, stride*int(height))}
	return pid
}

func (s *fakeServer) Setup() *xproto.SetupInfo { return s.setup }

func (s *fakeServer) DefaultScreen() *xproto.ScreenInfo { return s.screen }

func (s *fakeServer) MaxRequestBytes() int { return s.maxRequest }

func (s *fakeServer) InternAtom(name string, onlyIfExists bool) (xproto.Atom, error) {
	if err := s.call("InternAtom"); err != nil {
		return 0, err
	}
	if atom, ok := s.atoms[name]; ok {
		return atom, nil
	}
	if onlyIfExists {
		return xproto.AtomNone, nil
	}
	atom := xproto.Atom(300 + len(s.atoms))
	s.atoms[name] = atom
	return atom, nil
}

func (s *fakeServer) GetProperty(win xproto.Window, prop, typ xproto.Atom, longLength uint32) (*xproto.GetPropertyReply, error) {
	if err := s.call("GetProperty"); err != nil {
		return nil, err
	}
	if win != s.screen.Root {
		return nil, xproto.WindowError{NiceName: "Window", BadValue: uint32(win)}
	}
	p, ok := s.props[prop]
	if !ok {
		return &xproto.GetPropertyReply{}, nil
	}
	if typ != xproto.AtomAny && typ != p.typ {
		return &xproto.GetPropertyReply{Type: p.typ, Format: p.format}, nil
	}
	n := uint32(len(p.data)) / uint32(p.format/8)
	return &xproto.GetPropertyReply{Type: p.typ, Format: p.format, ValueLen: n, Value: p.data}, nil
}

func (s *fakeServer) ChangeProperty(win xproto.Window, prop, typ xproto.Atom, format byte, count uint32, data []byte) error {
	if err := s.call("ChangeProperty"); err != nil {
		return err
	}
	s.props[prop] = fakeProp{typ: typ, format: format, data: append([]byte(nil), data...)}
	return nil
}

func (s *fakeServer) DeleteProperty(win xproto.Window, prop xproto.Atom) error {
	if err := s.call("DeleteProperty"); err != nil {
		return err
	}
	delete(s.props, prop)
	return nil
}

func (s *fakeServer) CreatePixmap(depth byte, drawable xproto.Drawable, width, height uint16) (xproto.Pixmap, error) {
	if err := s.call("CreatePixmap"); err != nil {
		return 0, err
	}
	return s.addPixmap(width, height, depth), nil
}

func (s *fakeServer) FreePixmap(p xproto.Pixmap) error {
	if err := s.call("FreePixmap"); err != nil {
		return err
	}
	if _, ok := s.pixmaps[p]; !ok {
		return xproto.PixmapError{NiceName: "Pixmap", BadValue: uint32(p)}
	}
	delete(s.pixmaps, p)
	return nil
}

func (s *fakeServer) CreateGC(drawable xproto.Drawable) (xproto.Gcontext, error) {
	if err := s.call("CreateGC"); err != nil {
		return 0, err
	}
	gc := xproto.Gcontext(s.id())
	s.gcs[gc] = true
	return gc, nil
}

func (s *fakeServer) FreeGC(gc xproto.Gcontext) error {
	if err := s.call("FreeGC"); err != nil {
		return err
	}
	delete(s.gcs, gc)
	return nil
}

func (s *fakeServer) PutImage(drawable xproto.Drawable, gc xproto.Gcontext, width, height uint16, dstY int16, depth byte, data []byte) error {
	if err := s.call("PutImage"); err != nil {
		return err
	}
	size := putImageHeader + (len(data)+3)/4*4
	if size > s.maxRequest {
		return xproto.LengthError{NiceName: "Length"}
	}
	s.putSizes = append(s.putSizes, size)
	pm, ok := s.pixmaps[xproto.Pixmap(drawable)]
	if !ok {
		return xproto.DrawableError{NiceName: "Drawable", BadValue: uint32(drawable)}
	}
	if !s.gcs[gc] {
		return xproto.GContextError{NiceName: "GContext", BadValue: uint32(gc)}
	}
	if depth != pm.depth || width != pm.width || len(data) != int(height)*pm.stride {
		return xproto.MatchError{NiceName: "Match"}
	}
	copy(pm.data[int(dstY)*pm.stride:], data)
	return nil
}

func (s *fakeServer) GetImage(drawable xproto.Drawable, y int16, width, height uint16) (*xproto.GetImageReply, error) {
	if err := s.call("GetImage"); err != nil {
		return nil, err
	}
	pm, ok := s.pixmaps[xproto.Pixmap(drawable)]
	if !ok {
		return nil, xproto.DrawableError{NiceName: "Drawable", BadValue: uint32(drawable)}
	}
	if width != pm.width || int(y)+int(height) > int(pm.height) {
		return nil, xproto.MatchError{NiceName: "Match"}
	}
	start := int(y) * pm.stride
	data := append([]byte(nil), pm.data[start:start+int(height)*pm.stride]...)
	return &xproto.GetImageReply{Depth: pm.depth, Data: data}, nil
}

func (s *fakeServer) GetGeometry(drawable xproto.Drawable) (*xproto.GetGeometryReply, error) {
	if err := s.call("GetGeometry"); err != nil {
		return nil, err
	}
	pm, ok := s.pixmaps[xproto.Pixmap(drawable)]
	if !ok {
		return nil, xproto.DrawableError{NiceName: "Drawable", BadValue: uint32(drawable)}
	}
	return &xproto.GetGeometryReply{Depth: pm.depth, Root: s.screen.Root, Width: pm.width, Height: pm.height}, nil
}

func (s *fakeServer) SetBackgroundPixmap(win xproto.Window, p xproto.Pixmap) error {
	if err := s.call("SetBackgroundPixmap"); err != nil {
		return err
	}
	if _, ok := s.pixmaps[p]; !ok {
		return xproto.PixmapError{NiceName: "Pixmap", BadValue: uint32(p)}
	}
	s.background = p
	return nil
}

func (s *fakeServer) ClearArea(win xproto.Window, width, height uint16) error {
	if err := s.call("ClearArea"); err != nil {
		return err
	}
	s.clears++
	return nil
}

func (s *fakeServer) SetCloseDownMode(mode byte) error {
	if err := s.call("SetCloseDownMode"); err != nil {
		return err
	}
	s.closeDown = mode
	return nil
}

func (s *fakeServer) KillClient(resource uint32) error {
	if err := s.call("KillClient"); err != nil {
		return err
	}
	if _, ok := s.pixmaps[xproto.Pixmap(resource)]; !ok {
		return xproto.ValueError{NiceName: "Value", BadValue: resource}
	}
	s.killed = append(s.killed, resource)
	delete(s.pixmaps, xproto.Pixmap(resource))
	return nil
}

func (s *fakeServer) Monitors(root xproto.Window) ([]Monitor, error) {
	if err := s.call("Monitors"); err != nil {
		return nil, err
	}
	return s.monitors, nil
}

func (s *fakeServer) Close() {
	s.closed = true
	// Resources of a client that did not retain them die with its connection.
	if s.closeDown != xproto.CloseDownRetainPermanent {
		for gc := range s.gcs {
			delete(s.gcs, gc)
		}
	}
}

func (s *fakeServer) called(name string) int {
	n := 0
	for _, c := range s.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (s *fakeServer) indexOf(name string) int {
	for i, c := range s.calls {
		if c == name {
			return i
		}
	}
	return -1
}

var errInjected = errors.New("injected failure")
