//go:build windows

package wallpaper

import (
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	spiGetDeskWallpaper = 0x0073
	spiSetDeskWallpaper = 0x0014
	spifUpdateIniFile   = 0x01
	spifSendChange      = 0x02
	maxPath             = 260
)

var (
	user32                    = windows.NewLazySystemDLL("user32.dll")
	procSystemParametersInfoW = user32.NewProc("SystemParametersInfoW")
)

type windowsBackend struct{}

func newBackend() Backend {
	return windowsBackend{}
}

func (windowsBackend) Grammar() Grammar {
	return Grammar{SetArg: "FULL_PATH"}
}

func (windowsBackend) Set(path string, _ Options) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return err
	}
	p, err := windows.UTF16PtrFromString(abs)
	if err != nil {
		return err
	}
	r, _, callErr := procSystemParametersInfoW.Call(
		spiSetDeskWallpaper,
		0,
		uintptr(unsafe.Pointer(p)),
		spifUpdateIniFile|spifSendChange,
	)
	if r == 0 {
		return fmt.Errorf("SystemParametersInfoW(SPI_SETDESKWALLPAPER): %w", callErr)
	}
	return nil
}

func (windowsBackend) Get(string, Options) (string, error) {
	buf := make([]uint16, maxPath)
	r, _, callErr := procSystemParametersInfoW.Call(
		spiGetDeskWallpaper,
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&buf[0])),
		0,
	)
	if r == 0 {
		return "", fmt.Errorf("SystemParametersInfoW(SPI_GETDESKWALLPAPER): %w", callErr)
	}
	return windows.UTF16ToString(buf), nil
}
