package main

import (
	"fmt"
	"strings"

	"github.com/example/wall/internal/imagecodec"
)

// formatFlag is a flag.Value limited to the formats a command accepts.
type formatFlag struct {
	allowed []imagecodec.Format
	value   imagecodec.Format
}

func (f *formatFlag) String() string {
	if f == nil || f.value == imagecodec.FormatNone {
		return ""
	}
	return f.value.String()
}

func (f *formatFlag) Set(s string) error {
	format, err := imagecodec.ParseFormat(s)
	if err != nil {
		return err
	}
	if !format.In(f.allowed) {
		return fmt.Errorf("%w: %s (choose from %s)", imagecodec.ErrEncodeUnsupported, format, f.choices())
	}
	f.value = format
	return nil
}

func (f *formatFlag) choices() string {
	return strings.Join(imagecodec.Names(f.allowed), ", ")
}
