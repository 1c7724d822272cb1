package lights

import (
	"errors"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
)

// ErrEmptyPalette is a configuration error; controllers refuse to start on it.
var ErrEmptyPalette = errors.New("palette has no entries")

type PaletteEntry struct {
	Color   Color
	Command CommandID
}

// Palette is the fixed set of colors the device can be commanded to produce.
// Immutable after construction; entry order is the tie-break order for
// nearest-color matching.
type Palette struct {
	entries []PaletteEntry
}

func NewPalette(entries []PaletteEntry) (*Palette, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyPalette
	}
	seen := make(map[CommandID]bool, len(entries))
	for _, e := range entries {
		if seen[e.Command] {
			return nil, fmt.Errorf("duplicate command %q in palette", e.Command)
		}
		seen[e.Command] = true
	}
	p := &Palette{entries: make([]PaletteEntry, len(entries))}
	copy(p.entries, entries)
	return p, nil
}

func (p *Palette) Len() int {
	return len(p.entries)
}

// Nearest maps a color to the command of the closest palette entry. On equal
// distance the earliest loaded entry wins.
func (p *Palette) Nearest(c Color) CommandID {
	best := 0
	bestDist := c.DistanceTo(p.entries[0].Color)
	for i := 1; i < len(p.entries); i++ {
		if d := c.DistanceTo(p.entries[i].Color); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return p.entries[best].Command
}

type deviceConfig struct {
	DeviceName string `json:"device_name"`
	Palette    []struct {
		Command string   `json:"command"`
		RGB     [3]uint8 `json:"rgb"`
	} `json:"palette"`
	Commands map[string]string `json:"commands"`
}

// LoadDevice reads the remote-code config file and returns the palette plus
// the command → IR packet table for the named device. Palette order in the
// file is preserved. Every palette command must have a learned packet.
func LoadDevice(path, deviceName string) (*Palette, map[CommandID]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read device config: %w", err)
	}

	var devices []deviceConfig
	if err := sonic.Unmarshal(raw, &devices); err != nil {
		return nil, nil, fmt.Errorf("parse device config: %w", err)
	}

	for _, d := range devices {
		if d.DeviceName != deviceName {
			continue
		}

		entries := make([]PaletteEntry, 0, len(d.Palette))
		for _, e := range d.Palette {
			if _, ok := d.Commands[e.Command]; !ok {
				return nil, nil, fmt.Errorf("palette command %q has no learned packet for device %q", e.Command, deviceName)
			}
			entries = append(entries, PaletteEntry{
				Color:   Color{Red: e.RGB[0], Green: e.RGB[1], Blue: e.RGB[2]},
				Command: CommandID(e.Command),
			})
		}

		palette, err := NewPalette(entries)
		if err != nil {
			return nil, nil, fmt.Errorf("device %q: %w", deviceName, err)
		}

		packets := make(map[CommandID]string, len(d.Commands))
		for name, packet := range d.Commands {
			packets[CommandID(name)] = packet
		}
		return palette, packets, nil
	}

	return nil, nil, fmt.Errorf("device %q not found in %s", deviceName, path)
}
