// Package modal tracks which selection panel of the design tab is open.
package modal

import (
	"fmt"
	"strings"
	"sync"
)

// Panel identifies a selection panel. At most one is open at a time.
type Panel int

const (
	None Panel = iota
	Base
	Strap
	Accessory
	Color
	Pattern
	Leather
)

var panelNames = map[Panel]string{
	None:      "none",
	Base:      "base",
	Strap:     "strap",
	Accessory: "accessory",
	Color:     "color",
	Pattern:   "pattern",
	Leather:   "leather",
}

// Panels lists every openable panel.
var Panels = []Panel{Base, Strap, Accessory, Color, Pattern, Leather}

func (p Panel) String() string {
	if s, ok := panelNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Panel(%d)", int(p))
}

// MarshalText encodes the panel by name.
func (p Panel) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePanel maps a panel name, case-insensitively.
func ParsePanel(s string) (Panel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range panelNames {
		if name == s {
			return p, nil
		}
	}
	return None, fmt.Errorf("unknown panel %q", s)
}

// State holds the open panel. The zero value has every panel closed.
type State struct {
	mu   sync.Mutex
	open Panel
}

// Toggle opens p and closes every other panel, or closes p if it is already
// open. Toggling None closes everything. It returns the panel now open.
func (s *State) Toggle(p Panel) Panel {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p == None || s.open == p {
		s.open = None
	} else {
		s.open = p
	}
	return s.open
}

// Close closes whichever panel is open.
func (s *State) Close() {
	s.mu.Lock()
	s.open = None
	s.mu.Unlock()
}

// CloseIf closes p if it is the open panel. Choosing an item inside a panel
// dismisses it.
func (s *State) CloseIf(p Panel) {
	s.mu.Lock()
	if s.open == p {
		s.open = None
	}
	s.mu.Unlock()
}

// Open returns the open panel, or None.
func (s *State) Open() Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// IsOpen reports whether p is the open panel.
func (s *State) IsOpen(p Panel) bool {
	return p != None && s.Open() == p
}

// Snapshot reports the open/closed flag of every panel.
func (s *State) Snapshot() map[string]bool {
	open := s.Open()
	out := make(map[string]bool, len(Panels))
	for _, p := range Panels {
		out[p.String()] = p == open
	}
	return out
}
