// Package scene models the four-scene narrative as a finite state machine.
//
// Transitions are pure ([Next]); the [Navigator] applies them and performs the
// entry sequence for the new scene against a [Stage] and a [Renderer].
package scene

import (
	"errors"
	"fmt"
	"strings"
)

// Scene identifies one mutually exclusive presentation state.
type Scene int

// Scenes in presentation order.
const (
	Overview Scene = iota
	Cmp2013_2014
	Cmp2018_2019
	Cmp2023_2024
)

// ErrUnknownScene is returned for scene values or names outside the fixed set.
var ErrUnknownScene = errors.New("unknown scene")

// Window is the two-year pair compared by a comparison scene.
type Window struct {
	A int `json:"a"`
	B int `json:"b"`
}

// String formats the window as "A vs B".
func (w Window) String() string {
	return fmt.Sprintf("%d vs %d", w.A, w.B)
}

type descriptor struct {
	id     string
	label  string
	window Window
}

var descriptors = [...]descriptor{
	Overview:     {id: "overview", label: "Overview"},
	Cmp2013_2014: {id: "2013-2014", label: "2013 vs 2014", window: Window{A: 2013, B: 2014}},
	Cmp2018_2019: {id: "2018-2019", label: "2018 vs 2019", window: Window{A: 2018, B: 2019}},
	Cmp2023_2024: {id: "2023-2024", label: "2023 vs 2024", window: Window{A: 2023, B: 2024}},
}

// All returns every scene in presentation order.
func All() []Scene {
	return []Scene{Overview, Cmp2013_2014, Cmp2018_2019, Cmp2023_2024}
}

// Valid reports whether s is one of the four scenes.
func (s Scene) Valid() bool {
	return s >= Overview && s <= Cmp2023_2024
}

// ID returns the stable identifier used in URLs, file names and story files.
func (s Scene) ID() string {
	if !s.Valid() {
		return fmt.Sprintf("scene(%d)", int(s))
	}

	return descriptors[s].id
}

// String implements fmt.Stringer.
func (s Scene) String() string {
	return s.ID()
}

// Label returns the navigation button caption.
func (s Scene) Label() string {
	if !s.Valid() {
		return s.ID()
	}

	return descriptors[s].label
}

// Window returns the compared year pair. The boolean is false for Overview.
func (s Scene) Window() (Window, bool) {
	if !s.Valid() || s == Overview {
		return Window{}, false
	}

	return descriptors[s].window, true
}

// Comparison reports whether s is one of the year-pair scenes.
func (s Scene) Comparison() bool {
	_, ok := s.Window()

	return ok
}

// MarshalText encodes the scene as its ID.
func (s Scene) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScene, int(s))
	}

	return []byte(s.ID()), nil
}

// UnmarshalText decodes a scene ID.
func (s *Scene) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// Parse resolves a scene ID. "home" is accepted as an alias for Overview.
func Parse(raw string) (Scene, error) {
	key := strings.ToLower(strings.TrimSpace(raw))

	for _, s := range All() {
		if key == s.ID() {
			return s, nil
		}
	}

	if key == "home" {
		return Overview, nil
	}

	return Overview, fmt.Errorf("%w: %q", ErrUnknownScene, raw)
}
