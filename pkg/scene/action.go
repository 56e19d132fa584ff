package scene

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownAction is returned for actions outside the closed navigation set.
// Receiving one indicates a wiring bug in the caller, not a data problem.
var ErrUnknownAction = errors.New("unknown navigation action")

// ActionKind distinguishes direct scene selection from annotation clicks.
type ActionKind int

// Navigation action kinds.
const (
	ActionSelect ActionKind = iota + 1
	ActionAnnotation
)

// Action is one navigation request.
type Action struct {
	Kind  ActionKind
	Scene Scene
	Year  int
}

// Select returns the action that activates s.
func Select(s Scene) Action {
	return Action{Kind: ActionSelect, Scene: s}
}

// AnnotationClick returns the action fired by the overview marker for year.
func AnnotationClick(year int) Action {
	return Action{Kind: ActionAnnotation, Year: year}
}

// String renders the action in the form accepted by ParseAction.
func (a Action) String() string {
	switch a.Kind {
	case ActionSelect:
		return "scene:" + a.Scene.ID()
	case ActionAnnotation:
		return "annotation:" + strconv.Itoa(a.Year)
	default:
		return fmt.Sprintf("action(%d)", int(a.Kind))
	}
}

// MarshalText encodes the action in its ParseAction form.
func (a Action) MarshalText() ([]byte, error) {
	if a.Kind != ActionSelect && a.Kind != ActionAnnotation {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, a)
	}

	return []byte(a.String()), nil
}

// UnmarshalText decodes an action in its ParseAction form.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}

// annotationTargets lists the overview markers that navigate, keyed by year.
var annotationTargets = map[int]Scene{
	2014: Cmp2013_2014,
	2019: Cmp2018_2019,
	2024: Cmp2023_2024,
}

// AnnotationTarget returns the scene an overview marker for year navigates to.
func AnnotationTarget(year int) (Scene, bool) {
	target, ok := annotationTargets[year]

	return target, ok
}

// Next returns the state reached by applying action in current. Transitions
// are unconditional: any valid action moves to its target, including the
// current scene itself.
func Next(current Scene, action Action) (Scene, error) {
	switch action.Kind {
	case ActionSelect:
		if !action.Scene.Valid() {
			return current, fmt.Errorf("%w: %w: %d", ErrUnknownAction, ErrUnknownScene, int(action.Scene))
		}

		return action.Scene, nil
	case ActionAnnotation:
		target, ok := AnnotationTarget(action.Year)
		if !ok {
			return current, fmt.Errorf("%w: no navigable marker for %d", ErrUnknownAction, action.Year)
		}

		return target, nil
	default:
		return current, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
}

// ParseAction parses "scene:<id>" or "annotation:<year>".
func ParseAction(raw string) (Action, error) {
	kind, value, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}

	switch strings.ToLower(kind) {
	case "scene":
		s, err := Parse(value)
		if err != nil {
			return Action{}, fmt.Errorf("%w: %w", ErrUnknownAction, err)
		}

		return Select(s), nil
	case "annotation":
		year, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return Action{}, fmt.Errorf("%w: bad year %q", ErrUnknownAction, value)
		}

		return AnnotationClick(year), nil
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
}
