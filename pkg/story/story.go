// Package story holds the narrative content shown alongside each scene: the
// page title, the overview hint, one heading and text block per scene, and the
// labels of the overview markers.
package story

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/gamestory/pkg/scene"
)

// ErrInvalidStory is returned when a story document fails to decode or does
// not satisfy the story schema.
var ErrInvalidStory = errors.New("invalid story")

//go:embed default.yaml story.schema.json
var files embed.FS

const (
	defaultFile = "default.yaml"
	schemaFile  = "story.schema.json"
)

// Narrative is the text block for one scene.
type Narrative struct {
	Heading string `json:"heading" yaml:"heading"`
	Text    string `json:"text"    yaml:"text"`
}

// Story is a complete narrative document.
type Story struct {
	Title       string               `json:"title"                 yaml:"title"`
	Hint        string               `json:"hint,omitempty"        yaml:"hint"`
	Scenes      map[string]Narrative `json:"scenes"                yaml:"scenes"`
	Annotations map[int]string       `json:"annotations,omitempty" yaml:"annotations"`
}

// Default returns the embedded story.
func Default() (*Story, error) {
	data, err := files.ReadFile(defaultFile)
	if err != nil {
		return nil, fmt.Errorf("read embedded story: %w", err)
	}

	return Parse(data)
}

// Load reads a story file. An empty path selects the embedded story.
func Load(path string) (*Story, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read story: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Parse decodes a YAML story document and validates it.
func Parse(data []byte) (*Story, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Story

	err := dec.Decode(&s)
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidStory)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStory, err)
	}

	err = s.Validate()
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks the story against the embedded JSON schema.
func (s *Story) Validate() error {
	schema, err := files.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("read story schema: %w", err)
	}

	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStory, err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validate story: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		problems = append(problems, verr.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidStory, strings.Join(problems, "; "))
}

// Narrative returns the text block for sc. Scenes without an entry fall back
// to the scene label as heading.
func (s *Story) Narrative(sc scene.Scene) Narrative {
	if n, ok := s.Scenes[sc.ID()]; ok {
		return n
	}

	return Narrative{Heading: sc.Label()}
}

// AnnotationLabels returns a copy of the overview marker labels.
func (s *Story) AnnotationLabels() map[int]string {
	if len(s.Annotations) == 0 {
		return scene.DefaultAnnotationLabels()
	}

	return maps.Clone(s.Annotations)
}
