package board

import (
	"github.com/lukelpg/board-game-creator/internal/geom"
	"github.com/lukelpg/board-game-creator/internal/model"
)

// SectionSpec is the stored form of a section, always a polygon.
type SectionSpec struct {
	Name    string       `json:"name"`
	Kind    model.Kind   `json:"kind"`
	Points  []geom.Point `json:"points"`
	Outline string       `json:"outline"`
	Fill    string       `json:"fill"`
}

// Spec describes a grid board before it is materialized: dimensions and
// sections, no occupants.
type Spec struct {
	Name     string
	Width    int
	Height   int
	Sections []SectionSpec
}

func (s *Spec) Mode() Mode         { return ModeGrid }
func (s *Spec) LayoutName() string { return s.Name }

// Build materializes a live board from the spec.
func (s *Spec) Build() (*Board, error) {
	b, err := New(s.Width, s.Height)
	if err != nil {
		return nil, err
	}
	for _, sec := range s.Sections {
		b.AddSection(sec.Name, sec.Kind, sec.Points, sec.Outline, sec.Fill)
	}
	return b, nil
}
