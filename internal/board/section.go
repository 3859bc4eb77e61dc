package board

import (
	"github.com/lukelpg/board-game-creator/internal/geom"
	"github.com/lukelpg/board-game-creator/internal/model"
)

const (
	DefaultSectionName    = "Area"
	DefaultSectionOutline = "#808080"
)

// Section is a named polygonal zone restricting which entity kind may be
// placed inside it. Points are in board cell units.
type Section struct {
	Name    string
	Kind    model.Kind
	Points  []geom.Point
	Outline string
	Fill    string
}

// Contains reports whether the point, in cell units, is inside the section.
func (s *Section) Contains(x, y float64) bool {
	return geom.Contains(s.Points, x, y)
}

// Accepts reports whether an entity of kind k may be placed in the section.
func (s *Section) Accepts(k model.Kind) bool {
	return s.Kind == model.KindAny || s.Kind == k
}

// Spec returns the stored form of the section.
func (s *Section) Spec() SectionSpec {
	return SectionSpec{
		Name:    s.Name,
		Kind:    s.Kind,
		Points:  geom.Clone(s.Points),
		Outline: s.Outline,
		Fill:    s.Fill,
	}
}

func (s Section) clone() Section {
	s.Points = geom.Clone(s.Points)
	return s
}

func newSection(name string, kind model.Kind, points []geom.Point, outline, fill string) Section {
	if name == "" {
		name = DefaultSectionName
	}
	if kind == "" {
		kind = model.KindAny
	}
	if outline == "" {
		outline = DefaultSectionOutline
	}
	return Section{
		Name:    name,
		Kind:    kind,
		Points:  geom.Clone(points),
		Outline: outline,
		Fill:    fill,
	}
}

// firstContaining returns the first section in list order containing the
// point, or nil.
func firstContaining(secs []Section, x, y float64) *Section {
	for i := range secs {
		if secs[i].Contains(x, y) {
			return &secs[i]
		}
	}
	return nil
}
