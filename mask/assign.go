package mask

import (
	"slices"

	apperrors "github.com/xXAI-botXx/3xM/errors"
)

// ColorLabelMap maps every color of one mask image to its instance label.
// It is built per image and never shared.
type ColorLabelMap struct {
	colors []Color
	labels map[Color]uint8
}

// Label returns the label assigned to c.
func (m *ColorLabelMap) Label(c Color) (uint8, bool) {
	l, ok := m.labels[c]
	return l, ok
}

// Colors returns the mapped colors in canonical order, background first when present.
func (m *ColorLabelMap) Colors() []Color {
	return slices.Clone(m.colors)
}

// Len returns the number of mapped colors, background included.
func (m *ColorLabelMap) Len() int {
	return len(m.colors)
}

// Instances returns the number of non-background colors.
func (m *ColorLabelMap) Instances() int {
	if _, ok := m.labels[Background]; ok {
		return len(m.colors) - 1
	}
	return len(m.colors)
}

// NewColorLabelMap sorts the distinct colors canonically and assigns labels 1..N
// to every non-background color. Background maps to 0.
func NewColorLabelMap(colors []Color) (*ColorLabelMap, error) {
	sorted := slices.Clone(colors)
	slices.SortFunc(sorted, Color.Compare)
	sorted = slices.Compact(sorted)

	instances := len(sorted)
	if len(sorted) > 0 && sorted[0].IsBackground() {
		instances--
	}
	if instances > MaxLabel {
		return nil, apperrors.NewTooManyInstances(instances, MaxLabel)
	}

	m := &ColorLabelMap{
		colors: sorted,
		labels: make(map[Color]uint8, len(sorted)),
	}
	next := uint8(1)
	for _, c := range sorted {
		if c.IsBackground() {
			m.labels[c] = 0
			continue
		}
		m.labels[c] = next
		next++
	}
	return m, nil
}

// Assign builds the ColorLabelMap of raw and substitutes every pixel with its label.
// The same input always yields the same LabelMask.
func Assign(raw *RawMask) (*ColorLabelMap, *LabelMask, error) {
	hist := raw.Histogram()
	colors := make([]Color, 0, len(hist))
	for c := range hist {
		colors = append(colors, c)
	}

	cmap, err := NewColorLabelMap(colors)
	if err != nil {
		return nil, nil, err
	}

	out := NewLabelMask(raw.Width, raw.Height)
	for i, c := range raw.Pix {
		out.Pix[i] = cmap.labels[c]
	}
	return cmap, out, nil
}
