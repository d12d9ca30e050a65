package chart

import (
	"github.com/vanderheijden86/lifespan/pkg/model"
)

// Kind is the primitive a shape draws as.
type Kind int

const (
	KindLine Kind = iota
	KindRect
	KindCircle
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindRect:
		return "rect"
	case KindCircle:
		return "circle"
	case KindText:
		return "text"
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Shape classes.
const (
	ClassRowLine      = "row-line"
	ClassRangeBar     = "range-bar"
	ClassRangeStart   = string(model.CategoryHealthy)
	ClassRangeEnd     = string(model.CategoryLife)
	ClassRetirement   = string(model.CategoryRetirement)
	ClassHealthyText  = "healthy-text"
	ClassLifeText     = "life-text"
	ClassVerticalLine = "vertical-line"
	ClassAxisDomain   = "axis-domain"
	ClassAxisTop      = "axis-top"
	ClassAxisBottom   = "axis-bottom"
	ClassLocationTick = "location-tick"
	ClassLegendItem   = "legend-item"
	ClassLegendLabel  = "legend-label"
)

// DataClasses are the per-record classes that location selection dims.
var DataClasses = []string{
	ClassRangeBar, ClassRangeStart, ClassRangeEnd,
	ClassHealthyText, ClassLifeText, ClassRetirement,
}

// IsDataClass reports whether class is one of DataClasses.
func IsDataClass(class string) bool {
	for _, c := range DataClasses {
		if c == class {
			return true
		}
	}
	return false
}

// IsMarkerClass reports whether class is a hoverable marker.
func IsMarkerClass(class string) bool {
	return model.Category(class).IsValid()
}

// Shape is a single drawable element. Coordinates are in plot space,
// relative to the top-left corner inside the margins.
type Shape struct {
	ID    string `json:"id"`
	Kind  Kind   `json:"kind"`
	Class string `json:"class"`
	// Key joins the shape to a record location or a legend category.
	Key string `json:"key,omitempty"`

	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`
	W  float64 `json:"w,omitempty"`
	H  float64 `json:"h,omitempty"`
	R  float64 `json:"r,omitempty"`

	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	Dash        string  `json:"dash,omitempty"`

	Text     string  `json:"text,omitempty"`
	Anchor   string  `json:"anchor,omitempty"`
	DY       string  `json:"dy,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`

	Tooltip string `json:"tooltip,omitempty"`

	Dimmed      bool `json:"dimmed,omitempty"`
	Highlighted bool `json:"highlighted,omitempty"`
	Bold        bool `json:"bold,omitempty"`
}

// Selectable reports whether clicking the shape changes the selection.
func (s *Shape) Selectable() bool {
	switch s.Class {
	case ClassLocationTick, ClassLegendItem, ClassLegendLabel:
		return true
	}
	return false
}

// Hoverable reports whether hovering the shape shows a tooltip.
func (s *Shape) Hoverable() bool {
	return s.Tooltip != "" && IsMarkerClass(s.Class)
}

// Scene is the ordered list of shapes making up the chart. Draw order is
// slice order.
type Scene struct {
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	OriginX float64  `json:"origin_x"`
	OriginY float64  `json:"origin_y"`
	Shapes  []*Shape `json:"shapes"`

	byID map[string]*Shape
}

func newScene(l Layout) *Scene {
	return &Scene{
		Width:   l.Width,
		Height:  l.Height,
		OriginX: l.Margin.Left,
		OriginY: l.Margin.Top,
		byID:    make(map[string]*Shape),
	}
}

func (s *Scene) add(sh *Shape) *Shape {
	s.Shapes = append(s.Shapes, sh)
	s.byID[sh.ID] = sh
	return sh
}

// Shape returns the shape with the given id.
func (s *Scene) Shape(id string) (*Shape, bool) {
	sh, ok := s.byID[id]
	return sh, ok
}

// ByClass returns the shapes of one class in draw order.
func (s *Scene) ByClass(class string) []*Shape {
	var out []*Shape
	for _, sh := range s.Shapes {
		if sh.Class == class {
			out = append(out, sh)
		}
	}
	return out
}

// ByKey returns the shapes joined to key in draw order.
func (s *Scene) ByKey(key string) []*Shape {
	var out []*Shape
	for _, sh := range s.Shapes {
		if sh.Key == key {
			out = append(out, sh)
		}
	}
	return out
}

// ClearFlags resets dimmed, highlighted and bold on every shape.
func (s *Scene) ClearFlags() {
	for _, sh := range s.Shapes {
		sh.Dimmed = false
		sh.Highlighted = false
		sh.Bold = false
	}
}

// DimmedIDs lists the ids of dimmed shapes in draw order.
func (s *Scene) DimmedIDs() []string {
	var ids []string
	for _, sh := range s.Shapes {
		if sh.Dimmed {
			ids = append(ids, sh.ID)
		}
	}
	return ids
}

// Clone returns a deep copy suitable for concurrent readers.
func (s *Scene) Clone() *Scene {
	out := &Scene{
		Width:   s.Width,
		Height:  s.Height,
		OriginX: s.OriginX,
		OriginY: s.OriginY,
		Shapes:  make([]*Shape, 0, len(s.Shapes)),
		byID:    make(map[string]*Shape, len(s.Shapes)),
	}
	for _, sh := range s.Shapes {
		cp := *sh
		out.add(&cp)
	}
	return out
}
