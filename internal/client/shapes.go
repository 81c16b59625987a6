package client

import "strings"

// Shape is what an endpoint returns when it succeeds.
type Shape int

const (
	// ShapeSingle endpoints return one object; their zero value is absent.
	ShapeSingle Shape = iota
	// ShapeSequence endpoints return a JSON array; their zero value is [].
	ShapeSequence
)

// ZeroValue is the JSON a degraded read of this shape yields, nil for absent.
func (s Shape) ZeroValue() []byte {
	if s == ShapeSequence {
		return []byte("[]")
	}
	return nil
}

// ShapeRule maps a path pattern to its shape. A "*" segment matches exactly
// one path segment.
type ShapeRule struct {
	Pattern string
	Shape   Shape
}

// ShapeTable resolves shapes by the first matching rule. Paths no rule
// matches are singles.
type ShapeTable []ShapeRule

// DefaultShapes describes the studio read endpoints.
var DefaultShapes = ShapeTable{
	{Pattern: "/api/projects", Shape: ShapeSequence},
	{Pattern: "/api/projects/*/files", Shape: ShapeSequence},
	{Pattern: "/api/projects/*/progress", Shape: ShapeSequence},
	{Pattern: "/api/projects/*", Shape: ShapeSingle},
}

func (t ShapeTable) Lookup(path string) Shape {
	segs := splitPath(path)
	for _, rule := range t {
		if matchSegments(splitPath(rule.Pattern), segs) {
			return rule.Shape
		}
	}
	return ShapeSingle
}

func splitPath(p string) []string {
	p = strings.Trim(strings.ToLower(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, segs []string) bool {
	if len(pattern) != len(segs) {
		return false
	}
	for i, p := range pattern {
		if p != "*" && p != segs[i] {
			return false
		}
	}
	return true
}
