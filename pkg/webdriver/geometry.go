package webdriver

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point is a position in CSS pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a width and height in CSS pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is a position plus size.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point returns the rounded top-left corner.
func (r Rect) Point() Point {
	return Point{X: int(math.Round(r.X)), Y: int(math.Round(r.Y))}
}

// Size returns the rect dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// decodeValue re-decodes a generic JSON value into out.
func decodeValue(v any, out any) error {
	if v == nil {
		return fmt.Errorf("%w: empty value", ErrProtocol)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: decode %T: %v", ErrProtocol, out, err)
	}
	return nil
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("%w: expected string, got %T", ErrProtocol, v)
}

func asBool(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("%w: expected bool, got %T", ErrProtocol, v)
}

func asStrings(v any) ([]string, error) {
	if v == nil {
		return []string{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected list, got %T", ErrProtocol, v)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string item, got %T", ErrProtocol, item)
		}
		out = append(out, s)
	}
	return out, nil
}
