package gamedata

import (
	"math"
	"strconv"
	"strings"
)

// FieldKind - тип редактируемого значения. Редактор строит по нему виджет формы,
// проход целостности - значение по умолчанию и приведение типа.
type FieldKind string

const (
	FieldBoolean   FieldKind = "boolean"
	FieldNumber    FieldKind = "number"
	FieldString    FieldKind = "string"
	FieldMultiline FieldKind = "string_multiline"
	FieldFile      FieldKind = "file"
	FieldColor     FieldKind = "color"
	FieldDropdown  FieldKind = "dropdown"
	FieldPointList FieldKind = "point_list"
	FieldContent   FieldKind = "content"
)

// DefaultColor используется для пустых или некорректных значений цвета.
const DefaultColor = "#000000"

// Field описывает одно поле в таблице метаданных.
type Field struct {
	Name    string
	Kind    FieldKind
	Options []string // для FieldDropdown, первый вариант - значение по умолчанию
	Default any      // nil - значение по умолчанию для Kind
}

// DefaultValue возвращает значение поля по умолчанию.
func (f Field) DefaultValue() any {
	if f.Default != nil {
		return f.Default
	}
	switch f.Kind {
	case FieldBoolean:
		return false
	case FieldNumber:
		return float64(0)
	case FieldColor:
		return DefaultColor
	case FieldDropdown:
		if len(f.Options) > 0 {
			return f.Options[0]
		}
		return ""
	case FieldPointList:
		return []Point{}
	case FieldContent:
		return Content{Type: ContentText}
	}
	return ""
}

// Coerce приводит произвольное значение к типу поля, подставляя значение по
// умолчанию там, где приведение невозможно.
func (f Field) Coerce(v any) any {
	switch f.Kind {
	case FieldBoolean:
		if b, ok := v.(bool); ok {
			return b
		}
		return f.DefaultValue()
	case FieldNumber:
		if n, ok := toNumber(v); ok {
			return n
		}
		return f.DefaultValue()
	case FieldString, FieldMultiline, FieldFile:
		if s, ok := v.(string); ok {
			return s
		}
		return f.DefaultValue()
	case FieldColor:
		if s, ok := v.(string); ok && isColor(s) {
			return s
		}
		return f.DefaultValue()
	case FieldDropdown:
		if s, ok := v.(string); ok {
			for _, opt := range f.Options {
				if opt == s {
					return s
				}
			}
		}
		return f.DefaultValue()
	case FieldPointList:
		return pointsFromAny(v)
	case FieldContent:
		c := contentFromAny(v)
		checkContent(&c)
		return c
	}
	return v
}

// Point - точка на карте, в JSON записывается как [latitude, longitude].
type Point struct {
	Latitude  float64
	Longitude float64
}

// MarshalJSON пишет точку массивом из двух чисел.
func (p Point) MarshalJSON() ([]byte, error) {
	return []byte("[" + formatNumber(p.Latitude) + "," + formatNumber(p.Longitude) + "]"), nil
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func pointsFromAny(v any) []Point {
	switch list := v.(type) {
	case []Point:
		out := make([]Point, 0, len(list))
		for _, p := range list {
			out = append(out, sanitizePoint(p))
		}
		return out
	case []any:
		out := make([]Point, 0, len(list))
		for _, item := range list {
			if p, ok := pointFromAny(item); ok {
				out = append(out, p)
			}
		}
		return out
	}
	return []Point{}
}

func pointFromAny(v any) (Point, bool) {
	switch val := v.(type) {
	case Point:
		return sanitizePoint(val), true
	case []any:
		if len(val) < 2 {
			return Point{}, false
		}
		lat, ok1 := toNumber(val[0])
		lng, ok2 := toNumber(val[1])
		if !ok1 || !ok2 {
			return Point{}, false
		}
		return Point{Latitude: lat, Longitude: lng}, true
	case map[string]any:
		lat, ok1 := toNumber(val["latitude"])
		lng, ok2 := toNumber(val["longitude"])
		if !ok1 || !ok2 {
			return Point{}, false
		}
		return Point{Latitude: lat, Longitude: lng}, true
	}
	return Point{}, false
}

func sanitizePoint(p Point) Point {
	if !isFinite(p.Latitude) {
		p.Latitude = 0
	}
	if !isFinite(p.Longitude) {
		p.Longitude = 0
	}
	return p
}

// toNumber принимает float64 и целые типы; строки не приводятся.
func toNumber(v any) (float64, bool) {
	var n float64
	switch val := v.(type) {
	case float64:
		n = val
	case float32:
		n = float64(val)
	case int:
		n = float64(val)
	case int64:
		n = float64(val)
	case int32:
		n = float64(val)
	default:
		return 0, false
	}
	if !isFinite(n) {
		return 0, false
	}
	return n, true
}

func isFinite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// isColor принимает #rgb, #rrggbb и #rrggbbaa.
func isColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	switch len(hex) {
	case 3, 6, 8:
	default:
		return false
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
