package gamedata

import "encoding/json"

// ContentType - тип блока контента.
type ContentType string

const (
	ContentText    ContentType = "text"
	ContentHTML    ContentType = "html"
	ContentImage   ContentType = "image"
	ContentYouTube ContentType = "youtube"
)

// ContentTypeInfo описывает поля, допустимые для типа контента.
type ContentTypeInfo struct {
	Type   ContentType
	Fields []Field
}

// ContentTypes - фиксированная таблица типов контента. Порядок важен для редактора.
var ContentTypes = []ContentTypeInfo{
	{Type: ContentText, Fields: []Field{
		{Name: "value", Kind: FieldMultiline},
		{Name: "centered", Kind: FieldBoolean},
		{Name: "style", Kind: FieldString},
	}},
	{Type: ContentHTML, Fields: []Field{
		{Name: "value", Kind: FieldMultiline},
		{Name: "style", Kind: FieldString},
	}},
	{Type: ContentImage, Fields: []Field{
		{Name: "value", Kind: FieldFile},
		{Name: "centered", Kind: FieldBoolean},
		{Name: "width", Kind: FieldNumber},
		{Name: "height", Kind: FieldNumber},
	}},
	{Type: ContentYouTube, Fields: []Field{
		{Name: "value", Kind: FieldString},
		{Name: "centered", Kind: FieldBoolean},
		{Name: "width", Kind: FieldNumber},
		{Name: "height", Kind: FieldNumber},
	}},
}

// LookupContentType ищет тип в таблице.
func LookupContentType(t ContentType) (ContentTypeInfo, bool) {
	for _, info := range ContentTypes {
		if info.Type == t {
			return info, true
		}
	}
	return ContentTypeInfo{}, false
}

// HasField сообщает, есть ли у типа поле с данным именем.
func (i ContentTypeInfo) HasField(name string) bool {
	for _, f := range i.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Content - блок контента промпта или вариант выбора.
// Необязательные поля заполняются только для типов, которые их поддерживают.
type Content struct {
	Type     ContentType `json:"type"`
	Value    string      `json:"value"`
	Centered *bool       `json:"centered,omitempty"`
	Style    *string     `json:"style,omitempty"`
	Width    *float64    `json:"width,omitempty"`
	Height   *float64    `json:"height,omitempty"`
}

// TextContent - сокращение для текстового блока.
func TextContent(value string) Content {
	return Content{Type: ContentText, Value: value}
}

// UnmarshalJSON декодирует блок мягко: значения неверного типа отбрасываются.
func (c *Content) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = contentFromAny(v)
	return nil
}

func contentFromAny(v any) Content {
	switch val := v.(type) {
	case Content:
		return val
	case string:
		// Старые документы хранили варианты выбора строками.
		return TextContent(val)
	case map[string]any:
		c := Content{
			Type:  ContentType(stringFromAny(val["type"])),
			Value: stringFromAny(val["value"]),
		}
		if b, ok := val["centered"].(bool); ok {
			c.Centered = &b
		}
		if s, ok := val["style"].(string); ok {
			c.Style = &s
		}
		c.Width = numberPtrFromAny(val["width"])
		c.Height = numberPtrFromAny(val["height"])
		return c
	}
	return Content{Type: ContentText}
}

// checkContent приводит блок к таблице типов: неизвестный тип становится text,
// поля, не принадлежащие типу, очищаются.
func checkContent(c *Content) {
	info, ok := LookupContentType(c.Type)
	if !ok {
		c.Type = ContentText
		info, _ = LookupContentType(ContentText)
	}
	if !info.HasField("centered") {
		c.Centered = nil
	}
	if !info.HasField("style") {
		c.Style = nil
	}
	if !info.HasField("width") || (c.Width != nil && !isFinite(*c.Width)) {
		c.Width = nil
	}
	if !info.HasField("height") || (c.Height != nil && !isFinite(*c.Height)) {
		c.Height = nil
	}
}

func stringFromAny(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func numberPtrFromAny(v any) *float64 {
	if n, ok := toNumber(v); ok {
		return &n
	}
	return nil
}
