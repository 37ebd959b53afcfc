// Package gamedata описывает документ SerGIS JSON Game Data и операции над ним:
// проход целостности (Check), обслуживание индексов goto, экспорт и импорт.
package gamedata

// DefaultGenerator записывается в поле generator, если оно пустое.
const DefaultGenerator = "SerGIS Author (Go)"

// OnJumpBack определяет поведение при возврате к уже пройденному промпту.
type OnJumpBack string

const (
	OnJumpBackNone  OnJumpBack = ""
	OnJumpBackReset OnJumpBack = "reset"
	OnJumpBackHide  OnJumpBack = "hide"
)

// Valid сообщает, входит ли значение в допустимый набор.
func (o OnJumpBack) Valid() bool {
	switch o {
	case OnJumpBackNone, OnJumpBackReset, OnJumpBackHide:
		return true
	}
	return false
}

// Game - корневой документ игры.
type Game struct {
	ID                     string        `json:"id,omitempty"`
	Name                   string        `json:"name"`
	Author                 string        `json:"author"`
	Generator              string        `json:"generator"`
	Created                Timestamp     `json:"created"`
	Modified               Timestamp     `json:"modified"`
	JumpingBackAllowed     bool          `json:"jumpingBackAllowed"`
	OnJumpBack             OnJumpBack    `json:"onJumpBack"`
	JumpingForwardAllowed  bool          `json:"jumpingForwardAllowed"`
	ShowActionsInUserOrder bool          `json:"showActionsInUserOrder"`
	PromptList             []PromptEntry `json:"promptList"`
}

// PromptEntry связывает промпт со списком действий.
// ActionList[i] соответствует Prompt.Choices[i] по позиции.
type PromptEntry struct {
	Prompt     Prompt          `json:"prompt"`
	ActionList []ChoiceActions `json:"actionList"`
}

// Prompt - один шаг игры.
type Prompt struct {
	Title    string    `json:"title"`
	Map      MapState  `json:"map"`
	Contents []Content `json:"contents"`
	Choices  []Content `json:"choices"`
}

// MapState - состояние карты для промпта. nil в числовых полях означает
// "унаследовать от предыдущего промпта".
type MapState struct {
	Latitude     *float64                  `json:"latitude"`
	Longitude    *float64                  `json:"longitude"`
	Zoom         *float64                  `json:"zoom"`
	FrontendInfo map[string]map[string]any `json:"frontendInfo"`
	Reinitialize *bool                     `json:"reinitialize,omitempty"`
}

// ChoiceActions - действия, выполняемые при выборе варианта, и его стоимость в очках.
type ChoiceActions struct {
	Actions    []Action `json:"actions"`
	PointValue float64  `json:"pointValue"`
}

// Action - скриптовый эффект выбора. Для "goto" Data[0] хранит индекс промпта.
type Action struct {
	Name     string `json:"name"`
	Frontend string `json:"frontend,omitempty"`
	Data     []any  `json:"data"`
}

// NewGame создает пустой документ с заполненными значениями по умолчанию.
func NewGame(name, author string) *Game {
	g := &Game{Name: name, Author: author}
	Check(g)
	return g
}

// NewPromptEntry возвращает пустой промпт с картой без координат.
func NewPromptEntry(title string) PromptEntry {
	return PromptEntry{
		Prompt: Prompt{
			Title:    title,
			Map:      MapState{FrontendInfo: map[string]map[string]any{}},
			Contents: []Content{},
			Choices:  []Content{},
		},
		ActionList: []ChoiceActions{},
	}
}

// NewChoiceActions возвращает пустой набор действий для варианта выбора.
func NewChoiceActions() ChoiceActions {
	return ChoiceActions{Actions: []Action{}}
}

// Clone возвращает глубокую копию документа. Значения копируются как есть,
// без нормализации, поэтому копия годится и для документа до прохода Check.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	clone := *g
	if g.PromptList != nil {
		clone.PromptList = make([]PromptEntry, len(g.PromptList))
		for i, entry := range g.PromptList {
			clone.PromptList[i] = entry.clone()
		}
	}
	return &clone
}

func (e PromptEntry) clone() PromptEntry {
	out := PromptEntry{Prompt: e.Prompt}
	out.Prompt.Map = e.Prompt.Map.clone()
	out.Prompt.Contents = cloneContents(e.Prompt.Contents)
	out.Prompt.Choices = cloneContents(e.Prompt.Choices)
	if e.ActionList != nil {
		out.ActionList = make([]ChoiceActions, len(e.ActionList))
		for i, ca := range e.ActionList {
			out.ActionList[i] = ChoiceActions{PointValue: ca.PointValue}
			if ca.Actions != nil {
				out.ActionList[i].Actions = make([]Action, len(ca.Actions))
				for j, a := range ca.Actions {
					out.ActionList[i].Actions[j] = Action{Name: a.Name, Frontend: a.Frontend, Data: cloneSlice(a.Data)}
				}
			}
		}
	}
	return out
}

func (m MapState) clone() MapState {
	out := MapState{
		Latitude:     clonePtr(m.Latitude),
		Longitude:    clonePtr(m.Longitude),
		Zoom:         clonePtr(m.Zoom),
		Reinitialize: clonePtr(m.Reinitialize),
	}
	if m.FrontendInfo != nil {
		out.FrontendInfo = make(map[string]map[string]any, len(m.FrontendInfo))
		for name, info := range m.FrontendInfo {
			if info == nil {
				out.FrontendInfo[name] = nil
				continue
			}
			out.FrontendInfo[name] = cloneMap(info)
		}
	}
	return out
}

func cloneContents(list []Content) []Content {
	if list == nil {
		return nil
	}
	out := make([]Content, len(list))
	for i, c := range list {
		out[i] = c.clone()
	}
	return out
}

func (c Content) clone() Content {
	c.Centered = clonePtr(c.Centered)
	c.Style = clonePtr(c.Style)
	c.Width = clonePtr(c.Width)
	c.Height = clonePtr(c.Height)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSlice(list []any) []any {
	if list == nil {
		return nil
	}
	out := make([]any, len(list))
	for i, v := range list {
		out[i] = cloneValue(v)
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue копирует значения из Action.Data и frontendInfo. Скаляры и Point
// неизменяемы и возвращаются как есть.
func cloneValue(v any) any {
	switch val := v.(type) {
	case []any:
		return cloneSlice(val)
	case map[string]any:
		return cloneMap(val)
	case []Point:
		return append([]Point(nil), val...)
	case Content:
		return val.clone()
	case []Content:
		return cloneContents(val)
	}
	return v
}
