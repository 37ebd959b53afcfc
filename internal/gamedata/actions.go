package gamedata

import (
	"encoding/json"
	"math"
)

// Имена общих действий, не зависящих от фронтенда карты.
const (
	ActionExplain = "explain"
	ActionGoto    = "goto"
	ActionLogout  = "logout"
)

// ActionSchema описывает параметры действия (элементы Action.Data).
// Если Variadic задан, все элементы Data имеют этот тип и Params не используется.
type ActionSchema struct {
	Name     string
	Frontend string
	Params   []Field
	Variadic *Field
}

var explainItem = Field{Name: "content", Kind: FieldContent}

// GenericActions - действия, доступные при любом фронтенде.
var GenericActions = []ActionSchema{
	{Name: ActionExplain, Variadic: &explainItem},
	{Name: ActionGoto, Params: []Field{{Name: "promptIndex", Kind: FieldNumber}}},
	{Name: ActionLogout},
}

// LookupAction ищет схему действия: сначала общие, затем действия фронтенда.
func LookupAction(name, frontend string) (ActionSchema, bool) {
	if frontend == "" {
		for _, s := range GenericActions {
			if s.Name == name {
				return s, true
			}
		}
		return ActionSchema{}, false
	}
	fe, ok := LookupFrontend(frontend)
	if !ok {
		return ActionSchema{}, false
	}
	for _, s := range fe.Actions {
		if s.Name == name {
			return s, true
		}
	}
	return ActionSchema{}, false
}

// IsGoto сообщает, является ли действие переходом к промпту.
func (a Action) IsGoto() bool {
	return a.Name == ActionGoto && a.Frontend == ""
}

// GotoTarget возвращает индекс целевого промпта. ok=false, если действие не goto
// или индекс не записан числом.
func (a Action) GotoTarget() (int, bool) {
	if !a.IsGoto() || len(a.Data) == 0 {
		return 0, false
	}
	n, ok := toNumber(a.Data[0])
	if !ok || n != math.Trunc(n) {
		return 0, false
	}
	return int(n), true
}

// SetGotoTarget записывает индекс. Числа хранятся как float64, как после JSON.
func (a *Action) SetGotoTarget(index int) {
	if len(a.Data) == 0 {
		a.Data = []any{float64(index)}
		return
	}
	a.Data[0] = float64(index)
}

// GotoAction создает действие перехода к промпту.
func GotoAction(index int) Action {
	return Action{Name: ActionGoto, Data: []any{float64(index)}}
}

// ExplainAction создает действие с пояснением.
func ExplainAction(contents ...Content) Action {
	data := make([]any, 0, len(contents))
	for _, c := range contents {
		data = append(data, c)
	}
	return Action{Name: ActionExplain, Data: data}
}

// UnmarshalJSON декодирует действие мягко.
func (a *Action) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = actionFromAny(v)
	return nil
}

func actionFromAny(v any) Action {
	m, ok := v.(map[string]any)
	if !ok {
		return Action{}
	}
	a := Action{
		Name:     stringFromAny(m["name"]),
		Frontend: stringFromAny(m["frontend"]),
	}
	if list, ok := m["data"].([]any); ok {
		a.Data = list
	}
	return a
}

// checkAction приводит Data к схеме. Для неизвестных действий Data только
// очищается от nil-среза; их значения могут принадлежать незнакомому фронтенду.
func checkAction(a *Action) {
	if a.Data == nil {
		a.Data = []any{}
	}
	schema, ok := LookupAction(a.Name, a.Frontend)
	if !ok {
		for i, item := range a.Data {
			if n, isNum := item.(float64); isNum && !isFinite(n) {
				a.Data[i] = nil
			}
		}
		return
	}
	if schema.Variadic != nil {
		for i, item := range a.Data {
			a.Data[i] = schema.Variadic.Coerce(item)
		}
		return
	}
	data := make([]any, len(schema.Params))
	for i, param := range schema.Params {
		if i < len(a.Data) {
			data[i] = param.Coerce(a.Data[i])
		} else {
			data[i] = param.DefaultValue()
		}
	}
	if a.IsGoto() {
		// Индекс промпта должен быть целым неотрицательным числом.
		n := data[0].(float64)
		if n < 0 || n != math.Trunc(n) {
			data[0] = float64(0)
		}
	}
	a.Data = data
}
