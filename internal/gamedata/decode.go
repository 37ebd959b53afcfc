package gamedata

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON декодирует документ мягко: синтаксически корректный JSON-объект
// всегда декодируется, значения неверного типа заменяются нулевыми.
func (g *Game) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: top-level value is not an object", ErrMalformedDocument)
	}
	*g = gameFromMap(m)
	return nil
}

func gameFromMap(m map[string]any) Game {
	g := Game{
		ID:                     stringFromAny(m["id"]),
		Name:                   stringFromAny(m["name"]),
		Author:                 stringFromAny(m["author"]),
		Generator:              stringFromAny(m["generator"]),
		Created:                timestampFromAny(m["created"]),
		Modified:               timestampFromAny(m["modified"]),
		JumpingBackAllowed:     boolFromAny(m["jumpingBackAllowed"]),
		OnJumpBack:             OnJumpBack(stringFromAny(m["onJumpBack"])),
		JumpingForwardAllowed:  boolFromAny(m["jumpingForwardAllowed"]),
		ShowActionsInUserOrder: boolFromAny(m["showActionsInUserOrder"]),
	}
	if list, ok := m["promptList"].([]any); ok {
		g.PromptList = make([]PromptEntry, 0, len(list))
		for _, item := range list {
			g.PromptList = append(g.PromptList, promptEntryFromAny(item))
		}
	}
	return g
}

func promptEntryFromAny(v any) PromptEntry {
	m, _ := v.(map[string]any)
	entry := PromptEntry{Prompt: promptFromAny(m["prompt"])}
	if list, ok := m["actionList"].([]any); ok {
		entry.ActionList = make([]ChoiceActions, 0, len(list))
		for _, item := range list {
			entry.ActionList = append(entry.ActionList, choiceActionsFromAny(item))
		}
	}
	return entry
}

func promptFromAny(v any) Prompt {
	m, _ := v.(map[string]any)
	p := Prompt{
		Title:    stringFromAny(m["title"]),
		Map:      mapFromAny(m["map"]),
		Contents: contentsFromAny(m["contents"]),
		Choices:  contentsFromAny(m["choices"]),
	}
	return p
}

func contentsFromAny(v any) []Content {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Content, 0, len(list))
	for _, item := range list {
		out = append(out, contentFromAny(item))
	}
	return out
}

func mapFromAny(v any) MapState {
	m, _ := v.(map[string]any)
	ms := MapState{
		Latitude:  numberPtrFromAny(m["latitude"]),
		Longitude: numberPtrFromAny(m["longitude"]),
		Zoom:      numberPtrFromAny(m["zoom"]),
	}
	if b, ok := m["reinitialize"].(bool); ok {
		ms.Reinitialize = &b
	}
	if info, ok := m["frontendInfo"].(map[string]any); ok {
		ms.FrontendInfo = make(map[string]map[string]any, len(info))
		for name, props := range info {
			p, _ := props.(map[string]any)
			ms.FrontendInfo[name] = p
		}
	}
	return ms
}

func choiceActionsFromAny(v any) ChoiceActions {
	m, _ := v.(map[string]any)
	ca := ChoiceActions{}
	if n, ok := toNumber(m["pointValue"]); ok {
		ca.PointValue = n
	}
	if list, ok := m["actions"].([]any); ok {
		ca.Actions = make([]Action, 0, len(list))
		for _, item := range list {
			ca.Actions = append(ca.Actions, actionFromAny(item))
		}
	}
	return ca
}

func boolFromAny(v any) bool {
	b, _ := v.(bool)
	return b
}
