package gamedata

import "fmt"

// Check заполняет обязательные поля документа значениями по умолчанию, чтобы
// отрисовка и сохранение никогда не встречали пустых ссылок.
// Изменяет документ на месте, не возвращает ошибок, идемпотентен.
func Check(g *Game) {
	if g == nil {
		return
	}
	if g.Generator == "" {
		g.Generator = DefaultGenerator
	}
	if g.Created.IsZero() {
		g.Created = Now()
	}
	if g.Modified.IsZero() {
		g.Modified = g.Created
	}
	if !g.OnJumpBack.Valid() {
		g.OnJumpBack = OnJumpBackNone
	}
	if g.PromptList == nil {
		g.PromptList = []PromptEntry{}
	}
	for i := range g.PromptList {
		checkPromptEntry(&g.PromptList[i])
	}
}

func checkPromptEntry(entry *PromptEntry) {
	p := &entry.Prompt
	checkMap(&p.Map)

	if p.Contents == nil {
		p.Contents = []Content{}
	}
	for i := range p.Contents {
		checkContent(&p.Contents[i])
	}
	if p.Choices == nil {
		p.Choices = []Content{}
	}
	for i := range p.Choices {
		checkContent(&p.Choices[i])
	}

	// actionList выравнивается по choices: лишние удаляются, недостающие добавляются.
	switch {
	case entry.ActionList == nil:
		entry.ActionList = make([]ChoiceActions, 0, len(p.Choices))
	case len(entry.ActionList) > len(p.Choices):
		entry.ActionList = entry.ActionList[:len(p.Choices)]
	}
	for len(entry.ActionList) < len(p.Choices) {
		entry.ActionList = append(entry.ActionList, NewChoiceActions())
	}
	for i := range entry.ActionList {
		checkChoiceActions(&entry.ActionList[i])
	}
}

func checkMap(m *MapState) {
	m.Latitude = finiteOrNil(m.Latitude)
	m.Longitude = finiteOrNil(m.Longitude)
	m.Zoom = finiteOrNil(m.Zoom)
	if m.FrontendInfo == nil {
		m.FrontendInfo = map[string]map[string]any{}
	}
	checkFrontendInfo(m.FrontendInfo)
}

func checkChoiceActions(ca *ChoiceActions) {
	if !isFinite(ca.PointValue) {
		ca.PointValue = 0
	}
	actions := make([]Action, 0, len(ca.Actions))
	for _, a := range ca.Actions {
		if a.Name == "" {
			continue
		}
		checkAction(&a)
		actions = append(actions, a)
	}
	ca.Actions = actions
}

func finiteOrNil(n *float64) *float64 {
	if n == nil || !isFinite(*n) {
		return nil
	}
	return n
}

// Problem - нарушение, которое Check не исправляет автоматически.
type Problem struct {
	Prompt  int
	Choice  int
	Action  int
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("prompt %d, choice %d, action %d: %s", p.Prompt, p.Choice, p.Action, p.Message)
}

// Validate возвращает оставшиеся проблемы документа, сейчас это goto на
// несуществующие промпты. Документ должен пройти Check заранее.
func Validate(g *Game) []Problem {
	var problems []Problem
	walkActions(g, func(pi, ci, ai int, a *Action) {
		target, ok := a.GotoTarget()
		if !ok {
			return
		}
		if target < 0 || target >= len(g.PromptList) {
			problems = append(problems, Problem{
				Prompt:  pi,
				Choice:  ci,
				Action:  ai,
				Message: fmt.Sprintf("goto target %d does not exist", target),
			})
		}
	})
	return problems
}

// walkActions обходит все действия документа.
func walkActions(g *Game, fn func(promptIndex, choiceIndex, actionIndex int, a *Action)) {
	for pi := range g.PromptList {
		list := g.PromptList[pi].ActionList
		for ci := range list {
			actions := list[ci].Actions
			for ai := range actions {
				fn(pi, ci, ai, &actions[ai])
			}
		}
	}
}
