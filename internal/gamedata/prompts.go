package gamedata

import "fmt"

// AddPrompt добавляет промпт в конец списка и возвращает его индекс.
func AddPrompt(g *Game, entry PromptEntry) int {
	checkPromptEntry(&entry)
	g.PromptList = append(g.PromptList, entry)
	return len(g.PromptList) - 1
}

// InsertPrompt вставляет промпт на позицию at, сдвигая цели goto >= at.
func InsertPrompt(g *Game, at int, entry PromptEntry) error {
	if at < 0 || at > len(g.PromptList) {
		return fmt.Errorf("%w: insert at %d of %d prompts", ErrIndexOutOfRange, at, len(g.PromptList))
	}
	checkPromptEntry(&entry)
	incrementGotos(g, at)
	g.PromptList = append(g.PromptList, PromptEntry{})
	copy(g.PromptList[at+1:], g.PromptList[at:])
	g.PromptList[at] = entry
	return nil
}

// MovePrompt перемещает промпт с позиции from на позицию to последовательными
// обменами с соседями, поддерживая цели goto через SwapGotos.
func MovePrompt(g *Game, from, to int) error {
	n := len(g.PromptList)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d of %d prompts", ErrIndexOutOfRange, from, to, n)
	}
	for from < to {
		swapPrompts(g, from, from+1)
		from++
	}
	for from > to {
		swapPrompts(g, from, from-1)
		from--
	}
	return nil
}

func swapPrompts(g *Game, a, b int) {
	g.PromptList[a], g.PromptList[b] = g.PromptList[b], g.PromptList[a]
	SwapGotos(g, a, b)
}

// RemovePrompt удаляет промпт и возвращает количество goto, указывавших на него.
// Эти ссылки остаются висячими: их значение не меняется.
func RemovePrompt(g *Game, index int) (int, error) {
	if index < 0 || index >= len(g.PromptList) {
		return 0, fmt.Errorf("%w: remove prompt %d of %d", ErrIndexOutOfRange, index, len(g.PromptList))
	}
	g.PromptList = append(g.PromptList[:index], g.PromptList[index+1:]...)
	return DecrementGotos(g, index), nil
}

// AddChoice добавляет вариант выбора вместе с пустым набором действий.
func AddChoice(g *Game, promptIndex int, choice Content) (int, error) {
	entry, err := promptAt(g, promptIndex)
	if err != nil {
		return 0, err
	}
	checkContent(&choice)
	entry.Prompt.Choices = append(entry.Prompt.Choices, choice)
	entry.ActionList = append(entry.ActionList, NewChoiceActions())
	return len(entry.Prompt.Choices) - 1, nil
}

// RemoveChoice удаляет вариант выбора и соответствующий ему набор действий.
func RemoveChoice(g *Game, promptIndex, choiceIndex int) error {
	entry, err := promptAt(g, promptIndex)
	if err != nil {
		return err
	}
	checkPromptEntry(entry)
	if choiceIndex < 0 || choiceIndex >= len(entry.Prompt.Choices) {
		return fmt.Errorf("%w: choice %d of %d", ErrIndexOutOfRange, choiceIndex, len(entry.Prompt.Choices))
	}
	entry.Prompt.Choices = append(entry.Prompt.Choices[:choiceIndex], entry.Prompt.Choices[choiceIndex+1:]...)
	entry.ActionList = append(entry.ActionList[:choiceIndex], entry.ActionList[choiceIndex+1:]...)
	return nil
}

// MoveChoice перемещает вариант выбора вместе с его действиями.
func MoveChoice(g *Game, promptIndex, from, to int) error {
	entry, err := promptAt(g, promptIndex)
	if err != nil {
		return err
	}
	checkPromptEntry(entry)
	n := len(entry.Prompt.Choices)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move choice %d -> %d of %d", ErrIndexOutOfRange, from, to, n)
	}
	choice, actions := entry.Prompt.Choices[from], entry.ActionList[from]
	entry.Prompt.Choices = append(entry.Prompt.Choices[:from], entry.Prompt.Choices[from+1:]...)
	entry.ActionList = append(entry.ActionList[:from], entry.ActionList[from+1:]...)
	entry.Prompt.Choices = insertAt(entry.Prompt.Choices, to, choice)
	entry.ActionList = insertAt(entry.ActionList, to, actions)
	return nil
}

func promptAt(g *Game, index int) (*PromptEntry, error) {
	if index < 0 || index >= len(g.PromptList) {
		return nil, fmt.Errorf("%w: prompt %d of %d", ErrIndexOutOfRange, index, len(g.PromptList))
	}
	return &g.PromptList[index], nil
}

func insertAt[T any](list []T, at int, v T) []T {
	var zero T
	list = append(list, zero)
	copy(list[at+1:], list[at:])
	list[at] = v
	return list
}
