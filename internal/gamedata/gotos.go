package gamedata

// SwapGotos меняет местами цели goto: a становится b, b становится a.
// Используется, когда два промпта меняются позициями. Повторный вызов
// возвращает исходное состояние.
func SwapGotos(g *Game, a, b int) {
	walkActions(g, func(_, _, _ int, act *Action) {
		target, ok := act.GotoTarget()
		if !ok {
			return
		}
		if target == a {
			act.SetGotoTarget(b)
		} else if target == b {
			act.SetGotoTarget(a)
		}
	})
}

// DecrementGotos уменьшает на единицу все цели больше leastIndex. Цели, равные
// leastIndex, не меняются и подсчитываются: промпт, на который они указывали,
// только что удален, и автора нужно предупредить о висячих ссылках.
func DecrementGotos(g *Game, leastIndex int) int {
	occurrences := 0
	walkActions(g, func(_, _, _ int, act *Action) {
		target, ok := act.GotoTarget()
		if !ok {
			return
		}
		if target == leastIndex {
			occurrences++
		} else if target > leastIndex {
			act.SetGotoTarget(target - 1)
		}
	})
	return occurrences
}

// incrementGotos сдвигает вверх цели не меньше fromIndex (вставка промпта).
func incrementGotos(g *Game, fromIndex int) {
	walkActions(g, func(_, _, _ int, act *Action) {
		target, ok := act.GotoTarget()
		if ok && target >= fromIndex {
			act.SetGotoTarget(target + 1)
		}
	})
}

// GotoTargets возвращает цели всех goto в порядке обхода документа.
func GotoTargets(g *Game) []int {
	var targets []int
	walkActions(g, func(_, _, _ int, act *Action) {
		if target, ok := act.GotoTarget(); ok {
			targets = append(targets, target)
		}
	})
	return targets
}
