package game

// The hint schedule reveals letters as the clock runs down: one step at
// 60%, 40% and 20% of drawTime remaining. The hint level caps total
// reveals at floor(letters * level / 5), so level 0 reveals nothing and
// level 5 could eventually expose every letter. Reveals are monotonic:
// the target only grows as thresholds are crossed, and the vault never
// re-hides a revealed position.

var hintThresholds = [...]int{60, 40, 20} // percent of drawTime remaining

func crossedThresholds(timeRemaining, drawTime int) int {
	crossed := 0
	for _, pct := range hintThresholds {
		if timeRemaining*100 <= pct*drawTime {
			crossed++
		}
	}
	return crossed
}

func maxHintReveals(letters, hintLevel int) int {
	return letters * hintLevel / 5
}

func hintTarget(timeRemaining, drawTime, letters, hintLevel int) int {
	target := crossedThresholds(timeRemaining, drawTime)
	if limit := maxHintReveals(letters, hintLevel); target > limit {
		target = limit
	}
	return target
}
