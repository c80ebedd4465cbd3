package game

// Scoring favors fast guesses and early order. timeRemaining/drawTime is
// sampled at the moment of the correct guess; integer division gives the
// floor the formula wants.

// guesserPoints: base 50 + time bonus + early-order bonus. guessOrder is
// the 1-based position among correct guessers.
func guesserPoints(timeRemaining, drawTime, playerCount, guessOrder int) int {
	if drawTime <= 0 {
		return 50
	}
	timeBonus := timeRemaining * 100 / drawTime
	orderBonus := playerCount - guessOrder - 1
	if orderBonus < 0 {
		orderBonus = 0
	}
	return 50 + timeBonus + orderBonus*10
}

// drawerPoints per correct guesser.
func drawerPoints(timeRemaining, drawTime int) int {
	if drawTime <= 0 {
		return 10
	}
	return 10 + timeRemaining*15/drawTime
}

// addPoints keeps scores whole, non-negative and within the sanity
// bound; deltas here are always non-negative so scores never decrease
// within a round.
func addPoints(score, delta int) int {
	score += delta
	if score < 0 {
		score = 0
	}
	if score > 10000 {
		score = 10000
	}
	return score
}
