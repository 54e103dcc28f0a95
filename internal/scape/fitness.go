package scape

// StepPenalty is subtracted from the completion ratio for every move.
const StepPenalty = 0.005

// CalculateFitness rewards the share of treasures found and penalises every
// move linearly. The result never drops below zero so roulette selection can
// rely on non-negative cumulative sums.
func CalculateFitness(stepCount, treasuresFound, totalTreasures int) float64 {
	if totalTreasures <= 0 {
		return 0
	}
	fitness := float64(treasuresFound)/float64(totalTreasures) - float64(stepCount)*StepPenalty
	if fitness < 0 {
		return 0
	}
	return fitness
}
