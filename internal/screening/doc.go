// Package screening runs the two liquefaction assessments side by side.
//
// features.go builds the classifier feature vector from an Input
// (N1_60_cs, FC, D50, a_max, effective stress in psf, Mw) and enforces the
// ranges of the training data. scaler.go standardises it, and assess.go
// runs the scale → predict → explain pipeline on a forest.Forest next to
// the simplified-procedure safety factor from package liquefaction.
//
// Each method fails on its own: a missing model never hides the safety
// factor and an invalid depth never hides the probability.
//
// Probability tiers: Very high ≥0.80, High ≥0.50, Moderate ≥0.20, Low.
package screening
