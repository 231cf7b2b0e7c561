package beacon

// Gate returns the per-second probability of ending a run. Chemotaxis is
// only active when the cell is moving up the gradient and its internal
// lanthanide concentration exceeds the threshold; otherwise the cell runs
// with the undirected rate pElse.
func Gate(upGradient bool, laIn, threshold, pUp, pElse float64) float64 {
	if upGradient && laIn > threshold {
		return pUp
	}
	return pElse
}
