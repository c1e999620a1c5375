package style

// Smoothing defaults. The smoothing floor sits above the scoring floor on
// purpose: short turns still get a per-turn score but are kept out of the
// rolling trend.
const (
	DefaultSmoothingAlpha     = 0.25
	DefaultMinSmoothingTokens = 15
)

// Smooth applies exponential smoothing to the per-turn LSM score. Both
// sides must carry at least minTokens valid tokens; otherwise the previous
// value passes through unchanged.
func Smooth(previous, raw float64, sourceTokens, targetTokens int, alpha float64, minTokens int) float64 {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultSmoothingAlpha
	}
	if minTokens <= 0 {
		minTokens = DefaultMinSmoothingTokens
	}
	if sourceTokens < minTokens || targetTokens < minTokens {
		return previous
	}
	return alpha*raw + (1-alpha)*previous
}
