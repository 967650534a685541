package driven

// MetricsRecorder receives one observation per resolve and promote call.
type MetricsRecorder interface {
	ObserveResolution(provider string, usingLegacy, needsPromotion bool)
	ObservePromotion(provider string, source string, outcome string)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveResolution(string, bool, bool) {}
func (NopMetrics) ObservePromotion(string, string, string) {}
