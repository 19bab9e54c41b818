package recommend

// InPeakWindow reports whether an hour-of-day falls inside a tariff peak
// window. A nil bound means no peak window is configured. Equal bounds
// mean the whole day is peak. A start after the end wraps past midnight,
// e.g. 22-6 covers 22..23 and 0..5. Both forms are half-open at the end.
func InPeakWindow(hour int, peakStart, peakEnd *int) bool {
	if peakStart == nil || peakEnd == nil {
		return false
	}
	start, end := *peakStart, *peakEnd
	if start == end {
		return true
	}
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}
