package meshmodel

import "gonum.org/v1/gonum/stat"

// qualityHistoryCapacity bounds the rolling sample deque per interface.
const qualityHistoryCapacity = 100

// QualityHistory is a bounded rolling window of Quality samples with
// derived average and peak snapshots recomputed on every push.
type QualityHistory struct {
	capacity int
	samples  []Quality
	average  Quality
	peak     Quality
}

// NewQualityHistory creates an empty history with the given capacity.
func NewQualityHistory(capacity int) *QualityHistory {
	if capacity <= 0 {
		capacity = qualityHistoryCapacity
	}
	return &QualityHistory{
		capacity: capacity,
		samples:  make([]Quality, 0, capacity),
	}
}

// Push appends a sample, evicting the oldest if the history is full, and
// recomputes the average and peak snapshots.
func (h *QualityHistory) Push(q Quality) {
	if len(h.samples) >= h.capacity {
		h.samples = h.samples[1:]
	}
	h.samples = append(h.samples, q)
	h.recompute()
}

// Average returns the current per-field arithmetic mean snapshot.
func (h *QualityHistory) Average() Quality { return h.average }

// Peak returns the current per-field maximum snapshot.
func (h *QualityHistory) Peak() Quality { return h.peak }

// Len reports the number of retained samples.
func (h *QualityHistory) Len() int { return len(h.samples) }

func (h *QualityHistory) recompute() {
	n := len(h.samples)
	if n == 0 {
		h.average = Quality{}
		h.peak = Quality{}
		return
	}

	bandwidth := make([]float64, n)
	latency := make([]float64, n)
	jitter := make([]float64, n)
	loss := make([]float64, n)

	var peak Quality
	for idx, s := range h.samples {
		bandwidth[idx] = s.BandwidthMbps
		latency[idx] = s.LatencyMs
		jitter[idx] = s.JitterMs
		loss[idx] = s.LossPct

		if s.BandwidthMbps > peak.BandwidthMbps {
			peak.BandwidthMbps = s.BandwidthMbps
		}
		if s.LatencyMs > peak.LatencyMs {
			peak.LatencyMs = s.LatencyMs
		}
		if s.JitterMs > peak.JitterMs {
			peak.JitterMs = s.JitterMs
		}
		if s.LossPct > peak.LossPct {
			peak.LossPct = s.LossPct
		}
	}
	peak.LastMeasuredAt = h.samples[n-1].LastMeasuredAt
	h.peak = peak

	h.average = Quality{
		BandwidthMbps:  stat.Mean(bandwidth, nil),
		LatencyMs:      stat.Mean(latency, nil),
		JitterMs:       stat.Mean(jitter, nil),
		LossPct:        stat.Mean(loss, nil),
		LastMeasuredAt: h.samples[n-1].LastMeasuredAt,
	}
}
