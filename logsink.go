package netsim

import "github.com/montanaflynn/stats"

//
// Sample log sink — buckets raw per-event values into fixed-length
// intervals and reduces each bucket with a per-series aggregator.
// Grounded on the reference Controller._process_temp_interval_values
// and Link/Flow aggregator functions, with the floor-based bucket
// re-anchoring pulled from the same source to remove an ambiguity the
// distilled spec left open.
//

// aggregator reduces the raw values collected during one bucket into a
// single reported value.
type aggregator func(values []float64, intervalLength float64) float64

// aggMean reports the arithmetic mean of a bucket's values, used for
// window-size and buffer-occupancy series.
func aggMean(values []float64, _ float64) float64 {
	mean, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return mean
}

// aggSum reports the bucket total, used for the packet-loss series
// (each sample is 0 or 1, so the bucket total is the loss count).
func aggSum(values []float64, _ float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// aggMbps converts a bucket's summed byte counts into megabits per
// second over the bucket's duration, used for link-rate and flow-rate
// series.
func aggMbps(values []float64, intervalLength float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	if intervalLength <= 0 {
		return 0
	}
	return total / intervalLength * 8.0 / 1000000.0
}

// Sample is one reduced (time, value) point of a named series.
type Sample struct {
	Time  float64
	Value float64
}

// seriesKey identifies one (log type, subject) time series, e.g.
// ("window-size", flow id) or ("link-rate", link id).
type seriesKey struct {
	logType string
	subject string
}

// seriesState accumulates raw samples for the current bucket and the
// reduced points produced so far for one series.
type seriesState struct {
	agg           aggregator
	pending       []float64
	points        []Sample
}

// logSink buckets raw samples by wall-clock-independent virtual time
// into fixed-length intervals and reduces each bucket on rollover.
type logSink struct {
	intervalLength float64
	intervalStart  float64
	series         map[seriesKey]*seriesState
	watch          map[string]bool // subjects selected for retention; unflagged subjects are discarded
}

func newLogSink(intervalLength float64) *logSink {
	if intervalLength <= 0 {
		intervalLength = 1.0
	}
	return &logSink{
		intervalLength: intervalLength,
		series:         make(map[seriesKey]*seriesState),
	}
}

// watchOnly restricts retained series to the given subjects (link ids,
// flow ids), mirroring the reference's show_on_plot selection. A subject
// never named here, including when watchOnly is never called at all, is
// discarded at ingestion rather than retained.
func (s *logSink) watchOnly(subjects []string) {
	s.watch = make(map[string]bool, len(subjects))
	for _, subject := range subjects {
		s.watch[subject] = true
	}
}

func (s *logSink) tracked(subject string) bool {
	return s.watch[subject]
}

// record appends a raw sample to its series, rolling over any bucket(s)
// the controller's clock has already advanced past.
func (s *logSink) record(now float64, logType, subject string, value float64, agg aggregator) {
	if !s.tracked(subject) {
		return
	}
	key := seriesKey{logType: logType, subject: subject}
	st, ok := s.series[key]
	if !ok {
		st = &seriesState{agg: agg}
		s.series[key] = st
	}

	if now-s.intervalLength >= s.intervalStart {
		s.rollover(now)
	}
	st.pending = append(st.pending, value)
}

// rollover reduces every series' pending bucket into a point and
// re-anchors the bucket boundary to the floor of now against the
// interval length, matching the reference's integer-division anchoring
// rather than simply advancing by one interval (which would drift if
// the simulator had been idle for several intervals).
func (s *logSink) rollover(now float64) {
	intervalLength := s.intervalLength
	if elapsed := now - s.intervalStart; elapsed < intervalLength {
		intervalLength = elapsed
	}

	for _, st := range s.series {
		if len(st.pending) == 0 {
			continue
		}
		t := s.intervalStart + intervalLength/2.0
		st.points = append(st.points, Sample{Time: t, Value: st.agg(st.pending, intervalLength)})
		st.pending = st.pending[:0]
	}

	buckets := int64(now / s.intervalLength)
	s.intervalStart = float64(buckets) * s.intervalLength
}

// flush forces a final rollover at the end of a run, so the last
// partial bucket isn't silently dropped.
func (s *logSink) flush(now float64) {
	s.rollover(now)
}

// seriesFor returns the reduced points for one (logType, subject) pair.
func (s *logSink) seriesFor(logType, subject string) []Sample {
	st, ok := s.series[seriesKey{logType: logType, subject: subject}]
	if !ok {
		return nil
	}
	return st.points
}
