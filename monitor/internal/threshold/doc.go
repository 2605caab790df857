// Package threshold holds the static operating limits for the rolling-mill
// line and the classifier that maps a metric value to a health state.
//
// Limits are directional. Temperature, vibration and defect rate are
// high-is-bad; throughput is low-is-bad. Both bounds are inclusive and the
// critical bound is always checked before the warn bound:
//
//	high-is-bad:  v >= crit → critical;  v >= warn → watch;  else ok
//	low-is-bad:   v <= crit → critical;  v <= warn → watch;  else ok
//
// A NaN value or a metric missing from the table classifies as unknown.
// Classify is the only place a health state is computed; the insight
// generator and every renderer read the same Table.
package threshold
