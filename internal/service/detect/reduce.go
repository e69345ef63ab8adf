// Package detect holds the detection logic that does not depend on the
// inference backend: confidence filtering, YOLOv8 output decoding and the
// per-class reduction.
package detect

import "ornament-detect/internal/model"

// ConfidenceThreshold is the exclusive lower bound a detection must clear.
const ConfidenceThreshold = 0.25

// AboveThreshold reports whether confidence clears ConfidenceThreshold.
func AboveThreshold(confidence float64) bool {
	return confidence > ConfidenceThreshold
}

// FilterByConfidence drops every detection at or below ConfidenceThreshold.
func FilterByConfidence(raw []model.RawDetection) []model.RawDetection {
	kept := make([]model.RawDetection, 0, len(raw))
	for _, det := range raw {
		if AboveThreshold(det.Confidence) {
			kept = append(kept, det)
		}
	}
	return kept
}

// Reduce keeps the highest-confidence detection of every class name.
// Replacement needs a strictly greater confidence, so ties keep the first
// detection seen. Classes appear in order of their first detection.
func Reduce(raw []model.RawDetection) model.DetectionSet {
	best := make(map[string]int, len(raw))
	unique := make([]model.Detection, 0, len(raw))

	for _, det := range raw {
		idx, seen := best[det.ClassName]
		if !seen {
			best[det.ClassName] = len(unique)
			unique = append(unique, model.Detection{
				ClassName:  det.ClassName,
				Confidence: det.Confidence,
				Box:        det.Box,
			})
			continue
		}
		if det.Confidence > unique[idx].Confidence {
			unique[idx].Confidence = det.Confidence
			unique[idx].Box = det.Box
		}
	}

	return model.DetectionSet{Raw: raw, Unique: unique}
}
