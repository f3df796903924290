package streamapi

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
	"github.com/arcfix-nav/driftfilter/internal/stats"
)

// fixToStruct and structToFix translate between gpsfix.Fix and the
// structpb.Struct wire message, the way frameBundleToProto translates an
// internal FrameBundle to its generated pb counterpart in the teacher's
// service. There is no generated type here to translate into, so the
// field names below ARE the wire schema.
func fixToStruct(f gpsfix.Fix) *structpb.Struct {
	s, _ := structpb.NewStruct(map[string]interface{}{
		"lat":     f.Lat,
		"lng":     f.Lng,
		"time_ms": float64(f.TimeMs),
	})
	return s
}

func structToFix(s *structpb.Struct) (gpsfix.Fix, error) {
	if s == nil {
		return gpsfix.Fix{}, fmt.Errorf("streamapi: nil fix payload")
	}
	fields := s.GetFields()
	lat, ok := fields["lat"]
	if !ok {
		return gpsfix.Fix{}, fmt.Errorf("streamapi: fix missing %q", "lat")
	}
	lng, ok := fields["lng"]
	if !ok {
		return gpsfix.Fix{}, fmt.Errorf("streamapi: fix missing %q", "lng")
	}
	timeMs, ok := fields["time_ms"]
	if !ok {
		return gpsfix.Fix{}, fmt.Errorf("streamapi: fix missing %q", "time_ms")
	}
	f := gpsfix.Fix{
		Lat:    lat.GetNumberValue(),
		Lng:    lng.GetNumberValue(),
		TimeMs: int64(timeMs.GetNumberValue()),
	}
	if err := f.Validate(); err != nil {
		return gpsfix.Fix{}, err
	}
	return f, nil
}

// structToFixes decodes a "fixes" array field holding one object per fix,
// used by ProcessTrajectory's request payload.
func structToFixes(s *structpb.Struct) ([]gpsfix.Fix, error) {
	if s == nil {
		return nil, fmt.Errorf("streamapi: nil trajectory payload")
	}
	listVal, ok := s.GetFields()["fixes"]
	if !ok {
		return nil, fmt.Errorf("streamapi: trajectory payload missing %q", "fixes")
	}
	list := listVal.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("streamapi: %q is not a list", "fixes")
	}
	fixes := make([]gpsfix.Fix, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		fixStruct := v.GetStructValue()
		if fixStruct == nil {
			return nil, fmt.Errorf("streamapi: fixes[%d] is not an object", i)
		}
		f, err := structToFix(fixStruct)
		if err != nil {
			return nil, fmt.Errorf("streamapi: fixes[%d]: %w", i, err)
		}
		fixes = append(fixes, f)
	}
	return fixes, nil
}

// decisionResponse builds the ProcessFix response payload: the accepted
// flag plus the snapshot taken immediately after the fix was applied.
func decisionResponse(accepted bool, snap stats.Snapshot) *structpb.Struct {
	s, _ := structpb.NewStruct(map[string]interface{}{
		"accepted": accepted,
		"snapshot": snapshotToMap(snap),
	})
	return s
}

func snapshotToMap(snap stats.Snapshot) map[string]interface{} {
	m := map[string]interface{}{
		"window_length":           float64(snap.WindowLength),
		"accepted_count":          float64(snap.AcceptedCount),
		"rejected_count":          float64(snap.RejectedCount),
		"rebuild_count":           float64(snap.RebuildCount),
		"consecutive_drift_count": float64(snap.ConsecutiveDriftCount),
		"has_base_point":          snap.HasBasePoint,
		"base_radius":             snap.BaseRadius,
		"base_age_ms":             float64(snap.BaseAgeMs),
		"base_expired":            snap.BaseExpired,
		"processing_time_ms":      float64(snap.ProcessingTimeMs),
		"filtering_rate":          snap.FilteringRate,
	}
	if snap.BasePoint != nil {
		m["base_point_lat"] = snap.BasePoint.Lat
		m["base_point_lng"] = snap.BasePoint.Lng
	}
	return m
}

// trajectoryResponse builds the ProcessTrajectory response payload: the
// counts of accepted/rejected fixes plus the final snapshot. The full
// point sets are not echoed back — a vehicle client already has its own
// copy of what it sent.
func trajectoryResponse(result stats.ProcessingResult) *structpb.Struct {
	s, _ := structpb.NewStruct(map[string]interface{}{
		"accepted_count": float64(len(result.ProcessedPoints)),
		"rejected_count": float64(len(result.OriginalPoints) - len(result.ProcessedPoints)),
		"marker_count":   float64(len(result.Markers)),
		"snapshot":       snapshotToMap(result.Statistics),
	})
	return s
}
