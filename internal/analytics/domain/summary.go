package analytics

import (
	"sort"
	"time"

	telemetry "energywatch/internal/telemetry/domain"
)

const (
	hourBucketLayout = "2006-01-02 15:00"
	dayBucketLayout  = "2006-01-02"

	// TopDeviceLimit caps the device ranking in a summary.
	TopDeviceLimit = 5
)

// Point is one time bucket of summed energy.
type Point struct {
	Bucket string  `json:"bucket"`
	Kwh    float64 `json:"kwh"`
}

// DeviceUsage is one device's total energy over the summarized range.
type DeviceUsage struct {
	DeviceID int64   `json:"deviceId"`
	Name     string  `json:"name"`
	Kwh      float64 `json:"kwh"`
}

// DashboardSummary is the derived consumption/cost view for a time range.
// It is never persisted.
type DashboardSummary struct {
	TotalKwh   float64       `json:"totalKwh"`
	TotalCost  float64       `json:"totalCost"`
	ByHour     []Point       `json:"byHour"`
	ByDay      []Point       `json:"byDay"`
	TopDevices []DeviceUsage `json:"topDevices"`
}

// Summarize turns readings into bucketed kWh sums, a top-device ranking
// and a total cost at the given price. Bucket keys are formed in the
// supplied reference zone. Pure: identical input yields an identical
// summary, and concurrent calls are safe.
func Summarize(readings []telemetry.Reading, pricePerKwh float64, zone *time.Location) DashboardSummary {
	if zone == nil {
		zone = time.UTC
	}

	var totalKwh float64
	byHour := make(map[string]float64)
	byDay := make(map[string]float64)

	deviceKwh := make(map[int64]float64)
	deviceName := make(map[int64]string)
	var deviceOrder []int64

	for _, r := range readings {
		kwh := r.KWh()
		totalKwh += kwh

		local := r.RecordedAt.In(zone)
		byHour[local.Format(hourBucketLayout)] += kwh
		byDay[local.Format(dayBucketLayout)] += kwh

		if _, seen := deviceKwh[r.DeviceID]; !seen {
			deviceOrder = append(deviceOrder, r.DeviceID)
			deviceName[r.DeviceID] = r.DeviceName
		}
		deviceKwh[r.DeviceID] += kwh
	}

	top := make([]DeviceUsage, 0, len(deviceOrder))
	for _, id := range deviceOrder {
		top = append(top, DeviceUsage{DeviceID: id, Name: deviceName[id], Kwh: deviceKwh[id]})
	}
	// Stable sort keeps discovery order for equal totals.
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Kwh > top[j].Kwh
	})
	if len(top) > TopDeviceLimit {
		top = top[:TopDeviceLimit]
	}
	for i := range top {
		top[i].Kwh = Round3(top[i].Kwh)
	}

	summary := DashboardSummary{
		TotalKwh:   Round3(totalKwh),
		ByHour:     bucketPoints(byHour),
		ByDay:      bucketPoints(byDay),
		TopDevices: top,
	}
	summary.TotalCost = Round2(summary.TotalKwh * pricePerKwh)
	return summary
}

// bucketPoints flattens a bucket map into points sorted ascending by key.
// The fixed layouts make lexicographic order chronological.
func bucketPoints(buckets map[string]float64) []Point {
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	points := make([]Point, 0, len(keys))
	for _, key := range keys {
		points = append(points, Point{Bucket: key, Kwh: Round3(buckets[key])})
	}
	return points
}
