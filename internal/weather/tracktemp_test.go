package weather

import "testing"

func hourPtr(h int) *int { return &h }

func TestEstimateTrackTemperatureBounds(t *testing.T) {
	for air := -20.0; air <= 80; air += 0.7 {
		for _, hour := range []*int{nil, hourPtr(0), hourPtr(6), hourPtr(12), hourPtr(18), hourPtr(23)} {
			got := EstimateTrackTemperature(air, hour)
			if got < air {
				t.Fatalf("EstimateTrackTemperature(%v, %v) = %v, below air temperature", air, hour, got)
			}
			if air <= maxTrackTempC && got > maxTrackTempC {
				t.Fatalf("EstimateTrackTemperature(%v, %v) = %v, above %v", air, hour, got, maxTrackTempC)
			}
		}
	}
}

func TestEstimateTrackTemperatureSolarPeak(t *testing.T) {
	for _, air := range []float64{-5, 0, 10, 22.5, 35, 60} {
		noon := EstimateTrackTemperature(air, hourPtr(12))
		midnight := EstimateTrackTemperature(air, hourPtr(0))
		if noon < midnight {
			t.Errorf("air %v: noon %v < midnight %v", air, noon, midnight)
		}
	}
}

func TestEstimateTrackTemperatureValues(t *testing.T) {
	tests := []struct {
		name string
		air  float64
		hour *int
		want float64
	}{
		{"no hour", 20, nil, 24},
		{"midnight", 20, hourPtr(0), 24},
		{"noon", 20, hourPtr(12), 29},
		{"six am", 20, hourPtr(6), 26.5},
		{"clamped high", 65, hourPtr(12), 70},
		{"negative air", -10, nil, -10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTrackTemperature(tt.air, tt.hour); got != tt.want {
				t.Errorf("EstimateTrackTemperature(%v) = %v, want %v", tt.air, got, tt.want)
			}
		})
	}
}
