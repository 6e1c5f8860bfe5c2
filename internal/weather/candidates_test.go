package weather

import (
	"reflect"
	"strings"
	"testing"
)

func TestIsSeriesLike(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Asian Buggy Championship", true},
		{"Winter Series", true},
		{"Masters of Dirt", true},
		{"Australian Grand Prix", true},
		{"Club Cup", true},
		{"Sydney Motorsport Park", false},
		{"Cupertino Raceway", false},
		{"Touring Car Circuit", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSeriesLike(tt.name); got != tt.want {
				t.Errorf("IsSeriesLike(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestResolveCandidatesSeriesTrack(t *testing.T) {
	got := ResolveCandidates("ABC Rnd 4 Jakarta Indonesia w/ Scotty Ernst", "Asian Buggy Championship")
	want := []string{"Jakarta Indonesia", "Jakarta", "Asian Buggy Championship"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolveCandidates() = %q, want %q", got, want)
	}
}

func TestResolveCandidatesVenueTrackFirst(t *testing.T) {
	got := ResolveCandidates("Club Day", "Sydney Motorsport Park")
	if len(got) == 0 || got[0] != "Sydney Motorsport Park" {
		t.Fatalf("ResolveCandidates() = %q, want track name first", got)
	}
}

func TestResolveCandidatesCityRegion(t *testing.T) {
	got := ResolveCandidates("Round 2 Nationals Perth, WA, Australia", "State Series")
	want := []string{
		"Nationals Perth, WA, Australia",
		"Perth, WA, Australia",
		"Nationals Perth",
		"Nationals",
		"State Series",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolveCandidates() = %q, want %q", got, want)
	}
}

func TestResolveCandidatesNoise(t *testing.T) {
	tests := []struct {
		event string
		want  string
	}{
		{"Round 4 Brisbane presented by Acme", "Brisbane"},
		{"Rd. 7 - Darwin with guests", "Darwin"},
		{"NSW 2024 Wollongong", "Wollongong"},
	}
	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			got := ResolveCandidates(tt.event, "Summer Series")
			if len(got) < 2 || got[0] != tt.want {
				t.Errorf("ResolveCandidates(%q) = %q, want %q first", tt.event, got, tt.want)
			}
			if got[len(got)-1] != "Summer Series" {
				t.Errorf("series track should be last, got %q", got)
			}
		})
	}
}

func TestResolveCandidatesInvariants(t *testing.T) {
	inputs := []struct{ event, track string }{
		{"ABC Rnd 4 Jakarta Indonesia w/ Scotty Ernst", "Asian Buggy Championship"},
		{"  ", "   "},
		{"Cup Cup Cup", "Cup"},
		{"Round 1", "Masters League"},
		{"X", "Y"},
		{"Spring Tour Hobart Hobart", "Sprint Tour"},
		{"Big Day Out at Phillip Island, VIC", "Phillip Island"},
	}
	for _, in := range inputs {
		got := ResolveCandidates(in.event, in.track)
		seen := map[string]bool{}
		for _, c := range got {
			if strings.TrimSpace(c) == "" {
				t.Errorf("%q/%q: empty candidate in %q", in.event, in.track, got)
			}
			key := strings.ToLower(c)
			if seen[key] {
				t.Errorf("%q/%q: duplicate %q in %q", in.event, in.track, c, got)
			}
			seen[key] = true
		}
		if IsSeriesLike(in.track) && len(got) > 1 && got[len(got)-1] != strings.Join(strings.Fields(in.track), " ") {
			t.Errorf("%q/%q: series track not last in %q", in.event, in.track, got)
		}
		for _, c := range got[:max(0, len(got)-1)] {
			if IsSeriesLike(c) && c != in.track {
				t.Errorf("%q/%q: series-like extracted candidate %q", in.event, in.track, c)
			}
		}
	}
}
