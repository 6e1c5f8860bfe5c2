package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// attemptOutcome tags the result of geocoding one candidate.
type attemptOutcome int

const (
	attemptSuccess attemptOutcome = iota
	attemptRetryable
	attemptFatal
)

func (o attemptOutcome) String() string {
	switch o {
	case attemptSuccess:
		return "success"
	case attemptRetryable:
		return "retryable"
	default:
		return "fatal"
	}
}

// classifyGeocodeError decides whether the next candidate is worth trying.
func classifyGeocodeError(ctx context.Context, err error) attemptOutcome {
	var providerErr *GeocodeProviderError
	var transportErr *GeocodeTransportError
	switch {
	case err == nil:
		return attemptSuccess
	case ctx.Err() != nil:
		return attemptFatal
	case errors.As(err, &providerErr):
		return attemptFatal
	case errors.Is(err, ErrGeocodeNoResults), errors.As(err, &transportErr):
		return attemptRetryable
	default:
		return attemptRetryable
	}
}

// locationCandidates lists geocoding queries in priority order: the stored
// address first, then the heuristic candidates.
func locationCandidates(event Event) []string {
	var out []string
	if addr := strings.TrimSpace(event.Track.Address); addr != "" {
		out = append(out, addr)
	}
	out = append(out, ResolveCandidates(event.Name, event.Track.Name)...)
	return dedupe(out)
}

// resolveLocation returns coordinates for the event's track and the
// candidates that were sent to the geocoder.
func (s *Service) resolveLocation(ctx context.Context, event Event) (GeocodeResult, []string, error) {
	if event.Track.HasCoordinates() {
		return GeocodeResult{
			Latitude:    *event.Track.Latitude,
			Longitude:   *event.Track.Longitude,
			DisplayName: event.Track.Name,
		}, nil, nil
	}

	candidates := locationCandidates(event)
	if len(candidates) == 0 {
		return GeocodeResult{}, nil, fmt.Errorf("no location candidates for event %s: %w", event.ID, ErrGeocodeNoResults)
	}

	var (
		attempted []string
		lastErr   error
	)
	for _, c := range candidates {
		attempted = append(attempted, c)
		res, err := s.geocoder.Resolve(ctx, c)

		switch outcome := classifyGeocodeError(ctx, err); outcome {
		case attemptSuccess:
			log.Printf("DEBUG: event %s located via %q (%s)", event.ID, c, res.DisplayName)
			return res, attempted, nil
		case attemptRetryable:
			log.Printf("DEBUG: candidate %q for event %s failed (%s): %v", c, event.ID, outcome, err)
			lastErr = err
		case attemptFatal:
			log.Printf("WARN: geocoding aborted for event %s at candidate %q: %v", event.ID, c, err)
			return GeocodeResult{}, attempted, err
		}
	}
	return GeocodeResult{}, attempted, fmt.Errorf("no candidate resolved: %w", lastErr)
}
