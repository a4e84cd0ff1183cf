package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// LatLng is a coordinate pair for route endpoints and waypoints.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (l LatLng) param() string {
	return fmt.Sprintf("%f,%f", l.Lat, l.Lng)
}

type RouteRequest struct {
	Origin      LatLng   `json:"origin"`
	Destination LatLng   `json:"destination"`
	Waypoints   []LatLng `json:"waypoints,omitempty"`
	Mode        string   `json:"mode"`
}

type RouteStep struct {
	Instruction string `json:"instruction"`
	Distance    string `json:"distance"`
	Duration    string `json:"duration"`
}

// Route is the directions result, passed through to the caller as-is.
// It is never reconciled into the place model.
type Route struct {
	Distance     string      `json:"distance"`
	Duration     string      `json:"duration"`
	StartAddress string      `json:"start_address"`
	EndAddress   string      `json:"end_address"`
	Steps        []RouteStep `json:"steps"`
	Polyline     string      `json:"polyline"`
}

var travelModes = map[string]bool{
	"driving":   true,
	"walking":   true,
	"transit":   true,
	"bicycling": true,
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance     struct{ Text string } `json:"distance"`
			Duration     struct{ Text string } `json:"duration"`
			StartAddress string                `json:"start_address"`
			EndAddress   string                `json:"end_address"`
			Steps        []struct {
				HTMLInstructions string                `json:"html_instructions"`
				Distance         struct{ Text string } `json:"distance"`
				Duration         struct{ Text string } `json:"duration"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Directions asks the Google Directions API for a route between two places.
func (r *GoogleResolver) Directions(ctx context.Context, req RouteRequest) (*Route, error) {
	mode := req.Mode
	if mode == "" {
		mode = "driving"
	}
	if !travelModes[mode] {
		return nil, fmt.Errorf("unsupported travel mode %q", req.Mode)
	}

	q := url.Values{}
	q.Set("origin", req.Origin.param())
	q.Set("destination", req.Destination.param())
	q.Set("mode", mode)
	q.Set("key", r.apiKey)
	if len(req.Waypoints) > 0 {
		points := make([]string, len(req.Waypoints))
		for i, w := range req.Waypoints {
			points[i] = w.param()
		}
		q.Set("waypoints", "optimize:true|"+strings.Join(points, "|"))
	}
	endpoint := fmt.Sprintf("%s/maps/api/directions/json?%s", r.baseURL, q.Encode())

	raw, err := r.getRaw(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("directions request: %w", err)
	}

	var decoded directionsResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("directions request: malformed response: %w", err)
	}

	if decoded.Status != "OK" || len(decoded.Routes) == 0 || len(decoded.Routes[0].Legs) == 0 {
		return nil, fmt.Errorf("directions request: upstream status %s", decoded.Status)
	}

	route := decoded.Routes[0]
	leg := route.Legs[0]
	out := &Route{
		Distance:     leg.Distance.Text,
		Duration:     leg.Duration.Text,
		StartAddress: leg.StartAddress,
		EndAddress:   leg.EndAddress,
		Polyline:     route.OverviewPolyline.Points,
	}
	for _, s := range leg.Steps {
		out.Steps = append(out.Steps, RouteStep{
			Instruction: s.HTMLInstructions,
			Distance:    s.Distance.Text,
			Duration:    s.Duration.Text,
		})
	}
	return out, nil
}
