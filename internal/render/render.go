package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/agenthands/atlas/internal/core/model"
)

// Derived, read-only artifact: a static Google Maps page for a saved map.
// Never re-ingested by the pipeline.

const markerIconBase = "http://maps.google.com/mapfiles/ms/icons/"

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>{{.Map.Name}}</title>
	<style>
		#map { height: 600px; width: 100%; }
		.info-window { max-width: 300px; }
	</style>
</head>
<body>
	<div id="map"></div>
	<script>
		function initMap() {
			const map = new google.maps.Map(document.getElementById("map"), {
				zoom: 10,
				center: { lat: {{.CenterLat}}, lng: {{.CenterLng}} }
			});
			const infoWindow = new google.maps.InfoWindow();
			const bounds = new google.maps.LatLngBounds();
{{range .Markers}}
			{
				const marker = new google.maps.Marker({
					position: { lat: {{.Lat}}, lng: {{.Lng}} },
					map: map,
					title: {{.Name}},
					icon: {{.Icon}}
				});
				bounds.extend(marker.getPosition());
				marker.addListener("click", () => {
					infoWindow.setContent({{.Popup}});
					infoWindow.open(map, marker);
				});
			}
{{end}}
			if (!bounds.isEmpty()) {
				map.fitBounds(bounds);
			}
		}
	</script>
	<script src="https://maps.googleapis.com/maps/api/js?key={{.APIKey}}&callback=initMap" defer></script>
</body>
</html>
`))

type marker struct {
	Name  string
	Lat   float64
	Lng   float64
	Icon  string
	Popup template.HTML
}

type pageData struct {
	Map       model.Map
	APIKey    string
	CenterLat float64
	CenterLng float64
	Markers   []marker
}

// HTML renders a saved map as a standalone page. Marker color encodes
// sentiment: green positive, red negative, blue otherwise.
func HTML(m model.Map, apiKey string) (string, error) {
	data := pageData{Map: m, APIKey: apiKey}

	for _, p := range m.Places {
		data.CenterLat += p.Lat
		data.CenterLng += p.Lng
		data.Markers = append(data.Markers, marker{
			Name:  p.Name,
			Lat:   p.Lat,
			Lng:   p.Lng,
			Icon:  markerIconBase + markerColor(p.Sentiment) + "-dot.png",
			Popup: popupHTML(p),
		})
	}
	if n := len(m.Places); n > 0 {
		data.CenterLat /= float64(n)
		data.CenterLng /= float64(n)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render map %q: %w", m.Name, err)
	}
	return buf.String(), nil
}

func markerColor(s model.Sentiment) string {
	switch s {
	case model.SentimentPositive:
		return "green"
	case model.SentimentNegative:
		return "red"
	default:
		return "blue"
	}
}

var popupTemplate = template.Must(template.New("popup").Parse(
	`<div class="info-window"><h3>{{.Name}}</h3>` +
		`<p><strong>Tag:</strong> {{.Tag}}</p>` +
		`<p><strong>Sentiment:</strong> {{.Sentiment}}</p>` +
		`{{if .Note}}<p><strong>Notes:</strong> {{.Note}}</p>{{end}}</div>`))

func popupHTML(p model.Place) template.HTML {
	var buf bytes.Buffer
	// Template errors are impossible here: the data is a plain struct.
	_ = popupTemplate.Execute(&buf, p)
	return template.HTML(buf.String())
}
