package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Coordinate holds a latitude or longitude exactly as the client sent it.
// Numbers keep their literal JSON text and strings are unquoted; nothing is
// range-checked. JSON null decodes to the empty Coordinate.
type Coordinate string

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*c = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Coordinate(s)
	default:
		*c = Coordinate(raw)
	}
	return nil
}

// Location is the point reported by the browser when SOS is pressed.
type Location struct {
	Latitude  Coordinate
	Longitude Coordinate
}

// MapLink returns the Google Maps URL pointing at l.
func (l Location) MapLink() string {
	return fmt.Sprintf("https://maps.google.com/?q=%s,%s", l.Latitude, l.Longitude)
}

// AlertMessage renders the SMS body sent to the user's contact.
func AlertMessage(username string, loc Location) string {
	return fmt.Sprintf("🚨 EMERGENCY ALERT 🚨\nName: %s\nLocation: %s", username, loc.MapLink())
}
