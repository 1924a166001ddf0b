package history

import (
	"fmt"
	"strings"
	"time"

	"backend-pacetrail/internal/workout"
)

// GPX renders a workout record as a GPX 1.1 track.
func GPX(rec workout.Record) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sb.WriteString("\n")
	sb.WriteString(`<gpx version="1.1" creator="PaceTrail" xmlns="http://www.topografix.com/GPX/1/1">`)
	sb.WriteString("\n<trk><name>")
	name := rec.Name
	if name == "" {
		name = fmt.Sprintf("%s %s", rec.Type, rec.StartTime.Format("2006-01-02"))
	}
	sb.WriteString(xmlEscape(name))
	sb.WriteString("</name><trkseg>\n")

	for _, p := range rec.Points {
		sb.WriteString(fmt.Sprintf(`<trkpt lat="%.7f" lon="%.7f">`, p.Lat, p.Lng))
		if p.AltitudeM != 0 {
			sb.WriteString(fmt.Sprintf("<ele>%.1f</ele>", p.AltitudeM))
		}
		if !p.Timestamp.IsZero() {
			sb.WriteString("<time>" + p.Timestamp.UTC().Format(time.RFC3339) + "</time>")
		}
		sb.WriteString("</trkpt>\n")
	}

	sb.WriteString("</trkseg></trk>\n</gpx>\n")
	return sb.String()
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
