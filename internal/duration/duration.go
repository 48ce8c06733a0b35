// Package duration converts between class durations in minutes and the
// ISO-8601 "PTnHnM" strings stored on classes.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
)

// Bounds of the admin duration slider.
const (
	MinMinutes     = 5
	MaxMinutes     = 180
	StepMinutes    = 5
	DefaultMinutes = 60
)

var isoPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?`)

// ParseISO returns the number of minutes in s, or DefaultMinutes when s is
// not an ISO-8601 time duration.
func ParseISO(s string) int {
	m := isoPattern.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return DefaultMinutes
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	return hours*60 + minutes
}

// Valid reports whether s carries at least an hour or minute component.
func Valid(s string) bool {
	m := isoPattern.FindStringSubmatch(s)
	return m != nil && m[0] == s && (m[1] != "" || m[2] != "")
}

func FormatISO(minutes int) string {
	hours, mins := minutes/60, minutes%60
	switch {
	case hours > 0 && mins > 0:
		return fmt.Sprintf("PT%dH%dM", hours, mins)
	case hours > 0:
		return fmt.Sprintf("PT%dH", hours)
	default:
		return fmt.Sprintf("PT%dM", mins)
	}
}

// Display renders minutes for the slider label: "1h 30m", "2h", "45m".
func Display(minutes int) string {
	hours, mins := minutes/60, minutes%60
	switch {
	case hours > 0 && mins > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// Humanize renders a stored duration for class listings. Strings that are
// not ISO durations are returned unchanged.
func Humanize(s string) string {
	m := isoPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dmin", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%d min", hours*60)
	case minutes > 0:
		return fmt.Sprintf("%d min", minutes)
	default:
		return s
	}
}

// Snap clamps minutes into the slider range and rounds to the nearest step.
func Snap(minutes int) int {
	if minutes < MinMinutes {
		return MinMinutes
	}
	if minutes > MaxMinutes {
		return MaxMinutes
	}
	return (minutes + StepMinutes/2) / StepMinutes * StepMinutes
}
