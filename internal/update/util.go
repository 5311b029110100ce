package update

import (
	"fmt"
	"os"
	"strings"
	"time"
)

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func DesktopNotificationsEnabledFromEnv() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("DROPD_DESKTOP_NOTIFICATIONS")))
	return v == "1" || v == "true" || v == "yes"
}

func formatDueIn(now, due time.Time) string {
	d := due.Sub(now)
	if d < 0 {
		d = -d
		switch {
		case d >= 24*time.Hour:
			return fmt.Sprintf("%dd ago", int(d.Hours()/24))
		case d >= time.Hour:
			return fmt.Sprintf("%dh ago", int(d.Hours()))
		default:
			return fmt.Sprintf("%dm ago", int(d.Minutes()))
		}
	}
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("in %dd", int(d.Hours()/24))
	case d >= time.Hour:
		return fmt.Sprintf("in %dh", int(d.Hours()))
	default:
		return fmt.Sprintf("in %dm", int(d.Minutes()))
	}
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func sparkline(values []int) string {
	if len(values) == 0 {
		return ""
	}
	max := 0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return strings.Repeat(string(sparkRunes[0]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := v * (len(sparkRunes) - 1) / max
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
