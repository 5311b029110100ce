package views

import (
	"fmt"
	"sort"
	"strings"
)

type TaskRowData struct {
	ID         string
	Name       string
	Interval   string
	Category   string
	Priority   string
	Streak     int
	DueIn      string
	Overdue    bool
	Paused     bool
	StepsDone  int
	StepsTotal int
}

type TaskPanelData struct {
	ListView   string
	Rows       []TaskRowData
	SelectedID string
	Filter     string
}

type TaskDetailData struct {
	SelectedID      string
	Description     string
	NextDue         string
	LastCompleted   string
	Steps           []string
	NotificationSet bool
}

type AnalyticsPanelData struct {
	TotalTasks        int
	ActiveTasks       int
	CompletionRate    float64
	AverageStreak     float64
	LongestStreak     int
	CompletedLastWeek int
	DueToday          int
	Overdue           int
	ByCategory        map[string]int
	ByPriority        map[string]int
	TrendSpark        string
}

type SettingsPanelData struct {
	NotificationsEnabled bool
	Theme                string
	PendingReminders     int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	if data.Filter != "" {
		b.WriteString(fmt.Sprintf("filter: cat=%s\n", data.Filter))
	}
	b.WriteString("actions: [j/k]move [c]complete [p]pause/resume [d]delete [r]refresh\n")
	b.WriteString(data.ListView + "\n")
	if len(data.Rows) == 0 {
		b.WriteString("(no tasks yet, /add one)")
		return strings.TrimSpace(b.String())
	}
	for _, row := range data.Rows {
		cursor := " "
		if data.SelectedID == row.ID {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s [%s/%s]", cursor, dueBadge(row), row.Name, row.Interval, row.Category))
		if row.StepsTotal > 0 {
			b.WriteString(fmt.Sprintf(" steps:%d/%d", row.StepsDone, row.StepsTotal))
		}
		if row.Streak > 0 {
			b.WriteString(fmt.Sprintf(" streak:%d", row.Streak))
		}
		if row.Paused {
			b.WriteString(" (paused)")
		} else {
			b.WriteString(" due:" + row.DueIn)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderTaskDetail(data TaskDetailData) string {
	if strings.TrimSpace(data.SelectedID) == "" {
		return "detail:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("detail:\n")
	b.WriteString(fmt.Sprintf("id: %s\n", data.SelectedID))
	if data.Description != "" {
		// Description arrives pre-rendered (markdown) and may span lines.
		b.WriteString("notes:\n")
		b.WriteString(data.Description + "\n")
	}
	b.WriteString(fmt.Sprintf("next due: %s\n", data.NextDue))
	if data.LastCompleted != "" {
		b.WriteString(fmt.Sprintf("last completed: %s\n", data.LastCompleted))
	}
	if data.NotificationSet {
		b.WriteString("reminder: scheduled\n")
	} else {
		b.WriteString("reminder: none\n")
	}
	if len(data.Steps) > 0 {
		b.WriteString("steps:\n")
		for _, step := range data.Steps {
			b.WriteString("- " + step + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderAnalyticsPanel(data AnalyticsPanelData) string {
	var b strings.Builder
	b.WriteString("analytics:\n")
	b.WriteString(fmt.Sprintf("tasks: %d total, %d active\n", data.TotalTasks, data.ActiveTasks))
	b.WriteString(fmt.Sprintf("today: %d due, %d overdue, %.0f%% done\n", data.DueToday, data.Overdue, data.CompletionRate*100))
	b.WriteString(fmt.Sprintf("streaks: avg %.1f, longest %d\n", data.AverageStreak, data.LongestStreak))
	b.WriteString(fmt.Sprintf("completions last 7 days: %d\n", data.CompletedLastWeek))
	writeDistribution(&b, "categories", data.ByCategory)
	writeDistribution(&b, "priorities", data.ByPriority)
	if data.TrendSpark != "" {
		b.WriteString("30-day trend: " + data.TrendSpark + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderSettingsPanel(data SettingsPanelData) string {
	notifications := "off"
	if data.NotificationsEnabled {
		notifications = "on"
	}
	var b strings.Builder
	b.WriteString("settings:\n")
	b.WriteString("actions: [n]toggle notifications [t]cycle theme\n")
	b.WriteString(fmt.Sprintf("notifications: %s\n", notifications))
	b.WriteString(fmt.Sprintf("theme: %s\n", data.Theme))
	b.WriteString(fmt.Sprintf("pending reminders: %d", data.PendingReminders))
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("\nnotification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func writeDistribution(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString(title + ":\n")
	for _, k := range keys {
		label := k
		if label == "" {
			label = "(none)"
		}
		b.WriteString(fmt.Sprintf("- %s: %d\n", label, counts[k]))
	}
}

func dueBadge(row TaskRowData) string {
	if row.Paused {
		return "[GRAY]"
	}
	if row.Overdue {
		return "[RED]"
	}
	if row.Priority == "high" {
		return "[YELLOW]"
	}
	return "[GREEN]"
}
