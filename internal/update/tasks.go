package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/dropd/internal/model"
	"github.com/example/dropd/internal/notify"
	"github.com/example/dropd/internal/service"
	"github.com/example/dropd/internal/storage"
	"github.com/example/dropd/internal/views"
)

func (m Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.Cursor < len(m.Tasks)-1 {
			m.Cursor++
		}
		return m, nil
	case "k", "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case "c":
		if task := m.selectedTask(); task != nil {
			return m, m.completeTaskCmd(task.ID)
		}
		return m, nil
	case "p":
		if task := m.selectedTask(); task != nil {
			return m, m.toggleTaskCmd(task.ID)
		}
		return m, nil
	case "d":
		if task := m.selectedTask(); task != nil {
			return m, m.deleteTaskCmd(task.ID)
		}
		return m, nil
	case "r":
		return m, tea.Batch(m.loadTasksCmd(), m.loadStatsCmd())
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		enabled := !m.svc.Settings().NotificationsEnabled
		return m, m.setNotificationsCmd(enabled)
	case "t":
		theme := "dark"
		if m.svc.Settings().Theme == "dark" {
			theme = "light"
		}
		svc := m.svc
		return m, func() tea.Msg {
			if err := svc.SetTheme(theme); err != nil {
				return AppErrorMsg{Err: err}
			}
			return taskMutatedMsg{Text: "theme set to " + theme}
		}
	}
	return m, nil
}

func (m Model) loadTasksCmd() tea.Cmd {
	svc := m.svc
	filter := storage.TaskListFilter{Category: m.CategoryFilter}
	return func() tea.Msg {
		tasks, err := svc.List(context.Background(), filter)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return tasksLoadedMsg{Tasks: tasks}
	}
}

func (m Model) loadStatsCmd() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		summary, err := svc.Stats(context.Background())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return statsLoadedMsg{Summary: summary}
	}
}

func (m Model) addTaskCmd(in service.CreateInput) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		task, err := svc.Create(context.Background(), in)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return taskMutatedMsg{Text: fmt.Sprintf("added task: %s", task.Name)}
	}
}

func (m Model) completeTaskCmd(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		task, err := svc.Complete(context.Background(), id)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return taskMutatedMsg{Text: fmt.Sprintf("completed %s, streak %d", task.Name, task.Streak)}
	}
}

func (m Model) toggleTaskCmd(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		task, err := svc.ToggleActive(context.Background(), id)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		if task.IsActive {
			return taskMutatedMsg{Text: fmt.Sprintf("resumed %s", task.Name)}
		}
		return taskMutatedMsg{Text: fmt.Sprintf("paused %s", task.Name)}
	}
}

func (m Model) deleteTaskCmd(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.Delete(context.Background(), id); err != nil {
			return AppErrorMsg{Err: err}
		}
		return taskMutatedMsg{Text: "task deleted"}
	}
}

func (m Model) setNotificationsCmd(enabled bool) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.SetNotificationsEnabled(context.Background(), enabled); err != nil {
			return AppErrorMsg{Err: err}
		}
		if enabled {
			return taskMutatedMsg{Text: "notifications enabled"}
		}
		return taskMutatedMsg{Text: "notifications disabled"}
	}
}

func waitForReminderCmd(ch <-chan notify.Request) tea.Cmd {
	return func() tea.Msg {
		req, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Request: req}
	}
}

func waitForChangeCmd(ch <-chan storage.Change) tea.Cmd {
	return func() tea.Msg {
		_, ok := <-ch
		if !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

// findTask resolves a palette target against the loaded list: exact id
// first, then id prefix, then case-insensitive name prefix.
func (m Model) findTask(target string) *model.Task {
	needle := strings.ToLower(strings.TrimSpace(target))
	if needle == "" {
		return nil
	}
	for i := range m.Tasks {
		if m.Tasks[i].ID == target {
			return &m.Tasks[i]
		}
	}
	for i := range m.Tasks {
		if strings.HasPrefix(m.Tasks[i].ID, target) {
			return &m.Tasks[i]
		}
	}
	for i := range m.Tasks {
		if strings.HasPrefix(strings.ToLower(m.Tasks[i].Name), needle) {
			return &m.Tasks[i]
		}
	}
	return nil
}

func (m Model) renderTaskPanel() string {
	now := m.now()
	rows := make([]views.TaskRowData, 0, len(m.Tasks))
	selectedID := ""
	if task := m.selectedTask(); task != nil {
		selectedID = task.ID
	}
	for _, task := range m.Tasks {
		done := 0
		for _, step := range task.Steps {
			if step.IsCompleted {
				done++
			}
		}
		rows = append(rows, views.TaskRowData{
			ID:         task.ID,
			Name:       task.Name,
			Interval:   string(task.Interval),
			Category:   task.Category,
			Priority:   string(task.Priority),
			Streak:     task.Streak,
			DueIn:      formatDueIn(now, task.NextDue),
			Overdue:    task.IsActive && task.NextDue.Before(now),
			Paused:     !task.IsActive,
			StepsDone:  done,
			StepsTotal: len(task.Steps),
		})
	}
	return views.RenderTaskPanel(views.TaskPanelData{
		ListView:   m.taskList.View(),
		Rows:       rows,
		SelectedID: selectedID,
		Filter:     m.CategoryFilter,
	})
}

func (m Model) renderTaskDetail() string {
	task := m.selectedTask()
	if task == nil {
		return views.RenderTaskDetail(views.TaskDetailData{})
	}
	data := views.TaskDetailData{
		SelectedID:      task.ID,
		Description:     views.RenderMarkdown(task.Description, m.svc.Settings().Theme),
		NextDue:         task.NextDue.Format("2006-01-02 15:04"),
		NotificationSet: task.NotificationID != nil,
	}
	if task.LastCompleted != nil {
		data.LastCompleted = task.LastCompleted.Format("2006-01-02 15:04")
	}
	for _, step := range task.Steps {
		mark := "[ ]"
		if step.IsCompleted {
			mark = "[x]"
		}
		data.Steps = append(data.Steps, fmt.Sprintf("%s %s", mark, step.Title))
	}
	return views.RenderTaskDetail(data)
}

func (m Model) renderAnalyticsPanel() string {
	if m.Summary == nil {
		return "analytics:\n(loading)"
	}
	trend := make([]int, 0, len(m.Summary.Trend))
	for _, point := range m.Summary.Trend {
		trend = append(trend, point.Completed)
	}
	return views.RenderAnalyticsPanel(views.AnalyticsPanelData{
		TotalTasks:        m.Summary.TotalTasks,
		ActiveTasks:       m.Summary.ActiveTasks,
		CompletionRate:    m.Summary.CompletionRate,
		AverageStreak:     m.Summary.AverageStreak,
		LongestStreak:     m.Summary.LongestStreak,
		CompletedLastWeek: m.Summary.CompletedLastWeek,
		DueToday:          m.Summary.DueToday,
		Overdue:           m.Summary.Overdue,
		ByCategory:        m.Summary.ByCategory,
		ByPriority:        m.Summary.ByPriority,
		TrendSpark:        sparkline(trend),
	})
}

func (m Model) renderSettingsPanel() string {
	cfg := m.svc.Settings()
	pending := 0
	if m.engine != nil {
		pending = m.engine.PendingCount()
	}
	return views.RenderSettingsPanel(views.SettingsPanelData{
		NotificationsEnabled: cfg.NotificationsEnabled,
		Theme:                cfg.Theme,
		PendingReminders:     pending,
	})
}
