package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/dropd/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadTasksCmd(), m.loadStatsCmd()}
	if m.reminders != nil {
		cmds = append(cmds, waitForReminderCmd(m.reminders))
	}
	if m.changes != nil {
		cmds = append(cmds, waitForChangeCmd(m.changes))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Tasks:
			m.CurrentView = ViewTasks
			return m, m.loadTasksCmd()
		case m.Keys.Analytics:
			m.CurrentView = ViewAnalytics
			return m, m.loadStatsCmd()
		case m.Keys.Settings:
			m.CurrentView = ViewSettings
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		if m.CurrentView == ViewTasks {
			return m.handleTasksKey(typed)
		}
		if m.CurrentView == ViewSettings {
			return m.handleSettingsKey(typed)
		}
		return m, nil

	case tasksLoadedMsg:
		m.Tasks = typed.Tasks
		m.syncTaskList()
		return m, nil

	case statsLoadedMsg:
		summary := typed.Summary
		m.Summary = &summary
		return m, nil

	case taskMutatedMsg:
		m.Status = StatusBar{Text: typed.Text}
		return m, tea.Batch(m.loadTasksCmd(), m.loadStatsCmd())

	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil

	case ReminderDueMsg:
		m.notify(typed.Request.Title, typed.Request.Body, "reminder")
		m.Status = StatusBar{Text: fmt.Sprintf("reminder fired: %s", typed.Request.Payload["taskName"])}
		if m.reminders != nil {
			return m, waitForReminderCmd(m.reminders)
		}
		return m, nil

	case storeChangedMsg:
		cmds := []tea.Cmd{m.loadTasksCmd(), m.loadStatsCmd()}
		if m.changes != nil {
			cmds = append(cmds, waitForChangeCmd(m.changes))
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewTasks:
		leftPane = m.renderTaskPanel()
		rightPane = m.renderTaskDetail() + m.renderPalette() + m.renderHelpIfVisible()
	case ViewAnalytics:
		leftPane = m.renderAnalyticsPanel()
		rightPane = m.renderPalette() + m.renderHelpIfVisible()
	case ViewSettings:
		leftPane = m.renderSettingsPanel()
		rightPane = m.renderPalette() + m.renderHelpIfVisible()
	}

	notificationView := ""
	if len(m.Notifications) > 0 {
		last := m.Notifications[len(m.Notifications)-1]
		notificationView = strings.TrimSpace(views.RenderNotification(last.Level, last.Body))
	}

	selected := ""
	if task := m.selectedTask(); task != nil {
		selected = task.Name
	}
	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("dropd | view: %s | selected: %s", m.CurrentView, selected),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: notificationView,
		Footer:       fmt.Sprintf("keys: %s tasks | %s analytics | %s settings | / cmd | %s help | %s quit", m.Keys.Tasks, m.Keys.Analytics, m.Keys.Settings, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}
