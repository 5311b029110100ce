package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/dropd/internal/commands"
	"github.com/example/dropd/internal/service"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var teaCmd tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			teaCmd = m.addTaskCmd(service.CreateInput{
				Name:     a.Name,
				Interval: a.Interval,
				Priority: a.Priority,
				Category: a.Category,
			})
			return commands.Result{Message: fmt.Sprintf("adding task: %s", a.Name)}, nil
		},
		Complete: func(a commands.TargetArgs) (commands.Result, error) {
			task := m.findTask(a.Target)
			if task == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task matches %q", a.Target)}
			}
			teaCmd = m.completeTaskCmd(task.ID)
			return commands.Result{Message: fmt.Sprintf("completing %s", task.Name)}, nil
		},
		Toggle: func(a commands.TargetArgs) (commands.Result, error) {
			task := m.findTask(a.Target)
			if task == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task matches %q", a.Target)}
			}
			teaCmd = m.toggleTaskCmd(task.ID)
			return commands.Result{Message: fmt.Sprintf("toggling %s", task.Name)}, nil
		},
		Delete: func(a commands.TargetArgs) (commands.Result, error) {
			task := m.findTask(a.Target)
			if task == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task matches %q", a.Target)}
			}
			teaCmd = m.deleteTaskCmd(task.ID)
			return commands.Result{Message: fmt.Sprintf("deleting %s", task.Name)}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			switch a.Subject {
			case "tasks":
				m.CurrentView = ViewTasks
				m.CategoryFilter = a.Category
				teaCmd = m.loadTasksCmd()
			case "stats":
				m.CurrentView = ViewAnalytics
				teaCmd = m.loadStatsCmd()
			case "settings":
				m.CurrentView = ViewSettings
			}
			return commands.Result{Message: fmt.Sprintf("showing %s", a.Subject)}, nil
		},
		Notify: func(a commands.NotifyArgs) (commands.Result, error) {
			teaCmd = m.setNotificationsCmd(a.Enabled)
			if a.Enabled {
				return commands.Result{Message: "enabling notifications"}, nil
			}
			return commands.Result{Message: "disabling notifications"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}

	m.Status = StatusBar{Text: res.Message}
	m.notify("Command", res.Message, "info")
	return m, teaCmd
}
