package update

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/example/dropd/internal/model"
	"github.com/example/dropd/internal/notify"
	"github.com/example/dropd/internal/scheduler"
	"github.com/example/dropd/internal/service"
	"github.com/example/dropd/internal/stats"
	"github.com/example/dropd/internal/storage"
)

type View string

const (
	ViewTasks     View = "Tasks"
	ViewAnalytics View = "Analytics"
	ViewSettings  View = "Settings"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks     string
	Analytics string
	Settings  string
	Help      string
	Quit      string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

// DesktopNotifier delivers a due reminder to the desktop session.
type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type Model struct {
	CurrentView    View
	Tasks          []model.Task
	Cursor         int
	CategoryFilter string
	Summary        *stats.Summary
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error

	svc       *service.TaskService
	engine    *scheduler.Engine
	reminders <-chan notify.Request
	changes   <-chan storage.Change
	notifier  DesktopNotifier
	now       func() time.Time

	taskList     list.Model
	commandInput textinput.Model
	helpModel    help.Model
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type tasksLoadedMsg struct {
	Tasks []model.Task
}

type statsLoadedMsg struct {
	Summary stats.Summary
}

type taskMutatedMsg struct {
	Text string
}

type AppErrorMsg struct {
	Err error
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type ReminderDueMsg struct {
	Request notify.Request
}

type storeChangedMsg struct{}

func NewModel(svc *service.TaskService, engine *scheduler.Engine, changes <-chan storage.Change, notifier DesktopNotifier) Model {
	m := Model{
		CurrentView: ViewTasks,
		svc:         svc,
		engine:      engine,
		changes:     changes,
		notifier:    NoopDesktopNotifier{},
		now:         time.Now,
		Keys: GlobalKeyMap{
			Tasks:     "1",
			Analytics: "2",
			Settings:  "3",
			Help:      "?",
			Quit:      "q",
		},
	}
	if engine != nil {
		m.reminders = engine.C()
	}
	if notifier != nil {
		m.notifier = notifier
	}

	delegate := list.NewDefaultDelegate()
	m.taskList = list.New(nil, delegate, 56, 12)
	m.taskList.SetShowTitle(false)
	m.taskList.SetShowStatusBar(false)
	m.taskList.SetFilteringEnabled(false)
	m.taskList.SetShowHelp(false)

	m.commandInput = textinput.New()
	m.commandInput.Placeholder = "add daily claim every:daily prio:high"
	m.commandInput.CharLimit = 200

	m.helpModel = help.New()
	return m
}

func (m *Model) syncTaskList() {
	items := make([]list.Item, 0, len(m.Tasks))
	for _, task := range m.Tasks {
		items = append(items, listItem{
			title:       task.Name,
			description: fmt.Sprintf("%s / %s", task.Interval, task.Category),
		})
	}
	m.taskList.SetItems(items)
	if m.Cursor >= len(m.Tasks) {
		m.Cursor = len(m.Tasks) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m Model) selectedTask() *model.Task {
	if len(m.Tasks) == 0 || m.Cursor < 0 || m.Cursor >= len(m.Tasks) {
		return nil
	}
	task := m.Tasks[m.Cursor]
	return &task
}

func (m *Model) notify(title, body, level string) {
	n := Notification{Title: title, Body: body, Level: level, At: m.now()}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 10 {
		m.Notifications = m.Notifications[len(m.Notifications)-10:]
	}
	_ = m.notifier.Send(n)
}
