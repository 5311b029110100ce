package commands

import (
	"fmt"
	"strings"

	"github.com/example/dropd/internal/model"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeComplete Type = "complete"
	TypeToggle   Type = "toggle"
	TypeDelete   Type = "delete"
	TypeShow     Type = "show"
	TypeNotify   Type = "notify"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs carries the task name plus optional key:value modifiers:
// every:<interval>, prio:<priority>, cat:<category>.
type AddArgs struct {
	Name     string
	Interval model.Interval
	Priority model.Priority
	Category string
}

type TargetArgs struct {
	Target string
}

type ShowArgs struct {
	Subject  string
	Category string
}

type NotifyArgs struct {
	Enabled bool
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Complete *TargetArgs
	Toggle   *TargetArgs
	Delete   *TargetArgs
	Show     *ShowArgs
	Notify   *NotifyArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeComplete:
		return parseTarget(input, TypeComplete, args)
	case TypeToggle:
		return parseTarget(input, TypeToggle, args)
	case TypeDelete:
		return parseTarget(input, TypeDelete, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeNotify:
		return parseNotify(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	parsed := AddArgs{
		Interval: model.IntervalDaily,
		Priority: model.PriorityMedium,
	}
	nameParts := make([]string, 0, len(args))
	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "every:"):
			interval := model.Interval(strings.TrimPrefix(lower, "every:"))
			if !interval.IsValid() {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown interval: %s", interval)}
			}
			parsed.Interval = interval
		case strings.HasPrefix(lower, "prio:"):
			priority := model.Priority(strings.TrimPrefix(lower, "prio:"))
			if !priority.IsValid() {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown priority: %s", priority)}
			}
			parsed.Priority = priority
		case strings.HasPrefix(lower, "cat:"):
			parsed.Category = strings.TrimPrefix(arg, "cat:")
		default:
			nameParts = append(nameParts, arg)
		}
	}
	parsed.Name = strings.TrimSpace(strings.Join(nameParts, " "))
	if parsed.Name == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a task name"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &parsed}, nil
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a task", typ)}
	}
	target := TargetArgs{Target: strings.Join(args, " ")}
	cmd := Command{Type: typ, Raw: raw}
	switch typ {
	case TypeComplete:
		cmd.Complete = &target
	case TypeToggle:
		cmd.Toggle = &target
	case TypeDelete:
		cmd.Delete = &target
	}
	return cmd, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := strings.ToLower(args[0])
	switch subject {
	case "tasks", "stats", "settings":
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown subject: %s", subject)}
	}
	category := ""
	for _, arg := range args[1:] {
		if strings.HasPrefix(strings.ToLower(arg), "cat:") {
			category = strings.TrimSpace(strings.TrimPrefix(arg, "cat:"))
		}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject, Category: category}}, nil
}

func parseNotify(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "notify requires on or off"}
	}
	switch strings.ToLower(args[0]) {
	case "on":
		return Command{Type: TypeNotify, Raw: raw, Notify: &NotifyArgs{Enabled: true}}, nil
	case "off":
		return Command{Type: TypeNotify, Raw: raw, Notify: &NotifyArgs{Enabled: false}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("notify expects on or off, got %s", args[0])}
	}
}
