package commands

import (
	"errors"
	"testing"

	"github.com/example/dropd/internal/model"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add daily faucet claim every:daily", TypeAdd},
		{"complete daily faucet claim", TypeComplete},
		{"toggle testnet bridge", TypeToggle},
		{"delete old quest", TypeDelete},
		{"show tasks cat:DeFi", TypeShow},
		{"notify off", TypeNotify},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddModifiers(t *testing.T) {
	cmd, err := Parse("/add weekly galxe quests every:weekly prio:high cat:Quests")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Name != "weekly galxe quests" {
		t.Fatalf("unexpected name: %q", cmd.Add.Name)
	}
	if cmd.Add.Interval != model.IntervalWeekly || cmd.Add.Priority != model.PriorityHigh {
		t.Fatalf("unexpected modifiers: %+v", cmd.Add)
	}
	if cmd.Add.Category != "Quests" {
		t.Fatalf("unexpected category: %q", cmd.Add.Category)
	}
}

func TestParseAddDefaults(t *testing.T) {
	cmd, err := Parse("add check points")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Interval != model.IntervalDaily || cmd.Add.Priority != model.PriorityMedium {
		t.Fatalf("unexpected defaults: %+v", cmd.Add)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	cases := []string{
		"add every:daily",
		"add task every:fortnightly",
		"add task prio:urgent",
		"complete",
		"show balances",
		"notify maybe",
		"notify",
	}
	for _, in := range cases {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument error, got %v", in, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/snooze everything")
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "/"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input error, got %v", in, err)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/complete daily claim")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Complete: func(a TargetArgs) (Result, error) {
			called = true
			if a.Target != "daily claim" {
				t.Fatalf("unexpected target: %q", a.Target)
			}
			return Result{Message: "done"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "done" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("notify on")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
