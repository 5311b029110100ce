package views

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# Claim day\n\nVisit the **faucet** first.", "dark")
	if out == "" {
		t.Fatal("expected rendered output")
	}
	if !strings.Contains(out, "Claim day") || !strings.Contains(out, "faucet") {
		t.Fatalf("expected body text in output: %q", out)
	}
	if strings.Contains(out, "**faucet**") {
		t.Fatalf("expected bold markers consumed, got: %q", out)
	}
}

func TestRenderMarkdownBlankInput(t *testing.T) {
	if out := RenderMarkdown("   \n", "dark"); out != "" {
		t.Fatalf("expected empty output for blank input, got %q", out)
	}
}

func TestRenderMarkdownUnknownThemeFallsBack(t *testing.T) {
	out := RenderMarkdown("plain line", "solarized")
	if !strings.Contains(out, "plain line") {
		t.Fatalf("expected text preserved under fallback theme: %q", out)
	}
}

func TestRenderTaskDetailNotesBlock(t *testing.T) {
	out := RenderTaskDetail(TaskDetailData{
		SelectedID:  "task-1",
		Description: "line one\nline two",
		NextDue:     "2024-01-02 09:00",
	})
	if !strings.Contains(out, "notes:\nline one\nline two") {
		t.Fatalf("expected multi-line notes block: %q", out)
	}
}
