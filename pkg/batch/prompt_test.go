package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
)

func TestTranslateSurveyErr(t *testing.T) {
	if err := translateSurveyErr(terminal.InterruptErr); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected interrupt to map to ErrAborted, got %v", err)
	}
	other := errors.New("tty closed")
	if err := translateSurveyErr(other); !errors.Is(err, other) {
		t.Fatalf("expected other errors to pass through, got %v", err)
	}
}

func TestSurveyPrompter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSurveyPrompter().Confirm(ctx, "continue?"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
