package batch

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Prompter asks the operator a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(ctx context.Context, message string) (bool, error)

// Confirm implements Prompter.
func (f PrompterFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// SurveyPrompter asks on the controlling terminal.
type SurveyPrompter struct {
	// Default is the answer preselected in the prompt.
	Default bool
	// Help is shown when the operator types '?'.
	Help string

	options []survey.AskOpt
}

// NewSurveyPrompter constructs a terminal prompter. AskOpts are passed to
// every survey call, e.g. survey.WithStdio in tests.
func NewSurveyPrompter(options ...survey.AskOpt) *SurveyPrompter {
	return &SurveyPrompter{
		Help:    "Yes skips the failing schema; no aborts the run. Files already written are kept.",
		options: options,
	}
}

// Confirm implements Prompter. Ctrl-C is reported as ErrAborted.
func (p *SurveyPrompter) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	prompt := &survey.Confirm{
		Message: message,
		Help:    p.Help,
		Default: p.Default,
	}
	if err := survey.AskOne(prompt, &out, p.options...); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
