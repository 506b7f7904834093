package input

import (
	"io"
	"strings"

	"github.com/c-bata/go-prompt"
)

const (
	// quitCommand ends an interactive session like end of stream
	quitCommand = "quit"

	promptPrefix = "✍  "
)

// Prompt is an interactive LineSource with history and completion of the
// session commands. Ctrl-D on an empty line ends the input.
type Prompt struct {
	// input returns the typed line and whether it was submitted with Enter
	input   func(history []string) (string, bool)
	history []string
}

var _ LineSource = (*Prompt)(nil)

func NewPrompt() *Prompt {
	return &Prompt{input: readPrompt}
}

// readPrompt tells Enter from Ctrl-D: prompt.Input returns "" for both an
// empty Enter and Ctrl-D on an empty line, but only Enter reaches the custom
// key bindings.
func readPrompt(history []string) (string, bool) {
	submitted := false
	submit := func(*prompt.Buffer) { submitted = true }

	in := prompt.Input(promptPrefix, completer,
		prompt.OptionTitle("relstream"),
		prompt.OptionPrefixTextColor(prompt.Yellow),
		prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
		prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
		prompt.OptionSuggestionBGColor(prompt.DarkGray),
		prompt.OptionHistory(history),
		prompt.OptionAddKeyBind(
			prompt.KeyBind{Key: prompt.Enter, Fn: submit},
			prompt.KeyBind{Key: prompt.ControlJ, Fn: submit},
		),
	)

	return in, submitted
}

func (p *Prompt) ReadLine() (string, error) {
	in, submitted := p.input(p.history)
	if !submitted || strings.TrimSpace(in) == quitCommand {
		return "", io.EOF
	}

	if strings.TrimSpace(in) != "" {
		p.history = append(p.history, in)
	}

	return in, nil
}

// completer suggests the session commands, only as the first word.
func completer(d prompt.Document) []prompt.Suggest {
	before := d.TextBeforeCursor()
	if before == "" || strings.ContainsAny(before, " \t") {
		return []prompt.Suggest{}
	}

	s := []prompt.Suggest{
		{Text: quitCommand, Description: "End the session"},
		{Text: Sentinel, Description: "End the session"},
	}
	return prompt.FilterHasPrefix(s, d.GetWordBeforeCursor(), true)
}
