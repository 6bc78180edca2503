// Utility functions for the executor.
package executor

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vinayprograms/agentloop/internal/llm"
)

// truncateForLog truncates a string for logging purposes.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// lastMessages returns at most n trailing messages.
func lastMessages(history []llm.Message, n int) []llm.Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// LineInput reads user turns line by line.
type LineInput struct {
	reader *bufio.Reader
	prompt io.Writer
}

// NewLineInput reads from r and writes prompts to w (w may be nil).
func NewLineInput(r io.Reader, w io.Writer) *LineInput {
	return &LineInput{reader: bufio.NewReader(r), prompt: w}
}

// ReadLine prints prompt and returns the next line without its newline.
// A final line without newline is returned before io.EOF.
func (in *LineInput) ReadLine(prompt string) (string, error) {
	if in.prompt != nil {
		fmt.Fprint(in.prompt, prompt)
	}
	line, err := in.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
