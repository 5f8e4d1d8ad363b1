package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// exitSentinel ends the chat loop, matched case-insensitively.
const exitSentinel = "exit"

// Loop runs the interactive read-ask-print loop until the user types the exit
// sentinel or input ends. Per-question errors are printed and the loop
// continues; only context cancellation and read errors end it early.
func (s *Session) Loop(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Ask a question, or type %q to quit.\n", exitSentinel)

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, exitSentinel) {
			fmt.Fprintln(out, "Bye.")
			return nil
		}

		resp, err := s.Answer(ctx, question)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "\n%s\n", resp.Answer)
	}
	return scanner.Err()
}
