package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readSecrets asks for each label in turn. On a terminal input is not echoed; otherwise
// one line per label is read from stdin.
func readSecrets(cmd *cobra.Command, labels ...string) ([]string, error) {
	in := cmd.InOrStdin()
	values := make([]string, 0, len(labels))

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		for _, label := range labels {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", strings.ToLower(label), err)
			}
			values = append(values, string(b))
		}
		return values, nil
	}

	reader := bufio.NewReader(in)
	for _, label := range labels {
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return nil, fmt.Errorf("no %s given (use the flag or pipe it on stdin)", strings.ToLower(label))
		}
		values = append(values, strings.TrimRight(line, "\r\n"))
	}
	return values, nil
}
