package main

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

// envOperatorPassword supplies the operator password when --password-stdin
// is not given.
const envOperatorPassword = "PAYGATE_OPERATOR_PASSWORD"

// passwordFlags registers the password input flags shared by commands that
// take an operator password.
type passwordFlags struct {
	fromStdin bool
	plain     string
}

func (p *passwordFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&p.fromStdin, "password-stdin", false, "Read the operator password from stdin")
	cmd.Flags().StringVar(&p.plain, "password", "", "Operator password (visible in shell history; prefer --password-stdin or "+envOperatorPassword+")")
}

// resolve returns the password from stdin, then PAYGATE_OPERATOR_PASSWORD,
// then --password.
func (p *passwordFlags) resolve(cmd *cobra.Command) (string, error) {
	if p.fromStdin {
		return readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
	if v := os.Getenv(envOperatorPassword); v != "" {
		return v, nil
	}
	if p.plain != "" {
		return p.plain, nil
	}
	return "", fmt.Errorf("operator password required: use --password-stdin, %s or --password", envOperatorPassword)
}

// readPassword reads one line from in. A terminal gets a masked prompt.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		printf(prompt, "Operator password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		printf(prompt, "\n")
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("read password from stdin: empty input")
	}
	return line, nil
}
