package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

func IsPipedOrRedirected(fi os.FileInfo) bool {
	return (fi.Mode() & os.ModeCharDevice) == 0
}

// PromptRead prompts via w for input and reads it from r until a newline is entered.
func PromptRead(w io.Writer, r io.Reader, prompt string, a ...any) (string, error) {
	fmt.Fprintf(w, prompt, a...)

	reader := bufio.NewReader(r)

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("prompt read: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// PromptReadSecure prompts the user via w for input and securely reads it
// from the given file descriptor.
func PromptReadSecure(w io.Writer, fd int, prompt string, a ...any) ([]byte, error) {
	fmt.Fprintf(w, prompt, a...)
	defer fmt.Println()

	bs, err := term.ReadPassword(fd)
	if err != nil {
		return nil, fmt.Errorf("term read password: %w", err)
	}

	return bs, nil
}

