package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptLine writes prompt to w and reads one trimmed line from r.
func PromptLine(r io.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// pickRef turns the "/" placeholder into an fzf file selection rooted at
// the working directory. Other values are returned as is.
func pickRef(ref, what string, stdout io.Writer) (string, error) {
	if ref != "/" {
		return ref, nil
	}
	sel, err := SelectFileWithFzf(".", stdout)
	if err != nil {
		return "", fmt.Errorf("select %s: %w", what, err)
	}
	fmt.Fprintf(stdout, " [fzf] %s: %s\n", what, sel)
	return sel, nil
}
