package cli

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// SelectFileWithFzf pipes the image files under startDir into fzf, with a
// terminal-aware image preview pane, and returns the chosen path.
// Requires find, bash and fzf on PATH.
func SelectFileWithFzf(startDir string, stdout io.Writer) (string, error) {
	const chafa = "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	var previewCmd string
	switch {
	case isKitty():
		previewCmd = "printf \"\\x1b_Ga=d\\x1b\\\\\"; kitty +kitten icat --silent {} 2>/dev/null || " + chafa
	case isInlineImageCapable():
		previewCmd = "imgcat {} 2>/dev/null || " + chafa
	case isSixelCapable():
		previewCmd = "img2sixel {} 2>/dev/null || " + chafa
	default:
		previewCmd = chafa
	}

	cmdStr := fmt.Sprintf(
		"find %s -type f \\( -iname '*.jpg' -o -iname '*.jpeg' -o -iname '*.png' -o -iname '*.gif' -o -iname '*.webp' -o -iname '*.bmp' -o -iname '*.tif' -o -iname '*.tiff' \\) | fzf --height 100%% --border --prompt='Images> ' --ansi --preview=%q --preview-window='right:60%%'",
		strconv.Quote(startDir),
		previewCmd,
	)
	cmd := exec.Command("bash", "-lc", cmdStr)
	var out bytes.Buffer
	cmd.Stdout = &out

	err := cmd.Run()
	// the preview pane may leave kitty images behind
	clearKittyImages(stdout)
	if err != nil {
		return "", fmt.Errorf("error running fzf for files: %w", err)
	}
	selection := strings.TrimSpace(out.String())
	if selection == "" {
		return "", fmt.Errorf("no file selected")
	}
	return selection, nil
}

// clearKittyImages emits the kitty graphics delete sequence; other
// terminals ignore it.
func clearKittyImages(w io.Writer) {
	fmt.Fprint(w, "\x1b_Ga=d\x1b\\")
}
