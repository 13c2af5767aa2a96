package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Fepozopo/imgfuse/pkg/fusion"
)

// Terminal preview for the kitty graphics protocol, the iTerm2 inline-image
// OSC 1337 sequence (also spoken by WezTerm, Warp, VSCode and others), sixel
// through img2sixel, and chafa as a last resort.
//
// PREVIEW_BACKEND=kitty|inline|sixel|chafa tries that backend first.
// PREVIEW_DEBUG=1 traces backend selection on stderr.

func previewDebug() bool {
	v := os.Getenv("PREVIEW_DEBUG")
	return v == "1" || v == "true"
}

func debugf(format string, args ...interface{}) {
	if previewDebug() {
		fmt.Fprintf(os.Stderr, "imgfuse-preview: "+format+"\n", args...)
	}
}

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "kitty") || strings.Contains(term, "ghostty") {
		return true
	}
	return os.Getenv("KONSOLE_VERSION") != ""
}

func isInlineImageCapable() bool {
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "VSCode", "Tabby", "Bobcat":
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "wezterm") || strings.Contains(term, "warp") ||
		strings.Contains(term, "tabby") || strings.Contains(term, "vscode") {
		return true
	}
	return os.Getenv("ITERM_SESSION_ID") != ""
}

func isSixelCapable() bool {
	if os.Getenv("SIXEL_PREVIEW") == "1" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "foot") || strings.Contains(term, "mlterm") {
		return true
	}
	// newer Windows Terminal builds
	return os.Getenv("WT_SESSION") != ""
}

func hasChafa() bool {
	if os.Getenv("NO_CHAFA") == "1" {
		return false
	}
	_, err := exec.LookPath("chafa")
	return err == nil
}

// PreviewSupported reports whether some preview backend is likely to work.
func PreviewSupported() bool {
	return isKitty() || isInlineImageCapable() || isSixelCapable() || hasChafa()
}

// PreviewSize is a placement in terminal cells plus its approximate pixel size.
type PreviewSize struct {
	Cols        int
	Rows        int
	PixelWidth  int
	PixelHeight int
}

const (
	cellW   = 8
	cellH   = 16
	minCols = 6
	minRows = 3
	maxCols = 80
	maxRows = 40
)

// computePreviewSize fits a canvas into at most maxCols x maxRows cells
// without distorting or enlarging it.
func computePreviewSize(c *fusion.Canvas) PreviewSize {
	w, h := c.DisplaySize(maxCols*cellW, maxRows*cellH)
	cols := clampInt((w+cellW/2)/cellW, minCols, maxCols)
	rows := clampInt((h+cellH/2)/cellH, minRows, maxRows)
	return PreviewSize{Cols: cols, Rows: rows, PixelWidth: cols * cellW, PixelHeight: rows * cellH}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// postImageNewlines is how many lines to advance after an image so that
// following text lands under it.
func postImageNewlines(rows int) int {
	switch {
	case rows <= 2:
		return 1
	case rows <= 6:
		return 2
	case rows <= 20:
		return 3
	}
	return 4
}

// PreviewCanvas encodes the canvas ("png" or "jpeg") and shows it inline.
func PreviewCanvas(w io.Writer, c *fusion.Canvas, format string) error {
	if c == nil || c.Bounds().Empty() {
		return fmt.Errorf("nothing to preview")
	}
	f := strings.ToLower(format)
	backend := strings.ToLower(os.Getenv("PREVIEW_BACKEND"))
	if backend == "kitty" || (backend == "" && isKitty()) {
		f = "png"
	}
	blob, f, err := encodePreview(c.Image(), f)
	if err != nil {
		return err
	}
	return previewBytes(w, blob, f, computePreviewSize(c))
}

func encodePreview(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	if format == "jpeg" || format == "jpg" {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92}); err != nil {
			return nil, "", fmt.Errorf("jpeg encode failed: %w", err)
		}
		return buf.Bytes(), "jpeg", nil
	}
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("png encode failed: %w", err)
	}
	return buf.Bytes(), "png", nil
}

type backend struct {
	name      string
	available func() bool
	send      func(w io.Writer, data []byte, format string, size PreviewSize) error
}

var backends = []backend{
	{"inline", isInlineImageCapable, sendInlineImage},
	{"kitty", isKitty, sendKittyImage},
	{"sixel", isSixelCapable, sendSixelImage},
	{"chafa", hasChafa, sendChafaImage},
}

// previewBytes tries the PREVIEW_BACKEND override, then every detected
// backend in order.
func previewBytes(w io.Writer, blob []byte, format string, size PreviewSize) error {
	if len(blob) == 0 {
		return fmt.Errorf("empty image blob")
	}
	if v := strings.ToLower(os.Getenv("PREVIEW_BACKEND")); v != "" {
		if v == "iterm" || v == "wezterm" {
			v = "inline"
		}
		for _, b := range backends {
			if b.name != v {
				continue
			}
			if err := b.send(w, blob, format, size); err == nil {
				return nil
			} else {
				debugf("override %s failed: %v", v, err)
			}
		}
	}
	var firstErr error
	for _, b := range backends {
		if !b.available() {
			continue
		}
		debugf("attempting %s", b.name)
		err := b.send(w, blob, format, size)
		if err == nil {
			return nil
		}
		debugf("%s failed: %v", b.name, err)
		if firstErr == nil {
			firstErr = fmt.Errorf("%s preview failed: %w", b.name, err)
		}
	}
	if firstErr != nil {
		return firstErr
	}
	return fmt.Errorf("no preview protocol matched")
}

// sendKittyImage transmits the image with the kitty graphics protocol in
// base64 chunks of at most 4096 bytes; the first chunk carries the
// placement (c, r). q=2 suppresses terminal replies.
func sendKittyImage(w io.Writer, data []byte, _ string, size PreviewSize) error {
	enc := base64.StdEncoding.EncodeToString(data)
	const chunkSize = 4096
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := pos + chunkSize
		if end > len(enc) {
			end = len(enc)
		}
		more := "0"
		if end < len(enc) {
			more = "1"
		}
		var seq string
		if pos == 0 {
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\", size.Cols, size.Rows, more, enc[pos:end])
		} else {
			seq = "\x1b_Gm=" + more + ";" + enc[pos:end] + "\x1b\\"
		}
		if _, err := io.WriteString(w, seq); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, strings.Repeat("\n", postImageNewlines(size.Rows)))
	return err
}

// sendInlineImage emits the iTerm2 OSC 1337 inline file sequence.
func sendInlineImage(w io.Writer, data []byte, format string, size PreviewSize) error {
	name := "preview.png"
	if strings.HasPrefix(format, "j") {
		name = "preview.jpg"
	}
	meta := fmt.Sprintf("size=%d;", len(data))
	if size.PixelWidth > 0 && size.PixelHeight > 0 {
		meta += fmt.Sprintf("width=%dpx;height=%dpx;", size.PixelWidth, size.PixelHeight)
	}
	seq := "\x1b]1337;File=name=" + name + ";inline=1;" + meta + ":" +
		base64.StdEncoding.EncodeToString(data) + "\a\n"
	_, err := io.WriteString(w, seq)
	return err
}

// sendSixelImage pipes the image through img2sixel.
func sendSixelImage(w io.Writer, data []byte, _ string, _ PreviewSize) error {
	cmd := exec.Command("img2sixel", "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = w
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("img2sixel: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// sendChafaImage renders block symbols with chafa. CHAFA_FILL and
// CHAFA_SYMBOLS override the defaults.
func sendChafaImage(w io.Writer, data []byte, _ string, size PreviewSize) error {
	if os.Getenv("NO_CHAFA") == "1" {
		return fmt.Errorf("chafa usage disabled via NO_CHAFA=1")
	}
	fill, symbols := "block", "block"
	if v := os.Getenv("CHAFA_FILL"); v != "" {
		fill = v
	}
	if v := os.Getenv("CHAFA_SYMBOLS"); v != "" {
		symbols = v
	}
	cmd := exec.Command("chafa", "--fill="+fill, "--symbols="+symbols,
		"-s", fmt.Sprintf("%dx%d", size.Cols, size.Rows), "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = w
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("chafa failed: %w", err)
	}
	_, err := io.WriteString(w, strings.Repeat("\n", postImageNewlines(size.Rows)))
	return err
}
