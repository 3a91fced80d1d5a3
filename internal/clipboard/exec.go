package clipboard

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"hotclip/internal/domain"
	"hotclip/internal/ports"
)

// ExecClipboard shells out to the platform clipboard tools, mirroring how the
// microphone is captured through ffmpeg. Supported backends, in detection
// order: wl-clipboard (Wayland), xclip (X11), pbpaste/pbcopy (macOS, with
// pngpaste for image reads when installed).
type ExecClipboard struct {
	listTypes  []string
	readText   []string
	readImage  []string
	writeText  []string
	writeImage []string
}

var ErrNoClipboardTool = errors.New("no supported clipboard tool found (wl-paste, xclip or pbpaste)")

// NewExecClipboard detects the available clipboard tool.
func NewExecClipboard() (*ExecClipboard, error) {
	switch {
	case havePath("wl-paste") && havePath("wl-copy"):
		return &ExecClipboard{
			listTypes:  []string{"wl-paste", "--list-types"},
			readText:   []string{"wl-paste", "--no-newline", "--type", "text/plain"},
			readImage:  []string{"wl-paste", "--type", "image/png"},
			writeText:  []string{"wl-copy"},
			writeImage: []string{"wl-copy", "--type", "image/png"},
		}, nil
	case havePath("xclip"):
		return &ExecClipboard{
			listTypes:  []string{"xclip", "-selection", "clipboard", "-t", "TARGETS", "-o"},
			readText:   []string{"xclip", "-selection", "clipboard", "-o"},
			readImage:  []string{"xclip", "-selection", "clipboard", "-t", "image/png", "-o"},
			writeText:  []string{"xclip", "-selection", "clipboard", "-in"},
			writeImage: []string{"xclip", "-selection", "clipboard", "-t", "image/png", "-in"},
		}, nil
	case havePath("pbpaste") && havePath("pbcopy"):
		c := &ExecClipboard{
			readText:  []string{"pbpaste"},
			writeText: []string{"pbcopy"},
		}
		if havePath("pngpaste") {
			c.readImage = []string{"pngpaste", "-"}
		}
		return c, nil
	default:
		return nil, ErrNoClipboardTool
	}
}

// ReadCurrent reads the clipboard and derives a content-identity token from a
// hash of the payload. Two reads with the same token hold the same content.
func (c *ExecClipboard) ReadCurrent(ctx context.Context) (ports.ClipboardContent, string, error) {
	if c.hasImageType(ctx) {
		if data, err := run(ctx, c.readImage, nil); err == nil && len(data) > 0 {
			content := ports.ClipboardContent{Kind: domain.ClipboardImage, Image: data}
			return content, token(content), nil
		}
	}

	data, err := run(ctx, c.readText, nil)
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		// An unreadable or empty selection is an empty clipboard, not an error.
		content := ports.ClipboardContent{Kind: domain.ClipboardEmpty}
		return content, token(content), nil
	}

	content := ports.ClipboardContent{Kind: domain.ClipboardText, Text: string(data)}
	return content, token(content), nil
}

func (c *ExecClipboard) Write(ctx context.Context, content ports.ClipboardContent) error {
	switch content.Kind {
	case domain.ClipboardText:
		_, err := run(ctx, c.writeText, strings.NewReader(content.Text))
		return err
	case domain.ClipboardImage:
		if len(c.writeImage) == 0 {
			return errors.New("clipboard backend cannot write images")
		}
		_, err := run(ctx, c.writeImage, bytes.NewReader(content.Image))
		return err
	default:
		return fmt.Errorf("cannot write clipboard kind %q", content.Kind)
	}
}

func (c *ExecClipboard) hasImageType(ctx context.Context) bool {
	if len(c.readImage) == 0 {
		return false
	}
	if len(c.listTypes) == 0 {
		// No type listing on this backend; probe the image read directly.
		return true
	}
	out, err := run(ctx, c.listTypes, nil)
	if err != nil {
		return false
	}
	return strings.Contains(string(out), "image/png")
}

func token(content ports.ClipboardContent) string {
	h := sha256.New()
	h.Write([]byte(content.Kind))
	h.Write([]byte{0})
	h.Write([]byte(content.Text))
	h.Write(content.Image)
	return hex.EncodeToString(h.Sum(nil))
}

func havePath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func run(ctx context.Context, argv []string, stdin io.Reader) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("clipboard command not configured")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", argv[0], err, detail)
		}
		return nil, fmt.Errorf("%s failed: %w", argv[0], err)
	}
	return out, nil
}
