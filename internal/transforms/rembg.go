package transforms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// RembgRemover shells out to the rembg CLI, reading the PNG on stdin and
// writing the cutout PNG to stdout.
type RembgRemover struct {
	command string
}

// NewRembgRemover returns nil when the tool is not installed so callers can
// fail per request instead of at startup.
func NewRembgRemover() *RembgRemover {
	if _, err := exec.LookPath("rembg"); err != nil {
		return nil
	}
	return &RembgRemover{command: "rembg"}
}

func (r *RembgRemover) Remove(ctx context.Context, image []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.command, "i", "-", "-")
	cmd.Stdin = bytes.NewReader(image)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("rembg failed: %s", detail)
		}
		return nil, fmt.Errorf("rembg failed: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, errors.New("rembg produced no output")
	}
	return stdout.Bytes(), nil
}
