package activation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"hotclip/internal/domain"
	"hotclip/internal/ports"
)

// XInputKeySource monitors the push-to-talk key by parsing `xinput test-xi2`
// output, the same shape of exec adapter the microphone uses for ffmpeg.
type XInputKeySource struct {
	command string
	keyCode string
	logger  *zap.Logger
}

func NewXInputKeySource(command, keyCode string, logger *zap.Logger) *XInputKeySource {
	if command == "" {
		command = "xinput"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &XInputKeySource{command: command, keyCode: keyCode, logger: logger.Named("keymon")}
}

func (k *XInputKeySource) Events(ctx context.Context) (<-chan domain.ActivationEvent, error) {
	cmd := exec.CommandContext(ctx, k.command, "test-xi2", "--root")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create key monitor pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start key monitor: %w", err)
	}

	out := make(chan domain.ActivationEvent, 8)
	go func() {
		defer close(out)
		parseKeyEvents(ctx, stdout, k.keyCode, out)
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			k.logger.Warn("key monitor exited", zap.Error(err))
		}
	}()
	return out, nil
}

// parseKeyEvents scans xinput test-xi2 output for RawKeyPress/RawKeyRelease
// events matching keyCode. xinput prints an EVENT header line followed by
// indented fields, one of which is the keycode detail.
func parseKeyEvents(ctx context.Context, r io.Reader, keyCode string, out chan<- domain.ActivationEvent) {
	scanner := bufio.NewScanner(r)
	pending := domain.ActivationEventKind("")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "EVENT"):
			switch {
			case strings.Contains(line, "RawKeyPress"):
				pending = domain.EventKeyDown
			case strings.Contains(line, "RawKeyRelease"):
				pending = domain.EventKeyUp
			default:
				pending = ""
			}

		case strings.HasPrefix(line, "detail:") && pending != "":
			detail := strings.TrimSpace(strings.TrimPrefix(line, "detail:"))
			if detail == keyCode {
				select {
				case out <- domain.ActivationEvent{Kind: pending, At: time.Now()}:
				case <-ctx.Done():
					return
				}
			}
			pending = ""
		}
	}
}

var _ ports.KeySource = (*XInputKeySource)(nil)
