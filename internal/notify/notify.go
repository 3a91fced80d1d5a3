// Package notify delivers desktop notifications through whichever native
// tool exists on the host. Delivery failures are reported to the caller but
// never treated as fatal.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ExecNotifier implements ports.Notifier by invoking a desktop notification
// command.
type ExecNotifier struct {
	build func(ctx context.Context, title, body string) *exec.Cmd
}

// ErrNoNotifyTool indicates no notification command was found; notifications
// are silently skipped in that case.
var ErrNoNotifyTool = errors.New("no desktop notification tool found")

// New probes for notify-send, terminal-notifier and osascript, in that order.
// A non-empty command overrides detection: it is invoked with title and body
// as two arguments.
func New(command string) (*ExecNotifier, error) {
	if command != "" {
		return &ExecNotifier{build: func(ctx context.Context, title, body string) *exec.Cmd {
			return exec.CommandContext(ctx, command, title, body)
		}}, nil
	}

	if _, err := exec.LookPath("notify-send"); err == nil {
		return &ExecNotifier{build: func(ctx context.Context, title, body string) *exec.Cmd {
			return exec.CommandContext(ctx, "notify-send", title, body)
		}}, nil
	}
	if _, err := exec.LookPath("terminal-notifier"); err == nil {
		return &ExecNotifier{build: func(ctx context.Context, title, body string) *exec.Cmd {
			return exec.CommandContext(ctx, "terminal-notifier", "-title", title, "-message", body)
		}}, nil
	}
	if _, err := exec.LookPath("osascript"); err == nil {
		return &ExecNotifier{build: func(ctx context.Context, title, body string) *exec.Cmd {
			script := fmt.Sprintf("display notification %q with title %q", body, title)
			return exec.CommandContext(ctx, "osascript", "-e", script)
		}}, nil
	}
	return nil, ErrNoNotifyTool
}

func (n *ExecNotifier) Notify(ctx context.Context, title, message, emoji string) error {
	body := strings.TrimSpace(message)
	if body == "" {
		return nil
	}
	if emoji != "" {
		body = emoji + " " + body
	}
	if err := n.build(ctx, title, body).Run(); err != nil {
		return fmt.Errorf("notification failed: %w", err)
	}
	return nil
}

// NopNotifier swallows notifications when no tool is available.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string, string) error { return nil }
