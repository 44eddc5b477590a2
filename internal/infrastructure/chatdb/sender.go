package chatdb

import (
	"context"
	"os/exec"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/pennywise/backend/internal/domain"
)

// sendScript sends argv[2] to the iMessage buddy argv[1]
const sendScript = `on run argv
	tell application "Messages"
		set targetService to 1st account whose service type = iMessage
		set targetBuddy to participant (item 1 of argv) of targetService
		send (item 2 of argv) to targetBuddy
	end tell
end run`

// scriptRunner executes an AppleScript with arguments and returns its combined output
type scriptRunner func(ctx context.Context, script string, args ...string) ([]byte, error)

func runOSAScript(ctx context.Context, script string, args ...string) ([]byte, error) {
	cmdArgs := append([]string{"-e", script}, args...)
	return exec.CommandContext(ctx, "osascript", cmdArgs...).CombinedOutput()
}

// notRunningMarkers are fragments of the errors osascript prints when the
// Messages app cannot be reached
var notRunningMarkers = []string{
	"not running",
	"isn't running",
	"(-600)",
	"connection is invalid",
}

func sendMessage(ctx context.Context, run scriptRunner, recipient, text string) error {
	if strings.TrimSpace(recipient) == "" {
		return errors.New("empty recipient")
	}

	out, err := run(ctx, sendScript, recipient, text)
	if err == nil {
		return nil
	}

	detail := strings.TrimSpace(string(out))
	lower := strings.ToLower(detail + " " + err.Error())
	for _, marker := range notRunningMarkers {
		if strings.Contains(lower, marker) {
			return errors.Wrapf(domain.ErrTransportUnavailable, "send to %s: %s", recipient, detail)
		}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return errors.Wrapf(domain.ErrTransportUnavailable, "send to %s: osascript not found", recipient)
	}
	return errors.Wrapf(err, "send to %s: %s", recipient, detail)
}
