// Package main provides a desktop notification plugin.
// It announces session events via osascript on macOS and notify-send elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action    string          `json:"action"`
	Event     string          `json:"event"`
	Pattern   string          `json:"pattern"`
	Fingers   []bool          `json:"fingers"`
	SessionID string          `json:"session_id,omitempty"`
	Config    json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NotifyConfig is the per-binding configuration.
type NotifyConfig struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Action != "notify" {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	var cfg NotifyConfig
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("failed to parse config: %v", err))
			return
		}
	}
	if cfg.Title == "" {
		cfg.Title = "mudra"
	}
	if cfg.Message == "" {
		cfg.Message = defaultMessage(req)
	}

	if err := notify(cfg.Title, cfg.Message); err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse()
}

// defaultMessage renders the event the way the console does.
func defaultMessage(req Request) string {
	switch req.Event {
	case "session_started":
		return "Starting finger print module"
	case "session_ended":
		return "Ending finger print module"
	default:
		return "Finger status (thumb to pinky): " + fingers(req.Fingers)
	}
}

func fingers(f []bool) string {
	parts := make([]string, len(f))
	for i, up := range f {
		parts[i] = fmt.Sprint(up)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// notify shows a desktop notification.
func notify(title, message string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, message, title)
		cmd = exec.Command("osascript", "-e", script)
	case "linux":
		cmd = exec.Command("notify-send", title, message)
	default:
		return fmt.Errorf("notifications are not supported on %s", runtime.GOOS)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
