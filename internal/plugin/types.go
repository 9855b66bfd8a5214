// Package plugin discovers external action plugins and runs them when session
// events fire.
package plugin

import (
	"encoding/json"
	"slices"
)

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	Events       []string        `json:"events,omitempty"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is written as JSON to a plugin's stdin.
type Request struct {
	Action    string          `json:"action"`
	Event     string          `json:"event"`
	Pattern   string          `json:"pattern"`
	Fingers   []bool          `json:"fingers"`
	SessionID string          `json:"session_id,omitempty"`
	Time      string          `json:"time,omitempty"`
	Config    json.RawMessage `json:"config"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// HasAction reports whether the manifest lists action.
func (p *Plugin) HasAction(action string) bool {
	return slices.Contains(p.Manifest.Actions, action)
}

// Accepts reports whether the plugin handles event. A manifest without an
// events list accepts every event.
func (p *Plugin) Accepts(event string) bool {
	if len(p.Manifest.Events) == 0 {
		return true
	}
	return slices.Contains(p.Manifest.Events, event)
}
