package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/plugin"
)

// PluginLister lists discovered plugins.
type PluginLister interface {
	List() []*plugin.Plugin
}

// PluginsHandler serves GET /api/plugins.
type PluginsHandler struct {
	plugins PluginLister
}

// NewPluginsHandler creates a PluginsHandler.
func NewPluginsHandler(plugins PluginLister) *PluginsHandler {
	return &PluginsHandler{plugins: plugins}
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
	Events      []string `json:"events,omitempty"`
}

type listPluginsResponse struct {
	Plugins []pluginResponse `json:"plugins"`
}

func (h *PluginsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	plugins := h.plugins.List()
	response := listPluginsResponse{
		Plugins: make([]pluginResponse, 0, len(plugins)),
	}
	for _, p := range plugins {
		response.Plugins = append(response.Plugins, pluginResponse{
			Name:        p.Manifest.Name,
			Version:     p.Manifest.Version,
			Description: p.Manifest.Description,
			Actions:     p.Manifest.Actions,
			Events:      p.Manifest.Events,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
