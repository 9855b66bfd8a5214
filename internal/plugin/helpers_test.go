package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script plugins need a POSIX shell")
	}
}

// writeManifest creates dir/name/plugin.json and returns the plugin directory.
func writeManifest(t *testing.T, dir string, m Manifest) string {
	t.Helper()

	pluginDir := filepath.Join(dir, m.Name)
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), data, 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

// writeScriptPlugin installs a shell-script plugin and returns it.
func writeScriptPlugin(t *testing.T, dir string, m Manifest, script string) *Plugin {
	t.Helper()

	if m.Executable == "" {
		m.Executable = "run.sh"
	}
	pluginDir := writeManifest(t, dir, m)
	exe := filepath.Join(pluginDir, m.Executable)
	if err := os.WriteFile(exe, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{Manifest: m, Path: pluginDir, Executable: exe}
}
