package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// exeDataDepth is how many elements are stripped from the executable path to reach the data dir.
const exeDataDepth = 3

// Paths represents paths data used by this package.
type Paths struct {
	ConfigPath string
	DataDir    string
}

// Options defines optional settings for configuration.
type Options struct {
	AppName string
	DevMode bool
}

// DefaultPaths returns default paths.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: "ideas"})
}

// DefaultPathsWithOptions returns default paths with options.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = "ideas"
	}
	if opts.DevMode {
		appName += "-dev"
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	exe, err := os.Executable()
	if err != nil {
		return Paths{}, fmt.Errorf("executable path: %w", err)
	}
	if resolved, evalErr := filepath.EvalSymlinks(exe); evalErr == nil {
		exe = resolved
	}

	env := map[string]string{
		"XDG_CONFIG_HOME": os.Getenv("XDG_CONFIG_HOME"),
		"APPDATA":         os.Getenv("APPDATA"),
	}
	return PathsFor(runtime.GOOS, env, configDir, exe, appName)
}

// PathsFor resolves the config file under the platform config base and the
// data dir relative to the executable at exePath.
func PathsFor(goos string, env map[string]string, userConfigDir, exePath, appName string) (Paths, error) {
	if userConfigDir == "" {
		return Paths{}, fmt.Errorf("empty config base dir")
	}
	if strings.TrimSpace(exePath) == "" {
		return Paths{}, fmt.Errorf("empty executable path")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	configBase := userConfigDir
	switch goos {
	case "linux":
		if v := env["XDG_CONFIG_HOME"]; v != "" {
			configBase = v
		}
	case "windows":
		if v := env["APPDATA"]; v != "" {
			configBase = v
		}
	default:
		// Keep os.UserConfigDir defaults elsewhere.
	}

	return Paths{
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    ExeDataDir(exePath),
	}, nil
}

// ExeDataDir strips exeDataDepth path elements from the executable path, the
// file name included. A binary at <repo>/target/<profile>/ideas resolves to <repo>.
func ExeDataDir(exePath string) string {
	dir := filepath.Clean(exePath)
	for range exeDataDepth {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return dir
}
