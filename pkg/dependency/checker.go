// Package dependency verifies the external binaries the bot shells out to,
// so a broken environment fails at startup instead of on every request.
package dependency

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Dependency represents an external binary requirement.
type Dependency struct {
	Name        string
	Command     string
	Args        []string
	Description string
	InstallCmd  string
}

// Checker handles dependency checking.
type Checker struct {
	timeout time.Duration
}

// NewChecker creates a checker with a per-command timeout.
func NewChecker(timeout time.Duration) *Checker {
	return &Checker{timeout: timeout}
}

// Check verifies a single dependency is on PATH and runs. The returned error
// carries the install hint when one is configured.
func (c *Checker) Check(ctx context.Context, dep Dependency) error {
	cmdCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, dep.Command, dep.Args...)
	if err := cmd.Run(); err != nil {
		if dep.InstallCmd != "" {
			return fmt.Errorf("%s (%s) is not available: %w; install with: %s",
				dep.Name, dep.Command, err, dep.InstallCmd)
		}
		return fmt.Errorf("%s (%s) is not available: %w", dep.Name, dep.Command, err)
	}
	return nil
}

// SystemDependencies returns the binaries playback relies on. The dca
// encoder spawns ffmpeg for every stream, so a missing ffmpeg would
// otherwise surface only as per-request playback failures.
func SystemDependencies() []Dependency {
	return []Dependency{
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Args:        []string{"-version"},
			Description: "Audio transcoder spawned by the dca encoder",
			InstallCmd:  "brew install ffmpeg (macOS) | apt-get install ffmpeg (Ubuntu)",
		},
	}
}

// ValidateEnvironment checks every system dependency and reports all
// failures at once.
func ValidateEnvironment(ctx context.Context) error {
	checker := NewChecker(10 * time.Second)

	var errs []string
	for _, dep := range SystemDependencies() {
		if err := checker.Check(ctx, dep); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("missing required dependencies: %s", strings.Join(errs, "; "))
	}
	return nil
}
