// Package toolver resolves interpreter version pins. A job that declares
// python = "3.10" or node = "20" gets its interpreter located and probed
// before any step runs, so a missing runtime fails the job as a setup error
// rather than as a confusing tool failure mid-run.
package toolver

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vk/checkgrid/internal/command"
	"github.com/vk/checkgrid/internal/ctxlog"
)

// Runtime describes one resolvable interpreter.
type Runtime struct {
	// Name is the logical runtime name exposed to steps ("python", "node").
	Name string
	// Candidates are binary names tried in order. The first that exists in
	// PATH and matches the pin wins.
	Candidates []string
	// EnvVar receives the resolved path in the step environment.
	EnvVar string
}

// Python returns the runtime definition for a CPython pin like "3.10".
// A versioned binary name (python3.10) is preferred over the generic ones.
func Python(pin string) Runtime {
	return Runtime{
		Name:       "python",
		Candidates: []string{"python" + pin, "python3", "python"},
		EnvVar:     "CHECKGRID_PYTHON",
	}
}

// Node returns the runtime definition for a Node.js pin like "20".
func Node(pin string) Runtime {
	return Runtime{
		Name:       "node",
		Candidates: []string{"node"},
		EnvVar:     "CHECKGRID_NODE",
	}
}

// Resolve locates an interpreter matching the pin. It probes each candidate
// with --version and returns the absolute path of the first whose reported
// version matches.
func Resolve(ctx context.Context, commands *command.Runner, rt Runtime, pin string) (string, error) {
	logger := ctxlog.FromContext(ctx).With("runtime", rt.Name, "pin", pin)

	var probeErrs []string
	for _, candidate := range rt.Candidates {
		result, err := commands.Run(ctx, command.Spec{Name: candidate, Args: []string{"--version"}})
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			probeErrs = append(probeErrs, fmt.Sprintf("%s: %v", candidate, err))
			continue
		}

		version := ParseVersion(result.Output())
		if MatchesPin(version, pin) {
			path, err := exec.LookPath(candidate)
			if err != nil {
				probeErrs = append(probeErrs, fmt.Sprintf("%s: %v", candidate, err))
				continue
			}
			logger.Debug("Runtime resolved.", "path", path, "version", version)
			return path, nil
		}
		probeErrs = append(probeErrs, fmt.Sprintf("%s: version %s does not match pin %s", candidate, version, pin))
	}

	return "", fmt.Errorf("no %s matching %q found (%s)", rt.Name, pin, strings.Join(probeErrs, "; "))
}

// ParseVersion extracts a dotted version number from a --version probe line.
// It understands "Python 3.10.12", "v20.11.1" and bare "3.10.12".
func ParseVersion(output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return ""
	}
	// Probe output may span lines; the version is on the first one.
	if i := strings.IndexByte(output, '\n'); i >= 0 {
		output = output[:i]
	}

	fields := strings.Fields(output)
	for _, f := range fields {
		f = strings.TrimPrefix(f, "v")
		if len(f) > 0 && f[0] >= '0' && f[0] <= '9' && strings.ContainsRune(f, '.') {
			return f
		}
	}
	return ""
}

// MatchesPin reports whether a concrete version satisfies a pin. The pin is
// a version prefix on component boundaries: "3.10" matches "3.10.12" but not
// "3.1.0" or "3.100.0".
func MatchesPin(version, pin string) bool {
	if version == "" || pin == "" {
		return false
	}
	if version == pin {
		return true
	}
	return strings.HasPrefix(version, pin+".")
}
