// Package health checks the tools generated stage scripts rely on.
package health

import (
	"fmt"
	"os/exec"
	"strings"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name     string
	Passed   bool
	Required bool
	Message  string
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	// Passed is false when any required check failed.
	Passed bool
}

// Tool is an executable to look up in PATH.
type Tool struct {
	Name     string
	Binary   string
	Required bool
}

// DefaultTools are the executables the built-in catalog's scripts invoke.
// None is required: scripts only run when the answers enable them.
var DefaultTools = []Tool{
	{Name: "Node.js", Binary: "node"},
	{Name: "npm", Binary: "npm"},
	{Name: "pnpm", Binary: "pnpm"},
	{Name: "Yarn", Binary: "yarn"},
	{Name: "npx", Binary: "npx"},
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// RunHealthChecks checks the script shell, which is required, and tools.
func RunHealthChecks(shell string, tools []Tool) *HealthReport {
	report := &HealthReport{
		Checks: make([]CheckResult, 0, len(tools)+1),
		Passed: true,
	}

	report.add(CheckShell(shell))
	for _, tool := range tools {
		report.add(CheckTool(tool))
	}
	return report
}

func (r *HealthReport) add(check CheckResult) {
	r.Checks = append(r.Checks, check)
	if check.Required && !check.Passed {
		r.Passed = false
	}
}

// CheckShell checks the shell stage scripts run with.
func CheckShell(shell string) CheckResult {
	result := CheckTool(Tool{Name: "Shell (" + shell + ")", Binary: shell, Required: true})
	if !result.Passed {
		result.Message += "; set shell in the config"
	}
	return result
}

// CheckTool checks if a tool is available
func CheckTool(tool Tool) CheckResult {
	path, err := lookPath(tool.Binary)
	if err != nil {
		return CheckResult{
			Name:     tool.Name,
			Passed:   false,
			Required: tool.Required,
			Message:  fmt.Sprintf("%s not found in PATH", tool.Binary),
		}
	}

	return CheckResult{
		Name:     tool.Name,
		Passed:   true,
		Required: tool.Required,
		Message:  path,
	}
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var sb strings.Builder

	for _, check := range report.Checks {
		switch {
		case check.Passed:
			fmt.Fprintf(&sb, "✓ %s: %s\n", check.Name, check.Message)
		case check.Required:
			fmt.Fprintf(&sb, "✗ Error: %s\n", check.Message)
		default:
			fmt.Fprintf(&sb, "- %s: %s (optional)\n", check.Name, check.Message)
		}
	}

	return sb.String()
}
