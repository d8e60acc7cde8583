// Package publish runs the external dvc and git commands that publish the
// output file.
package publish

import (
	"strings"
)

// Command is one external process invocation.
type Command struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

// String renders the command the way it would be typed in a shell.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, arg := range c.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			arg = `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// SnapshotCommands registers target with dvc and pushes it to the dvc
// remote.
func SnapshotCommands(dvc, target string) []Command {
	return []Command{
		{Name: dvc, Args: []string{"add", target}},
		{Name: dvc, Args: []string{"push"}},
	}
}

// SourceControlCommands pulls, stages everything, commits with message and
// pushes branch to remote. A status query runs before and after each
// mutating step so the console shows the repository state throughout.
func SourceControlCommands(git, message, remote, branch string) []Command {
	status := Command{Name: git, Args: []string{"status"}}
	return []Command{
		status,
		{Name: git, Args: []string{"pull"}},
		status,
		{Name: git, Args: []string{"add", "."}},
		status,
		{Name: git, Args: []string{"commit", "-m", message}},
		status,
		{Name: git, Args: []string{"push", remote, branch}},
		status,
	}
}
