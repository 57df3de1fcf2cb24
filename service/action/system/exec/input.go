package exec

import (
	"sort"
	"strings"
)

// Input represents one task of the shell action
type Input struct {
	Host         *Host             `json:"host,omitempty" yaml:"host,omitempty"`                 //host to execute command on
	Workdir      string            `json:"workdir,omitempty" yaml:"workdir,omitempty"`           //task working directory
	Env          map[string]string `json:"env,omitempty" yaml:"env,omitempty"`                   //task environment variables
	Commands     []string          `json:"commands,omitempty" yaml:"commands,omitempty"`         //commands to run
	TimeoutMs    int               `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`       //max wait time per command
	AbortOnError *bool             `json:"abortOnError,omitempty" yaml:"abortOnError,omitempty"` //stop at the first non-zero status and fail the task
}

func (i *Input) Init() {
	if i.Host == nil {
		i.Host = &Host{}
	}
	if i.Host.URL == "" {
		i.Host.URL = "bash://localhost/"
	}
}

func (i *Input) abortOnError() bool {
	return i.AbortOnError == nil || *i.AbortOnError
}

// scoped wraps command in a subshell entering Workdir and exporting Env, so
// nothing outlives the command in the shared host shell
func (i *Input) scoped(command string) string {
	if i.Workdir == "" && len(i.Env) == 0 {
		return command
	}
	var builder strings.Builder
	builder.WriteString("(")
	if i.Workdir != "" {
		builder.WriteString("cd " + quote(i.Workdir) + " || exit 1; ")
	}
	keys := make([]string, 0, len(i.Env))
	for key := range i.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		builder.WriteString("export " + key + "=" + quote(i.Env[key]) + "; ")
	}
	builder.WriteString(command)
	builder.WriteString(")")
	return builder.String()
}

func quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
