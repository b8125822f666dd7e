package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoCommand struct {
	cmd  *cobra.Command
	args []string
	err  error
}

func (e *echoCommand) Meta() *cobra.Command {
	if e.cmd == nil {
		e.cmd = &cobra.Command{
			Use:   "echo",
			Short: "Record arguments",
		}
	}
	return e.cmd
}

func (e *echoCommand) Execute(cmd *cobra.Command, args []string) error {
	e.args = args
	return e.err
}

func newTestCLI() (*CLI, *bytes.Buffer) {
	var out bytes.Buffer
	root := &cobra.Command{Use: "autohide", SilenceUsage: true, SilenceErrors: true}
	root.SetOut(&out)
	root.SetErr(&out)
	return NewCLI(root), &out
}

func TestCLI_RegisterPlugin(t *testing.T) {
	c, _ := newTestCLI()
	plugin := &echoCommand{}
	c.RegisterPlugin(plugin)

	require.NoError(t, c.Run(context.Background(), []string{"echo", "a", "b"}))
	assert.Equal(t, []string{"a", "b"}, plugin.args)
}

func TestCLI_PluginError(t *testing.T) {
	c, _ := newTestCLI()
	boom := errors.New("boom")
	c.RegisterPlugin(&echoCommand{err: boom})

	assert.ErrorIs(t, c.Run(context.Background(), []string{"echo"}), boom)
}

func TestCLI_Completion(t *testing.T) {
	tests := []struct {
		shell    string
		contains string
	}{
		{"bash", "autohide"},
		{"zsh", "#compdef autohide"},
		{"fish", "complete -c autohide"},
		{"powershell", "Register-ArgumentCompleter"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			c, out := newTestCLI()
			require.NoError(t, c.Run(context.Background(), []string{"completion", tt.shell}))
			assert.Contains(t, out.String(), tt.contains)
		})
	}

	c, _ := newTestCLI()
	assert.Error(t, c.Run(context.Background(), []string{"completion", "tcsh"}))
}
