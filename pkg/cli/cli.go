// Package cli wires cobra commands contributed as plugins under one root.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type CommandPlugin interface {
	Meta() *cobra.Command
	Execute(cmd *cobra.Command, args []string) error
}

type CLI struct {
	rootCmd *cobra.Command
	plugins []CommandPlugin
}

// NewCLI wraps root. Cobra's built-in completion command is replaced by the
// one added in Run.
func NewCLI(root *cobra.Command) *CLI {
	root.CompletionOptions.DisableDefaultCmd = true
	return &CLI{
		rootCmd: root,
		plugins: make([]CommandPlugin, 0, 4),
	}
}

func (c *CLI) Root() *cobra.Command {
	return c.rootCmd
}

func (c *CLI) RegisterPlugin(p CommandPlugin) {
	c.plugins = append(c.plugins, p)
	cmd := p.Meta()
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return p.Execute(cmd, args)
	}
	c.rootCmd.AddCommand(cmd)
}

func (c *CLI) initCompletion() {
	completionCmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate completion script",
		Long:      "Generate the completion script for bash, zsh, fish or powershell.",
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch shell := args[0]; shell {
			case "bash":
				return c.rootCmd.GenBashCompletionV2(cmd.OutOrStdout(), true)
			case "zsh":
				return c.rootCmd.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return c.rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return c.rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unsupported shell: %s", shell)
			}
		},
	}
	// source <(autohide completion zsh)
	c.rootCmd.AddCommand(completionCmd)
}

func (c *CLI) Run(ctx context.Context, args []string) error {
	c.initCompletion()
	c.rootCmd.SetArgs(args)
	return c.rootCmd.ExecuteContext(ctx)
}
