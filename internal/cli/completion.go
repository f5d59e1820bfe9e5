package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/vrtour/pkg/config"
	"github.com/matzehuels/vrtour/pkg/render"
	"github.com/matzehuels/vrtour/pkg/render/roomgraph"
)

// flagValues lists the fixed values offered when completing a flag, keyed by
// command name and flag name.
var flagValues = map[string]map[string][]string{
	"view":  {"mode": {"view", "edit"}},
	"graph": {"format": {render.FormatSVG, render.FormatPDF, render.FormatPNG, formatDOT}, "layout": {roomgraph.LayoutDot, roomgraph.LayoutPlan}},
	"serve": {"store": {config.StoreFile, config.StoreMongo}},
}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for vrtour.

Besides commands and flags, the scripts complete flag values such as
'view --mode edit', 'graph --layout plan' or 'serve --store mongo', and
manifest paths for view, rooms, graph and serve.

Bash:
  $ source <(vrtour completion bash)

  # To load completions for each session, execute once:
  $ vrtour completion bash > /etc/bash_completion.d/vrtour

Zsh:
  # Requires compinit ("autoload -U compinit; compinit" in ~/.zshrc).
  $ vrtour completion zsh > "${fpath[1]}/_vrtour"

Fish:
  $ vrtour completion fish > ~/.config/fish/completions/vrtour.fish

PowerShell:
  PS> vrtour completion powershell | Out-String | Invoke-Expression

Example, then start a new shell:
  $ vrtour view --mode <TAB>
  edit  view
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// registerCompletions wires flag value and manifest completion into the
// subcommands of root.
func registerCompletions(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		for flag, values := range flagValues[cmd.Name()] {
			_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
		}
		switch cmd.Name() {
		case "view", "rooms", "graph", "serve":
			cmd.ValidArgsFunction = completeManifest
		}
	}
}

// completeManifest offers JSON files for the optional manifest argument.
func completeManifest(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}
