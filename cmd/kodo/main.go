package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kodo/internal/checkpoint"
	"kodo/internal/config"
	"kodo/internal/logging"
	"kodo/internal/mode"
	"kodo/internal/session"
	"kodo/internal/tools"
	"kodo/internal/workspace"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "kodo",
		Short: "Mode-gated agent orchestration for local codebases",
		Long: `Kodo coordinates tool execution for a coding agent: operating modes
gate which tools are eligible, a permission gate confirms sensitive
calls, a workspace guard keeps paths inside the project, and git
checkpoints make mutations reversible.`,
		RunE: runStatus,
	}

	rootCmd.AddCommand(
		initCmd(),
		statusCmd(),
		toolsCmd(),
		sessionsCmd(),
		checkpointsCmd(),
		restoreCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openWorkspace finds the enclosing workspace and loads its config.
func openWorkspace() (*workspace.Workspace, *config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}

	ws, err := workspace.Find(cwd)
	if err != nil {
		return nil, nil, err
	}
	if ws == nil {
		return nil, nil, fmt.Errorf("no workspace found; run 'kodo init' first")
	}

	cfg, err := config.Load(ws.LocalConfigPath())
	if err != nil {
		return nil, nil, err
	}

	if cfg.Logging.Enabled {
		if err := logging.EnableFileLogging(ws.ConfigDir, logging.ParseLevel(cfg.Logging.Level)); err != nil {
			fmt.Fprintln(os.Stderr, "warning: file logging unavailable:", err)
		}
	}
	return ws, cfg, nil
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a workspace in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			ws, err := workspace.Init(cwd)
			if err != nil {
				return err
			}
			fmt.Printf("Initialized workspace at %s\n", ws.Root)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show workspace and configuration state",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	ws, cfg, err := openWorkspace()
	if err != nil {
		return err
	}

	defaultMode, err := mode.Parse(cfg.Mode.Default)
	if err != nil {
		return err
	}

	fmt.Printf("Workspace:      %s\n", ws.Root)
	fmt.Printf("Default mode:   %s\n", defaultMode)
	fmt.Printf("Threshold:      %.2f\n", cfg.Complexity.Threshold)
	fmt.Printf("Auto-exec safe: %v\n", cfg.Execution.AutoExecuteSafe)
	fmt.Printf("Checkpoints:    %v\n", cfg.Execution.CheckpointEnabled)

	infos, err := session.NewStore(ws.SessionsDir()).List()
	if err != nil {
		return err
	}
	fmt.Printf("Sessions:       %d\n", len(infos))
	return nil
}

func toolsCmd() *cobra.Command {
	var modeName string
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List tools eligible in a mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := openWorkspace()
			if err != nil {
				return err
			}

			m, err := mode.Parse(modeName)
			if err != nil {
				return err
			}

			registry, err := tools.DefaultRegistry(ws)
			if err != nil {
				return err
			}

			for _, desc := range registry.List(m) {
				marker := " "
				if desc.Mutating {
					marker = "*"
				}
				fmt.Printf("%s %-10s %-12s %s\n", marker, desc.Name, desc.Safety, desc.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&modeName, "mode", "build", "mode to list tools for (plan, build, review)")
	return cmd
}

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List saved sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := openWorkspace()
			if err != nil {
				return err
			}

			infos, err := session.NewStore(ws.SessionsDir()).List()
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Println("No saved sessions.")
				return nil
			}
			for _, info := range infos {
				fmt.Printf("%s  %3d turns  %s  %s\n",
					info.ID[:8], info.Turns,
					info.UpdatedAt.Format("2006-01-02 15:04"),
					info.Summary)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a session transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := openWorkspace()
			if err != nil {
				return err
			}

			sess, err := session.NewStore(ws.SessionsDir()).Load(args[0])
			if err != nil {
				return err
			}
			for _, turn := range sess.Turns {
				fmt.Printf("[%s] %s: %s\n", turn.Mode, turn.Role, turn.Content)
				for _, outcome := range turn.Outcomes {
					status := outcome.Status
					if outcome.Error != "" {
						status += ": " + outcome.Error
					}
					fmt.Printf("    %s -> %s\n", outcome.Name, status)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := openWorkspace()
			if err != nil {
				return err
			}
			return session.NewStore(ws.SessionsDir()).Delete(args[0])
		},
	})

	return cmd
}

func checkpointsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "List recent checkpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := openWorkspace()
			if err != nil {
				return err
			}

			entries, err := checkpoint.NewGitSnapshotter(ws.Root).List(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No checkpoints.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %-14s %s\n", e.Hash, e.Age, e.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum checkpoints to list")
	return cmd
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <ref>",
		Short: "Restore the workspace to a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := openWorkspace()
			if err != nil {
				return err
			}

			manager := checkpoint.NewManager(checkpoint.NewGitSnapshotter(ws.Root), true)
			pre, err := manager.RestoreTo(context.Background(), args[0], "before restore")
			if err != nil {
				return err
			}
			fmt.Printf("Restored to checkpoint %s\n", args[0])
			if pre != nil {
				fmt.Printf("Previous state saved as %s\n", pre.ID)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kodo version %s\n", version)
		},
	}
}
