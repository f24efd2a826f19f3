package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/presenter"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/theme"
)

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "todoctl",
		Short: "Manage your todo list from the terminal",
		Long: `todoctl talks to the todolist server: it shows tasks with their
progress and status summary and lets you add, complete and remove
tasks and subtasks.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	// Глобальные флаги
	rootCmd.PersistentFlags().StringVar(&a.flagServer, "server", "", "todolist server URL (overrides "+ServerEnv+" and config)")
	rootCmd.PersistentFlags().StringVar(&a.flagConfig, "config", "", "config file path")
	rootCmd.PersistentFlags().DurationVar(&a.flagTimeout, "timeout", 10*time.Second, "per-request timeout")

	rootCmd.AddCommand(loginCmd(a))
	rootCmd.AddCommand(registerCmd(a))
	rootCmd.AddCommand(logoutCmd(a))
	rootCmd.AddCommand(listCmd(a))
	rootCmd.AddCommand(addCmd(a))
	rootCmd.AddCommand(rmCmd(a))
	rootCmd.AddCommand(subCmd(a))
	rootCmd.AddCommand(themeCmd(a))

	return rootCmd
}

// readPassword берёт пароль из флага или первой строки stdin
func readPassword(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password required")
	}
	return password, nil
}

func loginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and remember the user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			userID, err := a.client.Login(cmd.Context(), args[0], pw)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			a.prefs.UserID, a.prefs.Username = userID, args[0]
			if err := a.prefs.Save(a.prefsPath); err != nil {
				return err
			}
			a.renderer().Message(fmt.Sprintf("Logged in as %s", args[0]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when empty)")
	return cmd
}

func registerCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			msg, err := a.client.Register(cmd.Context(), args[0], pw)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			if msg == "" {
				msg = "Registered " + args[0]
			}
			a.renderer().Message(msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when empty)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.prefs.UserID, a.prefs.Username = "", ""
			if err := a.prefs.Save(a.prefsPath); err != nil {
				return err
			}
			a.renderer().Message("Logged out")
			return nil
		},
	}
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show tasks, progress and status summary",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.board(cmd.Context())
			if err != nil {
				return err
			}
			a.renderer().Board(b.View())
			return nil
		},
	}
}

func addCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, "Task added", func(ctx context.Context, b *presenter.Board) error {
				return b.AddTask(ctx, joinArgs(args))
			})
		},
	}
}

func rmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task>",
		Short: "Delete a task with all its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, "Task deleted", func(ctx context.Context, b *presenter.Board) error {
				task, err := b.ResolveTask(args[0])
				if err != nil {
					return err
				}
				return b.DeleteTask(ctx, task.ID)
			})
		},
	}
}

func subCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sub",
		Short: "Manage subtasks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <task> <title>",
		Short: "Add a subtask",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, "Subtask added", func(ctx context.Context, b *presenter.Board) error {
				task, err := b.ResolveTask(args[0])
				if err != nil {
					return err
				}
				return b.AddSubtask(ctx, task.ID, joinArgs(args[1:]))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "toggle <task> <subtask>",
		Aliases: []string{"done"},
		Short:   "Flip a subtask's completion status",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, "Subtask completion updated", func(ctx context.Context, b *presenter.Board) error {
				task, err := b.ResolveTask(args[0])
				if err != nil {
					return err
				}
				sub, err := b.ResolveSubtask(task, args[1])
				if err != nil {
					return err
				}
				return b.ToggleSubtask(ctx, task.ID, sub.ID)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <task> <subtask>",
		Short: "Delete a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, "Subtask deleted", func(ctx context.Context, b *presenter.Board) error {
				task, err := b.ResolveTask(args[0])
				if err != nil {
					return err
				}
				sub, err := b.ResolveSubtask(task, args[1])
				if err != nil {
					return err
				}
				return b.DeleteSubtask(ctx, task.ID, sub.ID)
			})
		},
	})

	return cmd
}

func themeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|system]",
		Short:     "Show or change the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(theme.Light), string(theme.Dark), string(theme.System)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				mode, err := theme.Parse(args[0])
				if err != nil {
					return err
				}
				if err := theme.Set(mode); err != nil {
					return err
				}
			}
			fmt.Fprintf(a.out, "theme: %s (%s)\n", theme.Current(), theme.Effective())
			return nil
		},
	}
}
