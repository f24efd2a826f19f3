package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/client/todoclient"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/prefs"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/presenter"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/theme"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/services/todolist/internal/ui"
	"github.com/suvranil-debnath/fullstack-task-manager-assignment/shared/logger"
)

// ServerEnv переопределяет адрес сервера из файла настроек
const ServerEnv = "TODOCTL_SERVER"

var errNotLoggedIn = errors.New("not logged in: run todoctl login <username>")

// app - общее состояние одного запуска todoctl
type app struct {
	out, errOut io.Writer

	flagServer  string
	flagConfig  string
	flagTimeout time.Duration

	prefsPath string
	prefs     *prefs.Prefs
	client    *todoclient.Client
	logger    *logrus.Logger
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.logger = logger.New(logger.Options{
		Service: "todoctl",
		Level:   envOr("LOG_LEVEL", "warn"),
		Format:  "text",
		Output:  a.errOut,
	})

	path := a.flagConfig
	if path == "" {
		var err error
		if path, err = prefs.DefaultPath(); err != nil {
			return err
		}
	}
	p, err := prefs.Load(path)
	if err != nil {
		return err
	}
	a.prefsPath, a.prefs = path, p

	mode, err := theme.Parse(p.Theme)
	if err != nil {
		a.logger.WithError(err).Warn("ignoring saved theme")
		mode = theme.System
	}
	theme.Init(mode, a.saveTheme)

	server := p.Server
	if v := os.Getenv(ServerEnv); v != "" {
		server = v
	}
	if a.flagServer != "" {
		server = a.flagServer
	}
	a.client, err = todoclient.NewClient(server, a.flagTimeout, a.logger)
	return err
}

func (a *app) saveTheme(m theme.Mode) error {
	a.prefs.Theme = string(m)
	return a.prefs.Save(a.prefsPath)
}

func (a *app) renderer() *ui.Renderer {
	return ui.NewRenderer(a.out, theme.Current())
}

// board загружает список текущего пользователя
func (a *app) board(ctx context.Context) (*presenter.Board, error) {
	if a.prefs.UserID == "" {
		return nil, errNotLoggedIn
	}
	b := presenter.NewBoard(a.client, a.prefs.UserID)
	if err := b.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch todo list: %w", err)
	}
	return b, nil
}

// mutate выполняет действие над доской и выводит обновлённое состояние
func (a *app) mutate(cmd *cobra.Command, message string, action func(ctx context.Context, b *presenter.Board) error) error {
	ctx := cmd.Context()
	b, err := a.board(ctx)
	if err != nil {
		return err
	}
	if err := action(ctx, b); err != nil {
		return err
	}
	r := a.renderer()
	r.Message(message)
	r.Board(b.View())
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
