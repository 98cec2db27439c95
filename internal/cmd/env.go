package cmd

import (
	"fmt"

	"github.com/sadopc/tomato/internal/config"
	"github.com/sadopc/tomato/internal/logging"
	"github.com/sadopc/tomato/internal/pomodoro"
	"github.com/sadopc/tomato/internal/store"
)

// env holds what a command needs to talk to the phase engine.
type env struct {
	cfg    *config.Config
	log    *logging.Logger
	store  *store.Store
	engine *pomodoro.Engine
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logging.NewLogger(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	s, err := store.New(cfg.Database.Path)
	if err != nil {
		log.Error("open database failed", "path", cfg.Database.Path, "error", err)
		log.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	e := pomodoro.New(s, pomodoro.WithLogger(log), pomodoro.WithLocation(loc))
	return &env{cfg: cfg, log: log, store: s, engine: e}, nil
}

func (e *env) Close() {
	e.store.Close()
	e.log.Close()
}

// session resolves the --session flag, or the current session when it is unset.
func (e *env) session() (*store.Session, error) {
	if sessionFlag > 0 {
		return e.engine.GetSession(sessionFlag)
	}
	return e.engine.CurrentSession(e.cfg.Defaults.SessionConfig())
}

// sessionArg resolves an optional [id] argument, falling back to session().
func (e *env) sessionArg(args []string) (*store.Session, error) {
	if len(args) == 0 {
		return e.session()
	}
	id, err := parseID(args[0])
	if err != nil {
		return nil, err
	}
	return e.engine.GetSession(id)
}
