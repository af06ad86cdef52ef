// Package bootstrap wires the demo service into app.Run.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/dalemusser/fhurl/app"
	"github.com/dalemusser/fhurl/auth"
	"github.com/dalemusser/fhurl/config"
	"github.com/dalemusser/fhurl/fhurl"
	"github.com/dalemusser/fhurl/health"
	"github.com/dalemusser/fhurl/i18n"
	"github.com/dalemusser/fhurl/internal/accounts"
	"github.com/dalemusser/fhurl/internal/demo"
	"github.com/dalemusser/fhurl/metrics"
	"github.com/dalemusser/fhurl/middleware"
	"github.com/dalemusser/fhurl/router"
	"github.com/dalemusser/fhurl/session"
	"github.com/dalemusser/fhurl/templates"
)

// LoadConfig loads the shared config and the demo's own settings.
func LoadConfig(logger *zap.Logger) (*config.Config, AppConfig, error) {
	cfg, err := config.Load(logger)
	if err != nil {
		return nil, AppConfig{}, err
	}
	appCfg, err := loadAppConfig()
	if err != nil {
		return nil, AppConfig{}, err
	}
	return cfg, appCfg, nil
}

// Connect opens the session store and seeds the account store.
func Connect(ctx context.Context, cfg *config.Config, appCfg AppConfig, logger *zap.Logger) (Backends, error) {
	store, err := session.Open(ctx, cfg.Session)
	if err != nil {
		return Backends{}, err
	}
	logger.Info("session store opened", zap.String("backend", cfg.Session.Backend))

	accts := accounts.NewStore()
	names := make([]string, 0, len(appCfg.Users))
	for name := range appCfg.Users {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := accts.Add(name, "", appCfg.Users[name]); err != nil {
			_ = store.Close()
			return Backends{}, fmt.Errorf("seed account %q: %w", name, err)
		}
	}

	bundle, err := demo.Bundle(cfg.DefaultLocale)
	if err != nil {
		_ = store.Close()
		return Backends{}, err
	}

	return Backends{
		Sessions: session.NewManager(store, session.OptionsFromConfig(cfg.Session), logger),
		Accounts: accts,
		Bundle:   bundle,
	}, nil
}

func checks(b Backends) health.Checks {
	return health.Checks{"sessions": b.Sessions.Ping}
}

// Ready fails startup when a backend does not answer.
func Ready(ctx context.Context, _ *config.Config, _ AppConfig, b Backends, logger *zap.Logger) error {
	rep := checks(b).Run(ctx, 0, logger)
	if !rep.OK() {
		return fmt.Errorf("backends not ready: %v", rep.Checks)
	}
	return nil
}

// BuildHandler mounts the demo routes on the standard router.
func BuildHandler(cfg *config.Config, appCfg AppConfig, b Backends, logger *zap.Logger) (http.Handler, error) {
	r := router.New(cfg, logger)
	r.Use(session.Middleware(b.Sessions))
	r.Use(i18n.Middleware(i18n.DefaultMiddlewareConfig(b.Bundle)))
	r.Use(middleware.RequireFormEncoded())

	var authn auth.Authenticator = auth.SessionAuth{}
	var tokens *auth.JWTAuth
	if cfg.JWTSecret != "" {
		tokens = auth.NewJWTAuth(cfg.JWTSecret)
		tokens.Logger = logger
		r.Use(tokens.Middleware)
		authn = auth.Any(authn, tokens)
	}

	// Recompile on every render only when editing templates on disk.
	engine, err := demo.NewEngine(cfg.TemplateDir, cfg.Env == "dev" && cfg.TemplateDir != "")
	if err != nil {
		return nil, err
	}
	templates.UseEngine(engine, logger)

	reg := fhurl.NewRegistry(r, fhurl.Deps{
		Auth:     authn,
		Renderer: engine,
		LoginURL: cfg.LoginURL,
		Logger:   logger,
	})
	if err := demo.Mount(r, reg, &demo.Deps{
		Accounts: b.Accounts,
		Sessions: b.Sessions,
		JWT:      tokens,
		Logger:   logger,
	}); err != nil {
		return nil, err
	}

	r.Get("/", demo.Index(reg))
	health.Mount(r, checks(b), logger)
	r.Method(http.MethodGet, "/metrics",
		auth.RequireAPIKey(cfg.MetricsAPIKey, "metrics", logger)(metrics.Handler()))

	for _, route := range reg.Routes() {
		logger.Debug("form route mounted",
			zap.String("name", route.Name),
			zap.String("pattern", route.Pattern),
			zap.String("login", route.Config.RequireLogin.String()))
	}
	return r, nil
}

// Hooks wires the demo into the app lifecycle.
var Hooks = app.Hooks[AppConfig, Backends]{
	Name:         "fhurld",
	LoadConfig:   LoadConfig,
	Connect:      Connect,
	Ready:        Ready,
	BuildHandler: BuildHandler,
}
