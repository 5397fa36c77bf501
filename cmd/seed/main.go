// seed loads the star-system catalogue, the bootstrap administrator and development users into DATABASE_URL.
// Every subcommand is idempotent.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gemini-observatory/backend/internal/config"
	"gemini-observatory/backend/internal/db"
	identityrepo "gemini-observatory/backend/internal/identity/repository"
	identityservice "gemini-observatory/backend/internal/identity/service"
	"gemini-observatory/backend/internal/logging"
	"gemini-observatory/backend/internal/security"
	sessionrepo "gemini-observatory/backend/internal/session/repository"
	"gemini-observatory/backend/internal/starsystem/cache"
	starrepo "gemini-observatory/backend/internal/starsystem/repository"
	starservice "gemini-observatory/backend/internal/starsystem/service"
	userdomain "gemini-observatory/backend/internal/user/domain"
	userrepo "gemini-observatory/backend/internal/user/repository"
)

// devUsers are one account per non-administrator role.
var devUsers = []identityservice.NewUserInput{
	{Username: "astronomer", DisplayName: "Dev Astronomer", Role: userdomain.RoleAstronomer},
	{Username: "observer", DisplayName: "Dev Science Observer", Role: userdomain.RoleScienceObserver},
	{Username: "operator", DisplayName: "Dev Telescope Operator", Role: userdomain.RoleTelescopeOperator},
	{Username: "support", DisplayName: "Dev Support Staff", Role: userdomain.RoleSupportStaff},
}

type env struct {
	cfg  *config.Config
	conn *sqlx.DB
	log  *logrus.Logger
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var devPassword string

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Load reference and development data",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(ctx context.Context, e *env) error {
				if err := seedStars(ctx, e); err != nil {
					return err
				}
				if err := seedAdmin(ctx, e); err != nil {
					return err
				}
				return seedUsers(ctx, e, devPassword)
			})
		},
	}
	cmd.PersistentFlags().StringVar(&devPassword, "dev-password", "gemini-dev-password", "Password for the development users")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stars",
			Short: "Insert the constellation catalogue if the table is empty",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(seedStars)
			},
		},
		&cobra.Command{
			Use:   "admin",
			Short: "Create BOOTSTRAP_ADMIN_USERNAME if it does not exist",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(seedAdmin)
			},
		},
		&cobra.Command{
			Use:   "users",
			Short: "Create one development user per role",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(func(ctx context.Context, e *env) error { return seedUsers(ctx, e, devPassword) })
			},
		},
	)
	return cmd
}

func withEnv(fn func(ctx context.Context, e *env) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set; create a .env or export DATABASE_URL")
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer conn.Close()
	return fn(context.Background(), &env{cfg: cfg, conn: conn, log: logging.New(cfg.LogLevel, cfg.LogFormat)})
}

func authService(e *env) *identityservice.AuthService {
	return identityservice.NewAuthService(
		userrepo.NewPostgresRepository(e.conn),
		identityrepo.NewPostgresRepository(e.conn),
		sessionrepo.NewMemoryRepository(),
		security.NewHasher(e.cfg.BcryptCost),
		nil,
	)
}

func seedStars(ctx context.Context, e *env) error {
	c := cache.Cache(cache.NewMemoryCache(0))
	if e.cfg.RedisAddr != "" {
		client, err := db.OpenRedis(ctx, e.cfg.RedisAddr, e.cfg.RedisPassword, e.cfg.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		c = cache.NewRedisCache(client, cache.DefaultTTL)
	}
	n, err := starservice.NewService(starrepo.NewPostgresRepository(e.conn), c, e.log).Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed star systems: %w", err)
	}
	e.log.WithField("inserted", n).Info("seed: star systems")
	return nil
}

func seedAdmin(ctx context.Context, e *env) error {
	if e.cfg.BootstrapAdminUsername == "" || e.cfg.BootstrapAdminPassword == "" {
		e.log.Info("seed: BOOTSTRAP_ADMIN_USERNAME/PASSWORD not set, skipping administrator")
		return nil
	}
	created, err := authService(e).EnsureAdmin(ctx, e.cfg.BootstrapAdminUsername, e.cfg.BootstrapAdminPassword)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	e.log.WithFields(logrus.Fields{"username": e.cfg.BootstrapAdminUsername, "created": created}).Info("seed: administrator")
	return nil
}

func seedUsers(ctx context.Context, e *env, password string) error {
	auth := authService(e)
	for _, in := range devUsers {
		in.Password = password
		_, err := auth.CreateUser(ctx, in)
		switch {
		case errors.Is(err, identityservice.ErrUsernameTaken):
			e.log.WithField("username", in.Username).Info("seed: user exists")
		case err != nil:
			return fmt.Errorf("create %s: %w", in.Username, err)
		default:
			e.log.WithFields(logrus.Fields{"username": in.Username, "role": in.Role}).Info("seed: user created")
		}
	}
	return nil
}
