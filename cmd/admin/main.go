package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"ai-image-studio/internal/core/config"
	"ai-image-studio/internal/core/database"
	"ai-image-studio/internal/core/logger"
	"ai-image-studio/internal/repo"
)

// 运维命令：迁移、删用户（级联删除其生成记录）、统计
type app struct {
	cfgPath string
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	cleanup func()
}

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "studio-admin",
		Short:        "AI image studio maintenance commands",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", os.Getenv("CONFIG_PATH"), "path to YAML config")
	root.AddCommand(a.migrateCmd(), a.deleteUserCmd(), a.statsCmd())
	return root
}

func (a *app) open() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.log, a.cleanup = logger.New(cfg.Log.Level, cfg.Log.JSON)

	a.db, err = database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	return nil
}

func (a *app) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.cleanup != nil {
		a.cleanup()
	}
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users and generations tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := database.Migrate(a.db.WithContext(cmd.Context())); err != nil {
				return err
			}
			a.log.Info("migrate done", zap.String("driver", a.cfg.DB.Driver))
			return nil
		},
	}
}

func (a *app) deleteUserCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "delete-user",
		Short: "Delete a user and all of their generations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = strings.TrimSpace(email)
			n, err := repo.NewUserRepo(a.db).DeleteByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("no user with email %q", email)
			}
			a.log.Info("user deleted", zap.String("email", email))
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the account to delete")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print user and generation counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var users, gens int64
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() (err error) {
				users, err = repo.NewUserRepo(a.db).Count(ctx)
				return err
			})
			g.Go(func() (err error) {
				gens, err = repo.NewGenerationRepo(a.db).Count(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users: %d\ngenerations: %d\n", users, gens)
			return nil
		},
	}
}
