package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pcc/internal/app"
	"pcc/internal/config"
	"pcc/internal/db"
	"pcc/internal/logging"
	"pcc/internal/server"
	"pcc/internal/views"
)

const longHelp = `pcc is a project command center for a single project.
Core concepts:
- Workspace: a directory holding pcc.yml and the .pcc state directory.
- Project: one snapshot with metrics, milestones, risks, stakeholders and decisions.
- Milestones own tasks; task status cycles not-started -> in-progress -> completed -> blocked.
- Risks score probability x impact (1..25); status cycles open -> mitigated -> closed.
- Stakeholders land in one of four quadrants by influence and interest.
- Decisions are logged newest first and dated on entry.
- Every change replaces the whole snapshot and saves it immediately.`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pcc",
		Short:         "Project command center CLI",
		Long:          longHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := db.EnsureWorkspace(viper.GetString("workspace"))
			return err
		},
	}
	cobra.OnInitialize(initConfig)
	addPersistentFlags(root)
	root.AddCommand(initCmd())
	root.AddCommand(resetCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(healthCmd())
	root.AddCommand(milestoneCmd())
	root.AddCommand(taskCmd())
	root.AddCommand(riskCmd())
	root.AddCommand(stakeholderCmd())
	root.AddCommand(decisionCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(importCmd())
	root.AddCommand(serveCmd())
	return root
}

func initConfig() {
	viper.SetEnvPrefix("PCC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags(root *cobra.Command) {
	root.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	root.PersistentFlags().Bool("json", false, "output JSON")
	root.PersistentFlags().String("config", "", "config file (defaults to <workspace>/pcc.yml)")
	_ = viper.BindPFlag("workspace", root.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", root.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))
}

// loadConfig reads --config or the workspace pcc.yml. Without required a
// missing pcc.yml yields the defaults.
func loadConfig(required bool) (*config.Config, error) {
	if path := viper.GetString("config"); path != "" {
		return config.FromFile(path)
	}
	if required {
		return config.Load(viper.GetString("workspace"))
	}
	return config.LoadOptional(viper.GetString("workspace"))
}

// withWorkspace opens the workspace store for the duration of fn.
func withWorkspace(cmd *cobra.Command, fn func(context.Context, *app.Workspace) error) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	return runWorkspace(cmd, cfg, fn)
}

func runWorkspace(cmd *cobra.Command, cfg *config.Config, fn func(context.Context, *app.Workspace) error) error {
	logger := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ws, err := app.Open(ctx, viper.GetString("workspace"), cfg, logger)
	if err != nil {
		return err
	}
	defer ws.Close()
	return fn(ctx, ws)
}

func limitsFrom(cfg *config.Config) views.Limits {
	return views.Limits{Upcoming: cfg.Dashboard.UpcomingLimit, TopRisks: cfg.Dashboard.TopRisksLimit}
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(true)
			if err != nil {
				return err
			}
			return runWorkspace(cmd, cfg, func(ctx context.Context, ws *app.Workspace) error {
				if !cmd.Flags().Changed("addr") {
					addr = ws.Config.Server.Addr
				}
				if !cmd.Flags().Changed("base-path") {
					basePath = ws.Config.Server.BasePath
				}
				handler, err := server.New(server.Config{
					Store:    ws.Store,
					Engine:   newEngine(),
					BasePath: basePath,
					Limits:   limitsFrom(ws.Config),
					Logger:   slog.Default(),
				})
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
				done := make(chan struct{})
				defer close(done)
				go func() {
					select {
					case <-ctx.Done():
					case <-done:
						return
					}
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := srv.Shutdown(shutdownCtx); err != nil {
						slog.Error("shutdown project API", "error", err)
					}
				}()
				slog.Info("serving project API", "addr", addr, "base_path", basePath, "driver", ws.Config.Storage.Driver)
				fmt.Fprintf(cmd.OutOrStdout(), "Serving project API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at %s/docs)\n", addr, basePath, basePath, basePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

func printJSONOrTable(out io.Writer, v any, table func()) error {
	if viper.GetBool("json") {
		return printJSON(out, v)
	}
	table()
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
