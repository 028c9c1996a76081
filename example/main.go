// Command example is a small application built on craft: a landing page,
// a users list backed by SQL, and a JSON users API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	craft "github.com/datahihi1/craft-mini"
	"github.com/datahihi1/craft-mini/pkg/config"
	"github.com/datahihi1/craft-mini/pkg/logger"
)

var errSmokeFailed = errors.New("selftest: some routes failed")

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile, envFile string

	load := func() (config.Config, error) {
		return config.Load(config.WithYAML(configFile), config.WithDotenv(envFile))
	}

	root := &cobra.Command{
		Use:           "example",
		Short:         "Demo application for the craft router",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "craft.yaml", "YAML configuration file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file")

	root.AddCommand(
		newServeCmd(load),
		newRoutesCmd(load),
		newSelftestCmd(load),
		newMigrateCmd(load),
	)
	return root
}

type loadFunc func() (config.Config, error)

func newServeCmd(load loadFunc) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			time.Local = cfg.Location()
			log := newLogger(cfg)

			d, err := openDeps(cmd.Context(), cfg, migrate, log)
			if err != nil {
				return err
			}
			app, err := buildApp(cfg, d, log)
			if err != nil {
				return errors.Join(err, d.close(cmd.Context()))
			}

			return app.Run(cfg.Address,
				craft.ShutdownTimeout(30*time.Second),
				craft.ShutdownHook(d.close),
				craft.ShutdownHook(logger.FlushSentry()),
			)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving")
	return cmd
}

func newRoutesCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the compiled routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			app, err := buildApp(cfg, &deps{}, logger.NewNope())
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Method", "Path", "Name", "Params"})
			table.SetAutoWrapText(false)
			for _, rt := range app.Routes() {
				method := rt.Method
				if rt.API {
					method += " (API)"
				}
				table.Append([]string{method, rt.Path, rt.Name, strconv.Itoa(rt.Params)})
			}
			table.Render()
			return nil
		},
	}
}

func newSelftestCmd(load loadFunc) *cobra.Command {
	var (
		value  string
		asJSON bool
		legacy bool
	)
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Request every route in-process and report the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			log := logger.NewNope()
			d, err := openDeps(cmd.Context(), cfg, true, log)
			if err != nil {
				return err
			}
			defer d.close(context.WithoutCancel(cmd.Context()))

			app, err := buildApp(cfg, d, log)
			if err != nil {
				return err
			}

			if value == "" {
				value = cfg.TestValue
			}
			var opts []craft.SmokeOption
			if legacy {
				opts = append(opts, craft.WithBodyHeuristic())
			}
			report := app.SmokeTest(cmd.Context(), value, opts...)

			out := cmd.OutOrStdout()
			if asJSON {
				err = report.JSON(out)
			} else {
				err = report.WriteTable(out)
			}
			if err != nil {
				return err
			}
			if !report.OK() {
				return errSmokeFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "value substituted for every path parameter (default: test_value from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "also fail routes whose body mentions 404 or 500")
	return cmd
}

func newMigrateCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			d, err := openDeps(cmd.Context(), cfg, true, newLogger(cfg))
			if err != nil {
				return err
			}
			return d.close(cmd.Context())
		},
	}
}
