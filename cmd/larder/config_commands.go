package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"larder/internal/config"
	"larder/internal/notifications"
)

func newConfigCommand(cmdCtx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(cmdCtx))
	configCmd.AddCommand(newConfigTestCommand(cmdCtx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}
			if err := config.WriteSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set the storage, vision and record store credentials before running `larder ingest`.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigValidateCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cmdCtx.ensureConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
			return nil
		},
	}
}

// Probe surfaces the backends expose for connectivity checks.
type connectionTester interface {
	TestConnection(ctx context.Context) error
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

type configValidator interface {
	ValidateConfig(ctx context.Context) error
}

func newConfigTestCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Probe the configured services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.newLogger()
			if err != nil {
				return err
			}
			bound, err := cmdCtx.buildServices(logger)
			if err != nil {
				return err
			}
			defer bound.cleanup()

			out := cmd.OutOrStdout()
			colorize := false
			if f, ok := out.(*os.File); ok {
				colorize = isatty.IsTerminal(f.Fd())
			}

			failures := 0
			report := func(label string, err error) {
				if err != nil {
					failures++
					fmt.Fprintln(out, renderStatusLine(label, statusError, err.Error(), colorize))
					return
				}
				fmt.Fprintln(out, renderStatusLine(label, statusOK, "", colorize))
			}

			ctx := cmd.Context()
			if tester, ok := bound.storage.(connectionTester); ok {
				report("Object storage", tester.TestConnection(ctx))
			}
			if checker, ok := bound.vision.(healthChecker); ok {
				report("Vision model", checker.HealthCheck(ctx))
			}
			if validator, ok := bound.records.(configValidator); ok {
				report("Record store", validator.ValidateConfig(ctx))
			}
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) != "" {
				notifier := notifications.NewService(cfg.Notifications)
				report("Notifications", notifier.TestNotification(ctx))
			} else {
				fmt.Fprintln(out, renderStatusLine("Notifications", statusInfo, "no ntfy topic configured", colorize))
			}

			if failures > 0 {
				return fmt.Errorf("%d service checks failed", failures)
			}
			return nil
		},
	}
}
