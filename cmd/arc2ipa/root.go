package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/backmassage/arc2ipa/internal/check"
	"github.com/backmassage/arc2ipa/internal/config"
	"github.com/backmassage/arc2ipa/internal/display"
	"github.com/backmassage/arc2ipa/internal/logging"
	"github.com/backmassage/arc2ipa/internal/pipeline"
	"github.com/backmassage/arc2ipa/internal/report"
	"github.com/backmassage/arc2ipa/internal/xcodebuild"
)

// rootOptions holds flags that select configuration sources rather than
// configuration values.
type rootOptions struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "arc2ipa",
		Short: "Export Xcode archives to .ipa packages",
		Long: display.TitleStyle.Render("arc2ipa") + display.SubtitleStyle.Render(" - batch export of Xcode archives") + `

Every .xcarchive under the input directory is exported with
xcodebuild -exportArchive into its own directory under the output
directory. A failed export never stops the batch.

` + display.SubtitleStyle.Render("Configuration sources, lowest to highest:") + `
  defaults, arc2ipa.{yaml,toml,json} or --config, .env and ARC2IPA_*
  environment variables, command-line flags.`,
		Example: `  arc2ipa
  arc2ipa -i ./archives -o ./build -m ad-hoc
  arc2ipa -m app-store --team-id ABCDE12345 --report report.yaml
  arc2ipa --check`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringP(config.KeyInput, "i", d.InputDir, "directory scanned for .xcarchive bundles")
	f.StringP(config.KeyOutput, "o", d.OutputDir, "directory receiving one export directory per archive")
	f.StringP(config.KeyMethod, "m", string(d.Method), "export method: "+methodNames())
	f.String(config.KeySigningStyle, string(d.SigningStyle), "signing style: automatic or manual")
	f.String(config.KeyTeamID, d.TeamID, "development team identifier")
	f.Bool(config.KeyAllowProvision, d.AllowProvisioningUpdates, "pass -allowProvisioningUpdates to xcodebuild")
	f.Duration(config.KeyTimeout, d.Timeout, "per-archive timeout, e.g. 15m (0 waits forever)")
	f.String(config.KeyExisting, string(d.Existing), "existing export directory: overwrite or rename")
	f.String(config.KeyDelegate, d.Delegate, "export command, e.g. \"xcrun xcodebuild\"")
	f.Bool(config.KeyPTY, d.UsePTY, "run the export command on a pseudo terminal")
	f.String(config.KeyReport, d.ReportFile, "write a machine-readable report (.yaml, .toml or .json)")
	f.StringP(config.KeyLog, "l", d.LogFile, "append log output to file")
	f.String(config.KeyColor, string(d.ColorMode), "color output: auto, always or never")
	f.BoolP(config.KeyVerbose, "v", d.Verbose, "enable debug output")
	f.BoolP(config.KeyCheck, "c", d.CheckOnly, "check the export toolchain and exit")
	f.StringVar(&opts.configFile, "config", "", "config file (default is ./arc2ipa.{yaml,toml,json})")
	f.StringVar(&opts.envFile, "env-file", "", "dotenv file (default is ./.env)")

	return cmd
}

func methodNames() string {
	names := make([]string, len(config.Methods))
	for i, m := range config.Methods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func versionString() string {
	if commit == "unknown" {
		return version
	}
	return fmt.Sprintf("%s (commit: %s)", version, commit)
}

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsage
}

// run is the root command: load and validate configuration, then either
// run --check or the export batch.
func run(cmd *cobra.Command, opts *rootOptions) error {
	// Bootstrap: the logger doesn't exist yet, so errors are returned for
	// fang to print.
	cfg, cfgFile, err := config.Load(config.LoadOptions{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return usageError(err)
	}
	if err := cfg.Validate(); err != nil {
		return usageError(err)
	}
	if cfg.ReportFile != "" {
		if _, err := report.FormatFor(cfg.ReportFile); err != nil {
			return usageError(err)
		}
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		return usageError(err)
	}
	defer log.Close()

	display.PrintBanner(cmd.ErrOrStderr())
	if cfgFile != "" {
		log.Debug(cfg.Verbose, "Config file: %s", cfgFile)
	}

	if cfg.CheckOnly {
		if !check.RunCheck(&cfg, log) {
			return failure(errors.New("system check failed"))
		}
		return nil
	}

	if err := cfg.Resolve(); err != nil {
		log.Error("%v", err)
		return usageError(err)
	}

	log.Info("=== arc2ipa v%s ===", version)
	log.Info("In:  %s", cfg.InputDir)
	log.Info("Out: %s", cfg.OutputDir)

	delegatePath, err := check.CheckDeps(&cfg)
	if err != nil {
		log.Error("%v", err)
		log.Error("Install the Xcode command line tools or set --delegate")
		return failure(err)
	}
	log.Debug(cfg.Verbose, "Delegate: %s", delegatePath)

	out := cmd.OutOrStdout()
	rep, err := pipeline.Run(cmd.Context(), &cfg, log, xcodebuild.NewRunner(&cfg, out), out)
	if err != nil {
		log.Error("%v", err)
		return failure(err)
	}

	if cfg.ReportFile != "" {
		if err := report.Write(cfg.ReportFile, rep); err != nil {
			log.Error("%v", err)
			return failure(err)
		}
		log.Info("Report written to %s", cfg.ReportFile)
	}

	switch {
	case rep.Interrupted:
		return failure(errors.New("interrupted"))
	case !rep.OK():
		return failure(fmt.Errorf("%d of %d exports failed", len(rep.Failed()), len(rep.Results)))
	}
	return nil
}
