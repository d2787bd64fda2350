package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jasherai/mysqltuner/internal/mysql"
	"github.com/jasherai/mysqltuner/internal/sysinfo"
	"github.com/jasherai/mysqltuner/internal/tuner"
	"github.com/jasherai/mysqltuner/utils"
)

var flags struct {
	host     string
	port     int
	socket   string
	user     string
	password string
	forceMem string
	noColor  bool
	noGood   bool
	noBad    bool
	noInfo   bool
	timeout  time.Duration
}

var rootCmd = &cobra.Command{
	Use:   "mysqltuner",
	Short: "MySQL configuration review and tuning suggestions",
	Long: `mysqltuner connects to a running MySQL server, takes a one-shot snapshot of
its configuration and status counters, and prints a health report with
concrete variables to adjust.`,
	SilenceUsage: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() == "install" || cmd.Name() == "version" || cmd.Name() == "help" {
			return
		}

		if !isShellSupported() {
			return // Skip auto-setup for unsupported shells
		}

		if !completionsExist() {
			fmt.Fprintln(os.Stderr, "🔧 First run detected, setting up mysqltuner...")
			if installCompletions(cmd.Root()) == nil {
				fmt.Fprintln(os.Stderr, "✅ Shell completions installed")
				fmt.Fprintln(os.Stderr, "💡 Restart your shell to enable tab completion")
			} else {
				fmt.Fprintln(os.Stderr, "⚠️  Auto-setup failed. Run 'mysqltuner install' to try again.")
			}
		}
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
		defer cancel()
		return run(ctx)
	},
}

func run(ctx context.Context) error {
	var forceMem utils.MemorySize
	if flags.forceMem != "" {
		parsed, err := utils.ParseMemorySize(flags.forceMem)
		if err != nil {
			return fmt.Errorf("invalid --force-mem value: %w", err)
		}
		forceMem = parsed
	}

	session, err := mysql.Open(ctx, mysql.Config{
		Host:     flags.host,
		Port:     flags.port,
		Socket:   flags.socket,
		User:     flags.user,
		Password: flags.password,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	variables, err := session.Variables(ctx)
	if err != nil {
		return err
	}
	status, err := session.GlobalStatus(ctx)
	if err != nil {
		return err
	}
	tables, err := session.Tables(ctx)
	if err != nil {
		return err
	}

	version, err := mysql.ParseVersion(variables["version"])
	if err != nil {
		return err
	}

	facts, err := sysinfo.Collect(ctx, variables["datadir"], forceMem)
	if err != nil {
		return err
	}

	snap := tuner.NewSnapshot(variables, status, facts, mysql.AggregateEngines(tables), version)

	derived, err := tuner.Derive(snap)
	if err != nil {
		return err
	}

	findings, recs := tuner.Classify(snap, derived)
	report := tuner.NewReport(findings, recs, derived)
	report.Render(os.Stdout, tuner.RenderOptions{
		HideOK:   flags.noGood,
		HideWarn: flags.noBad,
		HideInfo: flags.noInfo,
		NoColor:  flags.noColor,
	})
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&flags.host, "host", "127.0.0.1", "server hostname or IP")
	rootCmd.Flags().IntVar(&flags.port, "port", 3306, "server TCP port")
	rootCmd.Flags().StringVar(&flags.socket, "socket", "", "connect through a Unix socket instead of TCP")
	rootCmd.Flags().StringVar(&flags.user, "user", "root", "administrative account")
	rootCmd.Flags().StringVar(&flags.password, "password", "", "account password")
	rootCmd.Flags().StringVar(&flags.forceMem, "force-mem", "",
		"physical memory of the server host, e.g. 4G (required when the server is remote)")
	rootCmd.Flags().BoolVar(&flags.noColor, "no-color", false, "plain output without ANSI colors")
	rootCmd.Flags().BoolVar(&flags.noGood, "no-good", false, "hide findings that passed")
	rootCmd.Flags().BoolVar(&flags.noBad, "no-bad", false, "hide findings that failed")
	rootCmd.Flags().BoolVar(&flags.noInfo, "no-info", false, "hide informational findings")
	rootCmd.Flags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "overall time limit for the run")
}
