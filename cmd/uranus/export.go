package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"uranus/pkg/auth"
	"uranus/pkg/config"
	"uranus/pkg/exporter"
	"uranus/pkg/logger"
	"uranus/pkg/ratelimit"
	"uranus/pkg/twitter"
	"uranus/pkg/ui"
	"uranus/pkg/userlist"
)

// StoredTokenArg selects the stored token instead of a literal one
const StoredTokenArg = "-"

var (
	likedMode     bool
	excludeTypes  []string
	outputDir     string
	userFolders   bool
	parallelUsers int
	tokenName     string
)

var exportCmd = &cobra.Command{
	Use:   "export <bearer-token|-> <usernames-file>",
	Short: "Export media for every user in a file",
	Long: `Export media for every user listed in the usernames file, one name per line.
Blank lines and lines starting with # are ignored, a leading @ is stripped.

The token is sent as "Authorization: Bearer <token>". Use "-" to read the token
saved with 'uranus auth login' (or URANUS_BEARER_TOKEN).`,
	Example: `  uranus export "$BEARER" users.txt
  uranus export - users.txt --liked --user-folders --parallel 4
  uranus export - users.txt --exclude retweets,replies`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addExportFlags(exportCmd)
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&likedMode, "liked", false, "export posts the users liked instead of their own posts")
	cmd.Flags().StringSliceVar(&excludeTypes, "exclude", nil, "post types to exclude from own posts (retweets, replies)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: current directory)")
	cmd.Flags().BoolVar(&userFolders, "user-folders", false, "put each user's files in a subdirectory")
	cmd.Flags().IntVarP(&parallelUsers, "parallel", "p", 0, fmt.Sprintf("users exported at once (1-%d)", config.MaxParallelUsers))
	cmd.Flags().StringVarP(&tokenName, "token-name", "t", "", "stored token to use with \"-\"")
}

func runExport(cmd *cobra.Command, args []string) error {
	usernames, err := userlist.Read(args[1])
	if err != nil {
		return fmt.Errorf("failed to read usernames: %w", err)
	}
	if len(usernames) == 0 {
		ui.PrintWarning("No usernames found in " + args[1])
		return nil
	}

	token, err := resolveToken(args[0], tokenName, auth.NewManager)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configFile, exportFlags(cmd, token))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	client, err := twitter.NewClient(&cfg.API, log)
	if err != nil {
		return err
	}
	limiter := ratelimit.New(ratelimit.WithLogger(log))
	dispatcher := exporter.NewCommandDispatcher(cfg.Tools, log)
	exp := exporter.New(cfg, client, limiter, dispatcher, log)

	ui.PrintInfo("Users", fmt.Sprintf("%d", len(usernames)))
	ui.PrintInfo("Mode", cfg.Export.Mode)
	ui.PrintInfo("Output", cfg.Output.BaseDirectory)
	ui.PrintInfo("Run", exp.RunID())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := exp.Run(ctx, usernames)
	if summary != nil {
		ui.PrintRunSummary(summary)
	}
	if waits := limiter.Suspensions(); waits > 0 {
		ui.PrintInfo("Rate limit waits", fmt.Sprintf("%d", waits))
	}

	notifier := ui.NewNotifier(cfg.Notifications)
	if runErr != nil {
		if err := notifier.SendError("Export aborted", runErr.Error()); err != nil {
			log.WithError(err).Warn("Notification failed")
		}
		return runErr
	}
	if err := notifier.SendSuccess("Export finished", ui.SummaryLine(summary)); err != nil {
		log.WithError(err).Warn("Notification failed")
	}
	return nil
}

// resolveToken returns arg unless it is "-", in which case the named or
// default stored token is used
func resolveToken(arg, name string, open func() (*auth.Manager, error)) (string, error) {
	if arg != StoredTokenArg {
		return arg, nil
	}

	manager, err := open()
	if err != nil {
		return "", fmt.Errorf("failed to open token store: %w", err)
	}

	var token *auth.Token
	if name != "" {
		token, err = manager.Retrieve(name)
	} else {
		token, err = manager.RetrieveDefault()
	}
	if err != nil {
		return "", fmt.Errorf("no stored bearer token (run 'uranus auth login'): %w", err)
	}
	return token.BearerToken, nil
}

// exportFlags collects only the flags the user actually set, so the config
// file and environment keep their say for the rest
func exportFlags(cmd *cobra.Command, token string) map[string]interface{} {
	flags := map[string]interface{}{"bearer-token": token}
	changed := cmd.Flags().Changed

	if changed("output") {
		flags["output"] = outputDir
	}
	if changed("user-folders") {
		flags["user-folders"] = userFolders
	}
	if changed("liked") {
		mode := config.ModeOwn
		if likedMode {
			mode = config.ModeLiked
		}
		flags["mode"] = mode
	}
	if changed("exclude") {
		flags["exclude"] = excludeTypes
	}
	if changed("parallel") {
		flags["parallel"] = parallelUsers
	}
	if changed("notifications") {
		flags["notifications"] = notifications
	}
	if changed("log-level") {
		flags["log-level"] = logLevel
	}
	return flags
}
