package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/spf13/cobra"

	"mig-go/internal/app"
	"mig-go/internal/config"
	"mig-go/internal/database"
	"mig-go/internal/encryption"
	"mig-go/internal/inventory"
	"mig-go/internal/mig"
)

// errPartialFailure marks a strict-mode run that finished but left
// failed records behind. It maps to exit code 2 so wrapper scripts can
// tell "retry some paths" from "the run itself broke".
var errPartialFailure = errors.New("some records failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errPartialFailure) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// newApp reads the config and creates a MigApp. The caller must defer
// app.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.MigApp, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewMigApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// readPassphrase prompts on stderr and reads a passphrase without echo.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pass), nil
}

var rootCmd = &cobra.Command{
	Use:   "mig",
	Short: "File server to cloud migration operator tool",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:        %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:         %s\n", cfg.LogDir)
		fmt.Printf("Database:        %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Transfer binary: %s\n", cfg.Transfer.Binary)
		fmt.Printf("Restore workers: %d\n", cfg.Restore.Workers)
		return nil
	},
}

// keys command

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage manifest sealing keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the sealing key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		sealer, err := encryption.NewSealerFromConfig(cfg.Sealing)
		if err != nil {
			return fmt.Errorf("creating sealer: %w", err)
		}
		if sealer.IsConfigured() {
			return fmt.Errorf("sealing keys already exist at %s", cfg.Sealing.PublicKeyPath)
		}

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		again, err := readPassphrase("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if pass != again {
			return fmt.Errorf("passphrases do not match")
		}

		if err := sealer.Setup(pass); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Printf("Public key:  %s\n", cfg.Sealing.PublicKeyPath)
		fmt.Printf("Private key: %s (passphrase protected)\n", cfg.Sealing.PrivateKeyPath)
		return nil
	},
}

// inventory command

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Work with folder inventories",
}

var inventoryParseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse an inventory CSV and summarize it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		records, err := inventory.ParseFile(args[0])
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		s := inventory.Summarize(records)
		fmt.Printf("Folders:      %d\n", s.Folders)
		fmt.Printf("Files:        %d\n", s.Files)
		fmt.Printf("Total bytes:  %d\n", s.TotalBytes)
		if !s.NewestWrite.IsZero() {
			fmt.Printf("Newest write: %s\n", s.NewestWrite.Format(time.RFC3339))
		}
		return nil
	},
}

// capture command

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a timestamp manifest from a local tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _ := cmd.Flags().GetString("root")
		manifestPath, _ := cmd.Flags().GetString("manifest")
		seal, _ := cmd.Flags().GetBool("seal")

		a, err := newApp("CaptureManifest")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.CaptureManifest(root, manifestPath, seal)
		if err != nil {
			return fmt.Errorf("capturing manifest: %w", err)
		}

		fmt.Printf("Captured %d record(s) to %s\n", count, manifestPath)
		return nil
	},
}

// restore-times command

var restoreTimesCmd = &cobra.Command{
	Use:   "restore-times",
	Short: "Restore original timestamps from a manifest",
	Long: `Restore original timestamps from a manifest.

Reads a timestamp manifest, resolves each record against the migration
root, converts the FILETIME raw values, and writes the metadata back to
the migrated files. Records fail individually; the run continues.

Exit codes: 0 batch completed (even with failed or skipped records),
1 fatal error, 2 finished with failed records under --strict.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _ := cmd.Flags().GetString("root")
		manifestPath, _ := cmd.Flags().GetString("manifest")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		verbose, _ := cmd.Flags().GetBool("verbose")
		strict, _ := cmd.Flags().GetBool("strict")
		workers, _ := cmd.Flags().GetInt("workers")
		confirm, _ := cmd.Flags().GetBool("confirm")
		unseal, _ := cmd.Flags().GetBool("unseal")

		a, err := newApp("RestoreTimes")
		if err != nil {
			return err
		}
		defer a.Close()

		if a.StrictRestore() {
			strict = true
		}

		if unseal {
			pass, err := readPassphrase("Key passphrase: ")
			if err != nil {
				return err
			}
			if err := a.Unseal(pass); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := mig.RestoreOptions{
			ManifestPath: manifestPath,
			Root:         root,
			DryRun:       dryRun,
			Workers:      workers,
		}
		if confirm {
			// Prompts go through stdin; one worker keeps them sequential.
			opts.Workers = 1
			opts.Confirm = promptConfirm(bufio.NewReader(os.Stdin))
		}

		summary, err := a.RestoreTimestamps(ctx, opts)
		if err != nil {
			return err
		}

		if verbose {
			for _, o := range summary.Outcomes {
				fmt.Println(outcomeLine(o))
			}
		} else {
			for _, o := range summary.Failures() {
				fmt.Println(outcomeLine(o))
			}
		}
		fmt.Println(summary.String())

		return restoreExitErr(summary, strict)
	},
}

// outcomeLine formats one record outcome for the terminal: status,
// path, and the failure reason or detail.
func outcomeLine(o mig.Outcome) string {
	detail := o.Detail
	if o.Err != nil {
		detail = o.Err.Error()
	}
	return fmt.Sprintf("%-16s  %s  %s", o.Status, o.Record.RelativePath, detail)
}

// restoreExitErr maps a finished run to the command's exit behavior.
// A completed batch exits 0 even when records failed or were skipped;
// strict mode promotes failed records to a partial-failure exit.
// Cancellation is always fatal.
func restoreExitErr(summary *mig.Summary, strict bool) error {
	if summary.Canceled {
		return fmt.Errorf("run canceled before all records were processed")
	}
	if strict && summary.Counts.Failed > 0 {
		return errPartialFailure
	}
	return nil
}

// promptConfirm asks the operator before each apply. Anything but
// "y"/"yes" declines.
func promptConfirm(r *bufio.Reader) func(string) bool {
	return func(absPath string) bool {
		fmt.Printf("apply timestamps to %s? [y/N] ", absPath)
		line, err := r.ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

// transfer command

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Copy data with the external transfer tool",
}

func transferFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("recursive", "r", true, "Recurse into subdirectories")
	cmd.Flags().Bool("dry-run", false, "Show what would be copied without copying")
	cmd.Flags().String("overwrite", "", "Overwrite policy: never, always, or if-newer")
	cmd.Flags().String("include-after", "", "Only copy entries modified after this RFC3339 instant")
	cmd.Flags().Bool("delete-destination", false, "Delete destination entries absent from the source")
}

func transferOptions(cmd *cobra.Command) (mig.TransferOptions, error) {
	recursive, _ := cmd.Flags().GetBool("recursive")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	overwrite, _ := cmd.Flags().GetString("overwrite")
	includeAfter, _ := cmd.Flags().GetString("include-after")
	deleteDest, _ := cmd.Flags().GetBool("delete-destination")

	opts := mig.TransferOptions{
		Recursive:         recursive,
		DryRun:            dryRun,
		Overwrite:         overwrite,
		DeleteDestination: deleteDest,
	}
	if includeAfter != "" {
		t, err := time.Parse(time.RFC3339, includeAfter)
		if err != nil {
			return opts, fmt.Errorf("invalid --include-after: %w", err)
		}
		opts.IncludeAfter = t
	}
	return opts, nil
}

func runTransfer(cmd *cobra.Command, direction, src, dst string) error {
	opts, err := transferOptions(cmd)
	if err != nil {
		return err
	}

	operation := "TransferPush"
	if direction == "pull" {
		operation = "TransferPull"
	}
	a, err := newApp(operation)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := a.Transfer(ctx, direction, src, dst, opts)
	if err != nil {
		if result != nil && result.Output != "" {
			fmt.Print(result.Output)
		}
		return fmt.Errorf("transfer failed: %w", err)
	}

	if result.Output != "" {
		fmt.Print(result.Output)
	}
	fmt.Printf("Transfer finished in %s\n", result.Duration.Truncate(time.Millisecond))
	return nil
}

var transferPushCmd = &cobra.Command{
	Use:   "push SRC DST",
	Short: "Copy a local tree to a destination URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, "push", args[0], args[1])
	},
}

var transferPullCmd = &cobra.Command{
	Use:   "pull SRC DST",
	Short: "Copy a remote source URL to a local tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, "pull", args[0], args[1])
	},
}

// history command

var historyCmd = &cobra.Command{
	Use:   "history [RUN_ID]",
	Short: "View migration run history",
	Long: `View migration run history.

Without arguments, lists recent runs. With a run ID, lists every
recorded outcome of that run in manifest order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			outcomes, err := a.RunOutcomes(args[0])
			if err != nil {
				return err
			}
			for _, o := range outcomes {
				fmt.Printf("%4d  %-16s  %s  %s\n", o.Seq, o.Status, o.RelativePath, o.Detail)
			}
			return nil
		}

		runs, err := a.History(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, run := range runs {
			duration := ""
			if run.FinishedAt.Valid {
				d := run.FinishedAt.Time.Sub(run.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("%s  %-18s  %s  %-10s  total=%d failed=%d  %s\n",
				run.RunID,
				run.Operation,
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.Status,
				run.Total,
				run.Failed,
				duration,
			)
		}
		return nil
	},
}

// retry-manifest command

var retryManifestCmd = &cobra.Command{
	Use:   "retry-manifest RUN_ID",
	Short: "Write a manifest of a run's failed and skipped records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		a, err := newApp("RetryManifest")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.WriteRetryManifest(args[0], out)
		if err != nil {
			return err
		}
		if count == 0 {
			fmt.Println("Nothing to retry; no manifest written.")
			return nil
		}

		fmt.Printf("Wrote %d record(s) to %s\n", count, out)
		return nil
	},
}

// manifest command

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Seal and unseal timestamp manifests",
}

var manifestSealCmd = &cobra.Command{
	Use:   "seal FILE",
	Short: "Seal a plaintext manifest in place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SealManifest")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SealManifest(args[0]); err != nil {
			return err
		}
		fmt.Printf("Sealed %s\n", args[0])
		return nil
	},
}

var manifestUnsealCmd = &cobra.Command{
	Use:   "unseal FILE",
	Short: "Rewrite a sealed manifest as plaintext",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("UnsealManifest")
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := readPassphrase("Key passphrase: ")
		if err != nil {
			return err
		}
		if err := a.Unseal(pass); err != nil {
			return err
		}

		if err := a.UnsealManifest(args[0]); err != nil {
			return err
		}
		fmt.Printf("Unsealed %s\n", args[0])
		return nil
	},
}

// db command

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the run-history database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema to the latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		db, err := database.NewDatabaseFromConfig(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		sqldb, ok := db.(*database.SQLiteDatabase)
		if !ok {
			return fmt.Errorf("database type %s does not support migration", cfg.Database.Type)
		}
		if err := sqldb.MigrateUp(); err != nil {
			return err
		}

		fmt.Println("Database schema is up to date.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	keysCmd.AddCommand(keysInitCmd)

	inventoryCmd.AddCommand(inventoryParseCmd)
	inventoryParseCmd.Flags().Bool("json", false, "Print parsed records as JSON")

	captureCmd.Flags().String("root", "", "Tree to capture")
	captureCmd.Flags().String("manifest", "", "Manifest file to write")
	captureCmd.Flags().Bool("seal", false, "Seal the manifest with the public key")
	captureCmd.MarkFlagRequired("root")
	captureCmd.MarkFlagRequired("manifest")

	restoreTimesCmd.Flags().String("root", "", "Migration root the manifest paths resolve against")
	restoreTimesCmd.Flags().String("manifest", "", "Timestamp manifest to restore from")
	restoreTimesCmd.Flags().Bool("dry-run", false, "Report intended changes without touching any file")
	restoreTimesCmd.Flags().BoolP("verbose", "v", false, "Print every record outcome")
	restoreTimesCmd.Flags().Bool("strict", false, "Exit with code 2 when any record fails")
	restoreTimesCmd.Flags().Int("workers", 0, "Worker pool size (default from config)")
	restoreTimesCmd.Flags().Bool("confirm", false, "Ask before each apply")
	restoreTimesCmd.Flags().Bool("unseal", false, "Unlock sealing keys to read a sealed manifest")
	restoreTimesCmd.MarkFlagRequired("root")
	restoreTimesCmd.MarkFlagRequired("manifest")

	transferCmd.AddCommand(transferPushCmd)
	transferCmd.AddCommand(transferPullCmd)
	transferFlags(transferPushCmd)
	transferFlags(transferPullCmd)

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")

	retryManifestCmd.Flags().String("out", "", "Manifest file to write")
	retryManifestCmd.MarkFlagRequired("out")

	manifestCmd.AddCommand(manifestSealCmd)
	manifestCmd.AddCommand(manifestUnsealCmd)

	dbCmd.AddCommand(dbMigrateCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(restoreTimesCmd)
	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(retryManifestCmd)
	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(dbCmd)
}
