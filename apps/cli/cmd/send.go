package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/config"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/pipeline"
	"github.com/abdul-hamid-achik/hitdesk/packages/db"
	"github.com/abdul-hamid-achik/hitdesk/packages/http"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	sendSource    requestSource
	sendEnvFile   string
	sendQuery     string
	sendWatch     bool
	sendNoHistory bool
	sendFail      bool
	sendTimeout   string
	sendInsecure  bool
)

var sendCmd = &cobra.Command{
	Use:   "send [request-file]",
	Short: "Validate, resolve and send a request",
	Long: `Send a request from a .json or .yaml request file, or a request saved in
a collection. Variables resolve against the stored environment, overlaid
with --env-file when given. Each response is recorded in history.

Examples:
  hitdesk send users.json
  hitdesk send users.yaml --env-file .env.local
  hitdesk send -c "My API" -r "List users"
  hitdesk send users.json --query data.0.id
  hitdesk send users.json --watch`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: sendCommand,
}

func init() {
	sendSource.addFlags(sendCmd)
	sendCmd.Flags().StringVar(&sendEnvFile, "env-file", getEnvString("HITDESK_ENV_FILE", ""), "Path to .env file overlaid on stored variables (env: HITDESK_ENV_FILE)")
	sendCmd.Flags().StringVarP(&sendQuery, "query", "q", "", "Print only the value at this JSON path of the response body")
	sendCmd.Flags().BoolVarP(&sendWatch, "watch", "w", false, "Watch the request file and send again on change")
	sendCmd.Flags().BoolVar(&sendNoHistory, "no-history", false, "Do not record the request in history")
	sendCmd.Flags().BoolVar(&sendFail, "fail", false, "Exit with failure on a 4xx or 5xx status")
	sendCmd.Flags().StringVar(&sendTimeout, "timeout", "", "Request timeout (e.g., 30s, 1m), overrides config")
	sendCmd.Flags().BoolVarP(&sendInsecure, "insecure", "k", false, "Disable SSL certificate validation")
}

func sendCommand(cmd *cobra.Command, args []string) error {
	if sendTimeout != "" {
		timeout, err := time.ParseDuration(sendTimeout)
		if err != nil {
			return usageError(fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", sendTimeout, err))
		}
		cfg.Timeout = int(timeout.Milliseconds())
	}
	if sendInsecure {
		cfg.ValidateSSL = config.BoolPtr(false)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	client := newClient()

	sendOnce := func() error {
		return sendRequest(ctx, cmd, store, client, args)
	}

	err = sendOnce()
	if !sendWatch {
		return err
	}
	if err != nil {
		printError(err)
	}

	if len(args) != 1 {
		return usageError(fmt.Errorf("--watch needs a request file"))
	}
	return watchFile(ctx, cmd, args[0], sendOnce)
}

func sendRequest(ctx context.Context, cmd *cobra.Command, store *db.Store, client *http.Client, args []string) error {
	tmpl, _, _, err := sendSource.load(args)
	if err != nil {
		return err
	}

	environment, err := loadEnvironment(store, sendEnvFile)
	if err != nil {
		return err
	}

	p := pipeline.New(pipeline.WithWarnFunc(warnTo(cmd)))
	prepared, err := p.Prepare(&pipeline.AppState{Request: tmpl, Env: environment, Policy: policy()})
	if err != nil {
		return err
	}

	resp, err := client.DoContext(ctx, prepared.Request)
	if err != nil {
		return err
	}

	if !sendNoHistory {
		entry := db.NewHistoryEntry(prepared.Request.NormalizedMethod(), http.BuildURL(prepared.Request), resp.Status, resp.Time, time.Now())
		if err := store.AddHistory(entry); err != nil {
			warnTo(cmd)("failed to record history: %v", err)
		}
	}

	if sendQuery != "" {
		result := gjson.GetBytes(resp.Raw, sendQuery)
		if !result.Exists() {
			return fmt.Errorf("no value at %q in response body", sendQuery)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.String())
	} else {
		formatter, err := newFormatter(cmd)
		if err != nil {
			return err
		}
		if err := formatter.FormatResponse(prepared.Request, resp); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}

	if sendFail && resp.Status >= 400 {
		return fmt.Errorf("request returned %d %s", resp.Status, resp.StatusText)
	}
	return nil
}

// watchFile calls run after each burst of writes to path until ctx ends.
func watchFile(ctx context.Context, cmd *cobra.Command, path string, run func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files on save, so watch the directory
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target, _ := filepath.Abs(path)

	fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	// Debounce timer for rapid file changes
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			changed, _ := filepath.Abs(event.Name)
			if changed != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}

			// Debounce: reset timer on each event
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.ErrOrStderr(), "\nFile changed: %s\nSending again...\n\n", event.Name)
				if err := run(); err != nil {
					printError(err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(fmt.Errorf("watcher error: %w", err))
		}
	}
}
