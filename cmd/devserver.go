package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/stylequiz/internal/devserver"
	"github.com/abhisek/stylequiz/internal/logging"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local learning platform for offline play",
	Long: "Serve the platform API from memory with a built-in question bank. " +
		"Accounts and results are lost when it stops.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		lc := cfg.Logging()
		lc.Output = os.Stderr
		log := logging.NewLogger(lc)

		f := cmd.Flags()
		addr, _ := f.GetString("addr")
		sc := devserver.DefaultConfig()
		sc.TestLength, _ = f.GetInt("test-length")
		sc.LegacyPayloads, _ = f.GetBool("legacy")
		if secret, _ := f.GetString("secret"); secret != "" {
			sc.Secret = secret
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           devserver.New(sc, devserver.WithLogger(log)).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- srv.ListenAndServe() }()
		fmt.Fprintf(cmd.OutOrStdout(), "Platform listening on http://%s (Ctrl+C to stop)\n", addr)
		log.Info("devserver started", "addr", addr, "test_length", sc.TestLength, "legacy", sc.LegacyPayloads)

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info("devserver stopped")
		return nil
	},
}

func init() {
	f := devserverCmd.Flags()
	f.String("addr", "localhost:8787", "Listen address")
	f.Int("test-length", devserver.DefaultConfig().TestLength, "Questions per adaptive test")
	f.Bool("legacy", false, "Serve options as JSON-encoded strings like older platform builds")
	f.String("secret", "", "Token signing secret")
}
