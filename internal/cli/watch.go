package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/routemgr/internal/route"
	"github.com/danieljhkim/routemgr/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reprint status whenever either location changes",
	Long: `Watch the active and archive roots and their routes folders, rediscovering
placement and reprinting status after each burst of changes. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		refresh := func(ctx context.Context) error {
			snapshot, err := a.engine.Discover(ctx)
			if err != nil {
				PrintError(cmd.ErrOrStderr(), err.Error())
				return err
			}
			return renderStatus(out, snapshot)
		}

		// an invalid state is reported, not fatal: the user may be fixing it
		_ = refresh(ctx)

		res := a.engine.Resolver()
		dirs := []string{
			res.Root(route.Active),
			res.Root(route.Archive),
			res.RoutesRoot(route.Active),
			res.RoutesRoot(route.Archive),
		}
		var watched []string
		for _, dir := range dirs {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				watched = append(watched, dir)
			}
		}

		PrintInfo(cmd.ErrOrStderr(), "Watching for changes (Ctrl-C to stop)")
		return watch.New(watched, watchDebounce, a.logger).Run(ctx, refresh)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before rediscovering")
}
