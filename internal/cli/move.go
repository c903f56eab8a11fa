package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/routemgr/internal/engine"
	"github.com/danieljhkim/routemgr/internal/planner"
)

var moveDryRun bool

var moveCmd = &cobra.Command{
	Use:   "move <route>",
	Short: "Move a route to the other location",
	Long: `Move a route from the active location to the archive or back.

Activating a route archives every active route that binds a different
instance of one of its resource kinds. Resources still needed by the routes
that stay active are left in place.

Moves are not rolled back. If a directory move fails, the routes moved so far
stay where they are; run 'routemgr status' and 'routemgr history' to inspect.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMove(cmd, args[0], engine.Toggle, moveDryRun)
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate <route>",
	Short: "Move an archived route into the active location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMove(cmd, args[0], engine.ToActive, moveDryRun)
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <route>",
	Short: "Move an active route into the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMove(cmd, args[0], engine.ToArchive, moveDryRun)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <route>",
	Short: "Show the directory moves that 'move' would perform",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMove(cmd, args[0], engine.Toggle, true)
	},
}

type moveView struct {
	Route     string              `json:"route"`
	From      string              `json:"from"`
	To        string              `json:"to"`
	DryRun    bool                `json:"dry_run"`
	Evicted   []string            `json:"evicted"`
	Planned   []planner.Operation `json:"planned"`
	Applied   int                 `json:"applied"`
	Conflicts []planner.Conflict  `json:"conflicts,omitempty"`
	JournalID string              `json:"journal_id,omitempty"`
	Error     string              `json:"error,omitempty"`
	Status    *statusView         `json:"status,omitempty"`
}

func runMove(cmd *cobra.Command, name string, dir engine.Direction, dryRun bool) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	snapshot, err := a.engine.Discover(ctx)
	if err != nil {
		return err
	}

	result, moveErr := a.engine.Move(ctx, &engine.MoveRequest{
		Snapshot:  snapshot,
		Route:     name,
		Direction: dir,
		DryRun:    dryRun,
	})
	if result == nil {
		return moveErr
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		view := newMoveView(result, dryRun, moveErr)
		if moveErr == nil && result.Snapshot != nil {
			if after, err := a.engine.Discover(ctx); err == nil {
				sv := newStatusView(after)
				view.Status = &sv
			}
		}
		if err := outputJSON(out, view); err != nil {
			return err
		}
		return moveErr
	}

	printPlan(out, result.Plan)

	var me *engine.MoveError
	switch {
	case errors.As(moveErr, &me):
		fmt.Fprintln(out)
		PrintError(cmd.ErrOrStderr(), fmt.Sprintf("Move stopped after %d of %d directory moves", me.Completed, me.Planned))
		PrintWarning(out, "Moves already made were not rolled back; placement may be inconsistent")
		if result.JournalID != "" {
			PrintLabelValue(out, "Journal entry", result.JournalID)
		}
		return moveErr
	case moveErr != nil:
		return moveErr
	case dryRun:
		fmt.Fprintln(out)
		PrintInfo(out, "Dry run: nothing was moved")
		return nil
	}

	fmt.Fprintln(out)
	PrintSuccess(out, fmt.Sprintf("Moved %s to the %s location (%s)",
		result.Plan.Route, result.Plan.To, PrintCount(len(result.Applied), "directory", "directories")))

	after, err := a.engine.Discover(ctx)
	if err != nil {
		return fmt.Errorf("move finished but rediscovery failed: %w", err)
	}
	return renderStatus(out, after)
}

func newMoveView(result *engine.MoveResult, dryRun bool, moveErr error) moveView {
	plan := result.Plan
	v := moveView{
		Route:     plan.Route,
		From:      plan.From.String(),
		To:        plan.To.String(),
		DryRun:    dryRun,
		Evicted:   plan.Evicted,
		Planned:   plan.Operations,
		Applied:   len(result.Applied),
		Conflicts: plan.Conflicts,
		JournalID: result.JournalID,
	}
	if moveErr != nil {
		v.Error = moveErr.Error()
	}
	return v
}

func printPlan(w io.Writer, plan *planner.MovePlan) {
	PrintSection(w, fmt.Sprintf("Move %s: %s → %s", plan.Route, plan.From, plan.To))

	if len(plan.Evicted) > 0 {
		PrintWarning(w, "Incompatible active routes will be archived:")
		PrintList(w, plan.Evicted, 1)
		fmt.Fprintln(w)
	}

	rows := make([][]string, 0, len(plan.Operations))
	for i, op := range plan.Operations {
		rows = append(rows, []string{strconv.Itoa(i + 1), op.Reason, op.SourcePath, op.DestPath})
	}
	PrintTable(w, []string{"#", "STEP", "FROM", "TO"}, rows, nil)

	for _, c := range plan.Conflicts {
		PrintWarning(w, fmt.Sprintf("%s: %s", c.Path, c.Reason))
	}
}

func init() {
	moveCmd.Flags().BoolVar(&moveDryRun, "dry-run", false, "Show the plan without moving anything")
	activateCmd.Flags().BoolVar(&moveDryRun, "dry-run", false, "Show the plan without moving anything")
	archiveCmd.Flags().BoolVar(&moveDryRun, "dry-run", false, "Show the plan without moving anything")
}
