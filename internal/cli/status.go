package cli

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/routemgr/internal/route"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where every route sits",
	Long: `Discover the placement of every configured route and print the active and
archived routes. Archived routes are marked with their compatibility with the
active set: full (can join without evicting anything), partial (would evict
some active routes), none (would evict all of them) or unknown (nothing is active).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		snapshot, err := a.engine.Discover(cmd.Context())
		if err != nil {
			return err
		}

		return renderStatus(cmd.OutOrStdout(), snapshot)
	},
}

type routeView struct {
	Name          string           `json:"name"`
	Location      string           `json:"location"`
	Compatibility string           `json:"compatibility"`
	Resources     []route.Resource `json:"resources"`
}

type statusView struct {
	Active   []routeView `json:"active"`
	Archived []routeView `json:"archived"`
}

func newRouteView(p *route.PlacedRoute) routeView {
	return routeView{
		Name:          p.Name,
		Location:      p.Location.String(),
		Compatibility: p.Compatibility.String(),
		Resources:     p.Resources,
	}
}

func newStatusView(s *route.Snapshot) statusView {
	v := statusView{
		Active:   make([]routeView, 0, len(s.Active)),
		Archived: make([]routeView, 0, len(s.Archived)),
	}
	for _, p := range s.Active {
		v.Active = append(v.Active, newRouteView(p))
	}
	for _, p := range s.Archived {
		v.Archived = append(v.Archived, newRouteView(p))
	}
	return v
}

func renderStatus(w io.Writer, s *route.Snapshot) error {
	if jsonOutput {
		return outputJSON(w, newStatusView(s))
	}

	PrintSection(w, "Active routes ("+PrintCount(len(s.Active), "route", "routes")+")")
	if len(s.Active) == 0 {
		PrintEmptyState(w, "No active routes")
	} else {
		printRouteTable(w, s.Active)
	}

	PrintSection(w, "Archived routes ("+PrintCount(len(s.Archived), "route", "routes")+")")
	if len(s.Archived) == 0 {
		PrintEmptyState(w, "No archived routes")
	} else {
		printRouteTable(w, s.Archived)
	}
	return nil
}

func printRouteTable(w io.Writer, routes []*route.PlacedRoute) {
	rows := make([][]string, 0, len(routes))
	for _, p := range routes {
		rows = append(rows, []string{p.Name, p.Compatibility.String(), formatResources(p.Resources)})
	}
	PrintTable(w, []string{"ROUTE", "COMPATIBILITY", "RESOURCES"}, rows, func(row, col int) *color.Color {
		if col == 1 {
			return compatibilityColor(routes[row].Compatibility)
		}
		return nil
	})
}

func formatResources(resources []route.Resource) string {
	parts := make([]string, 0, len(resources))
	for _, res := range resources {
		parts = append(parts, res.Kind+"="+res.Instance)
	}
	return strings.Join(parts, ", ")
}
