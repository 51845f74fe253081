// ABOUTME: Route command classifies a single question offline
// ABOUTME: Shows the routing decision and extracted parameters without any backend
package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/extract"
	"github.com/ecosense/aqroute/internal/geo"
	"github.com/ecosense/aqroute/internal/models"
	"github.com/ecosense/aqroute/internal/route"
	"github.com/ecosense/aqroute/internal/timeparse"
)

var (
	routeConfigPath string
	routeGeoPath    string
	routeJSON       bool
)

// NewRouteCmd creates the route command
func NewRouteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route [question]",
		Short: "Classify a question without calling any backend",
		Long: `Classify a question without calling any backend.

Runs the primary router and the parameter extractor over the question
and prints what the service would do with it. Useful for tuning
routing keywords and the location table.`,
		Args: cobra.ExactArgs(1),
		RunE: runRoute,
		Example: `  aqroute route "武汉市上周的空气质量周报"
  aqroute route --json "全省空气质量排名"`,
	}

	cmd.Flags().StringVar(&routeConfigPath, "routing", "routing.yaml", "Routing config file")
	cmd.Flags().StringVar(&routeGeoPath, "geo", "geo_mapping.json", "Location mapping table")
	cmd.Flags().BoolVar(&routeJSON, "json", false, "Emit machine-readable JSON")

	return cmd
}

// routeReport is the JSON shape emitted by --json
type routeReport struct {
	Question   string                      `json:"question"`
	Decision   models.RoutingDecision      `json:"decision"`
	Parameters *models.ExtractedParameters `json:"parameters,omitempty"`
	Complete   bool                        `json:"complete"`
}

func runRoute(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(args[0])
	if question == "" {
		return fmt.Errorf("question must not be empty")
	}

	cfg, err := config.NewStore(routeConfigPath)
	if err != nil {
		return fmt.Errorf("loading routing config: %w", err)
	}

	out := routeReport{
		Question: question,
		Decision: route.NewPrimaryRouter(cfg).Route(question),
	}

	if out.Decision.Target == models.TargetStructuredAPI {
		tables, err := geo.NewStore(routeGeoPath)
		if err != nil {
			return fmt.Errorf("loading location table: %w", err)
		}
		extractor := extract.New(cfg, geo.NewResolver(tables, cfg), timeparse.NewParser())
		params := extractor.Extract(question)
		out.Parameters = params
		out.Complete = params.Complete()
	}

	if routeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return printRoute(cmd, out)
}

func printRoute(cmd *cobra.Command, out routeReport) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Target:     %s\n", out.Decision.Target)
	fmt.Fprintf(w, "Confidence: %.2f\n", out.Decision.Confidence)
	fmt.Fprintf(w, "Stage:      %s\n", out.Decision.Stage)
	if verbose {
		for _, tr := range out.Decision.Trace {
			fmt.Fprintf(w, "  %-12s conf=%.2f %s\n", tr.Stage, tr.Confidence, tr.Detail)
		}
	}
	if out.Parameters == nil {
		return nil
	}

	p := out.Parameters
	fmt.Fprintf(w, "Report:     %s\n", p.ReportKind)
	for _, loc := range p.Locations {
		fmt.Fprintf(w, "Location:   %s (%s, %s, conf %d)\n", loc.Name, loc.Code, loc.Level, loc.Confidence)
	}
	for _, tr := range p.TimeRanges {
		fmt.Fprintf(w, "Time:       %s .. %s (precision %d)\n",
			tr.Start.Format("2006-01-02 15:04:05"), tr.End.Format("2006-01-02 15:04:05"), tr.Precision)
	}
	if p.ContrastTime != nil {
		fmt.Fprintf(w, "Contrast:   %s .. %s (%s)\n",
			p.ContrastTime.Start.Format("2006-01-02"), p.ContrastTime.End.Format("2006-01-02"), p.ContrastKind)
	}
	fmt.Fprintf(w, "TimeType:   %d\n", p.TimeType)
	fmt.Fprintf(w, "DataSource: %d\n", p.DataSource)
	fmt.Fprintf(w, "Complete:   %v\n", out.Complete)
	return nil
}
