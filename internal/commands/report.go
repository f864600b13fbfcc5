package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"evalgo.org/fibertrack/internal/storage"
)

var (
	statsFormat           string
	treeFormat            string
	reportLocation        uint
	reportExcludeArchived bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show network totals and utilization",
	Long: `Aggregate the inventory into counts per level, cable length, core
capacity and utilization ratios.

Examples:
  fibertrack stats
  fibertrack stats --location 3 --format json
  fibertrack stats --exclude-archived --format yaml`,
	RunE: runStats,
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the containment hierarchy",
	Long: `Print every site with its splitters, cables, tubes, cores,
distribution points and subscribers.

Examples:
  fibertrack tree --location 3
  fibertrack tree --format yaml`,
	RunE: runTree,
}

func init() {
	for _, c := range []*cobra.Command{statsCmd, treeCmd} {
		c.Flags().UintVar(&reportLocation, "location", 0, "limit the report to one location id")
		c.Flags().BoolVar(&reportExcludeArchived, "exclude-archived", false, "drop archived rows and their subtrees")
	}
	statsCmd.Flags().StringVar(&statsFormat, "format", "table", "output format (table, json, yaml)")
	treeCmd.Flags().StringVar(&treeFormat, "format", "tree", "output format (tree, json, yaml)")
}

func reportFilter() storage.ReportFilter {
	return storage.ReportFilter{
		LocationID:      reportLocation,
		ExcludeArchived: reportExcludeArchived,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	store, _, err := openStorage(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	rollup, err := store.Stats(cmd.Context(), reportFilter())
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	return writeStats(cmd.OutOrStdout(), statsFormat, rollup)
}

func runTree(cmd *cobra.Command, args []string) error {
	store, _, err := openStorage(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	tree, err := store.Hierarchy(cmd.Context(), reportFilter())
	if err != nil {
		return fmt.Errorf("failed to build hierarchy: %w", err)
	}

	return writeTree(cmd.OutOrStdout(), treeFormat, tree)
}

// writeStructured handles the json and yaml formats shared by both reports.
func writeStructured(w io.Writer, format string, data interface{}) (bool, error) {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return true, encoder.Encode(data)
	case "yaml":
		// Round-trip through JSON so yaml keys match the API field names
		raw, err := json.Marshal(data)
		if err != nil {
			return true, err
		}
		var doc interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return true, err
		}
		data = doc

		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return true, err
		}
		return true, encoder.Close()
	}
	return false, nil
}

func writeStats(w io.Writer, format string, r *storage.Rollup) error {
	if done, err := writeStructured(w, format, r); done {
		return err
	}
	if format != "table" {
		return fmt.Errorf("unknown format: %s (use table, json or yaml)", format)
	}

	fmt.Fprintln(w, "Network Statistics")
	fmt.Fprintln(w, "==================")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tCOUNT")
	fmt.Fprintf(tw, "locations\t%d\n", r.Locations)
	fmt.Fprintf(tw, "splitters\t%d\n", r.Splitters)
	fmt.Fprintf(tw, "cables\t%d\n", r.Cables)
	fmt.Fprintf(tw, "tubes\t%d\n", r.Tubes)
	fmt.Fprintf(tw, "cores\t%d\n", r.Cores)
	fmt.Fprintf(tw, "distribution points\t%d\n", r.DistributionPoints)
	fmt.Fprintf(tw, "subscribers\t%d\n", r.Subscribers)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nCable length:  %.1f m\n", r.CableLength)
	fmt.Fprintf(w, "Core capacity: %d\n", r.CoreCapacity)
	fmt.Fprintf(w, "\nUtilization:\n")
	fmt.Fprintf(w, "  Cores:               %d/%d (%.1f%%)\n", r.AssignedCores, r.Cores, r.CoreUtilization*100)
	fmt.Fprintf(w, "  Tubes:               %d/%d (%.1f%%)\n", r.UsedTubes, r.Tubes, r.TubeUtilization*100)
	fmt.Fprintf(w, "  Distribution points: %d/%d (%.1f%%)\n",
		r.DistributionPointsWithSubscriber, r.DistributionPoints, r.DistributionPointUtilization*100)

	if r.Orphans > 0 {
		fmt.Fprintf(w, "\n⚠️  %d orphaned rows\n", r.Orphans)
	}
	return nil
}

func writeTree(w io.Writer, format string, h *storage.Hierarchy) error {
	if done, err := writeStructured(w, format, h); done {
		return err
	}
	if format != "tree" {
		return fmt.Errorf("unknown format: %s (use tree, json or yaml)", format)
	}

	if len(h.Locations) == 0 {
		fmt.Fprintln(w, "No locations found")
		return nil
	}

	p := &treePrinter{w: w}
	for _, loc := range h.Locations {
		p.location(loc)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d locations, %d cables, %d/%d cores assigned, %d subscribers\n",
		h.Summary.Locations, h.Summary.Cables, h.Summary.AssignedCores, h.Summary.Cores, h.Summary.Subscribers)
	return nil
}

type treePrinter struct {
	w io.Writer
}

func (p *treePrinter) line(depth int, last bool, format string, args ...interface{}) {
	branch := "├─ "
	if last {
		branch = "└─ "
	}
	fmt.Fprintf(p.w, "%s%s%s\n", strings.Repeat("   ", depth), branch, fmt.Sprintf(format, args...))
}

func (p *treePrinter) location(n *storage.LocationNode) {
	fmt.Fprintf(p.w, "%s (#%d)\n", n.Location.Name, n.Location.ID)

	extra := len(n.UnlinkedDistributionPoints) + len(n.UnlinkedSubscribers)
	for i, sp := range n.Splitters {
		p.line(0, i == len(n.Splitters)-1 && extra == 0, "splitter %s %s [%s]",
			sp.Splitter.Name, sp.Splitter.SplitterRatio, sp.Splitter.Status)
		for j, cb := range sp.Cables {
			p.line(1, j == len(sp.Cables)-1, "cable %s %s, %d cores [%s]",
				cb.Cable.Name, cb.Cable.CableType, cb.Cable.TotalCoreCount, cb.Cable.Status)
			for k, tb := range cb.Tubes {
				p.line(2, k == len(cb.Tubes)-1, "tube %s", tb.Tube.Color)
				for m, co := range tb.Cores {
					label := "core " + co.Core.Color
					if co.DistributionPoint != nil {
						label += " → " + p.distributionPoint(co.DistributionPoint)
					}
					p.line(3, m == len(tb.Cores)-1, "%s", label)
				}
			}
		}
	}

	for i, dp := range n.UnlinkedDistributionPoints {
		p.line(0, i == extra-1, "unlinked %s", p.distributionPoint(dp))
	}
	for i, sub := range n.UnlinkedSubscribers {
		p.line(0, len(n.UnlinkedDistributionPoints)+i == extra-1, "unlinked subscriber %s", sub.Name)
	}
}

func (p *treePrinter) distributionPoint(b *storage.DistributionPointBranch) string {
	label := "dp " + b.DistributionPoint.Name
	if b.Subscriber != nil {
		label += " → subscriber " + b.Subscriber.Name
	}
	return label
}
