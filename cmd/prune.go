package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aimless-wiki/db/internal/graph"
)

var (
	pruneSnapshot      string
	pruneOut           string
	prunePercentile    float64
	pruneExclude       string
	pruneRoot          string
	pruneDepth         int
	pruneDropSelfLoops bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Shrink a built graph to its interesting, connected core",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := graph.ReadSnapshot(pruneSnapshot)
		if err != nil {
			return err
		}
		g.DropSelfLoops = pruneDropSelfLoops

		threshold, err := g.PageCountPercentile(prunePercentile)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"percentile": prunePercentile,
			"threshold":  threshold,
		}).Info("page count cutoff")

		excluded, err := excludedIDs(pruneExclude, g)
		if err != nil {
			return err
		}

		removed := g.RemoveByCondition(func(id int64, attrs *graph.Attributes) bool {
			if _, ok := excluded[id]; ok {
				return true
			}
			return attrs == nil || float64(attrs.PageCount) < threshold
		}, false)
		logrus.WithField("removed", removed).Info("threshold pass complete")

		if err := g.KeepLargestComponent(); err != nil {
			return err
		}

		if pruneRoot != "" {
			rootID, ok := g.IDForName(pruneRoot)
			if !ok {
				return fmt.Errorf("root category not in graph: %s", pruneRoot)
			}
			if err := g.RemovePastDepth(rootID, pruneDepth); err != nil {
				return err
			}
		}

		g.RenameNodes(func(name string) string {
			return strings.ReplaceAll(name, "_", " ")
		})

		out := pruneOut
		if out == "" {
			out = pruneSnapshot
		}
		if err := g.WriteSnapshot(out); err != nil {
			return err
		}

		printSummary(g.Summarize(10))
		return nil
	},
}

// excludedIDs resolves the exclusion file against the graph's category
// names. Blank lines and #-comments are skipped; names the graph does
// not know are skipped too.
func excludedIDs(path string, g *graph.Graph) (map[int64]struct{}, error) {
	excluded := make(map[int64]struct{})
	if path == "" {
		return excluded, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for _, name := range parseExclusions(f) {
		id, ok := g.IDForName(name)
		if !ok {
			logrus.WithField("name", name).Warn("excluded category not in graph")
			continue
		}
		excluded[id] = struct{}{}
	}
	return excluded, nil
}

func parseExclusions(r io.Reader) []string {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names
}

func init() {
	pruneCmd.Flags().StringVar(&pruneSnapshot, "snapshot", "graph.bytes", "Path to the graph snapshot to prune")
	pruneCmd.Flags().StringVar(&pruneOut, "out", "", "Path to write the pruned snapshot (default: overwrite input)")
	pruneCmd.Flags().Float64Var(&prunePercentile, "percentile", 75, "Page count percentile cutoff")
	pruneCmd.Flags().StringVar(&pruneExclude, "exclude", "", "File of category names to drop, one per line")
	pruneCmd.Flags().StringVar(&pruneRoot, "root", "", "Trim to categories reachable from this category name")
	pruneCmd.Flags().IntVar(&pruneDepth, "depth", 6, "Maximum hops from --root to retain")
	pruneCmd.Flags().BoolVar(&pruneDropSelfLoops, "drop-self-loops", false, "Filter self-loops created by reconstructive removal")
	rootCmd.AddCommand(pruneCmd)
}
