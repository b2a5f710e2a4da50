package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aimless-wiki/db/internal/export"
	"github.com/aimless-wiki/db/internal/graph"
)

var (
	exportSnapshot string
	exportHost     string
	exportUsername string
	exportPassword string
	exportTimeout  time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Replace the document store contents with the pruned graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := graph.ReadSnapshot(exportSnapshot)
		if err != nil {
			return err
		}

		username := fallbackEnv(exportUsername, "MONGODB_USERNAME")
		password := fallbackEnv(exportPassword, "MONGODB_PASSWORD")
		if username == "" || password == "" {
			return fmt.Errorf("document store credentials missing: set --username/--password or MONGODB_USERNAME/MONGODB_PASSWORD")
		}

		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		client, err := export.Connect(ctx, export.URI(username, password, exportHost))
		if err != nil {
			return err
		}
		defer client.Close(ctx)

		written, err := client.ReplaceAll(ctx, g.Documents())
		if err != nil {
			return err
		}
		logrus.WithField("documents", written).Info("export complete")
		return nil
	},
}

func fallbackEnv(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

func init() {
	exportCmd.Flags().StringVar(&exportSnapshot, "snapshot", "graph.bytes", "Path to the graph snapshot")
	exportCmd.Flags().StringVar(&exportHost, "host", "categories.lqtdyxo.mongodb.net", "Document store cluster host")
	exportCmd.Flags().StringVar(&exportUsername, "username", "", "Document store username (or MONGODB_USERNAME)")
	exportCmd.Flags().StringVar(&exportPassword, "password", "", "Document store password (or MONGODB_PASSWORD)")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 5*time.Minute, "Overall export deadline")
	rootCmd.AddCommand(exportCmd)
}
