package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aimless-wiki/db/internal/assets"
	"github.com/aimless-wiki/db/internal/build"
	"github.com/aimless-wiki/db/internal/dump"
	"github.com/aimless-wiki/db/internal/staging"
)

var (
	buildLang       string
	buildPages      string
	buildLinks      string
	buildCategories string
	buildDB         string
	buildSnapshot   string
	buildProgress   bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Ingest the dump tables and serialize the category graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := buildLocations()
		if err != nil {
			return err
		}

		db, err := staging.Open(buildDB)
		if err != nil {
			return err
		}
		defer db.Close()

		tables := build.Tables{
			Pages: &dump.PageTable{Source: loc.Pages},
			Links: &dump.CategoryLinksTable{Source: loc.Links},
		}
		if loc.Categories != nil {
			tables.Categories = &dump.CategoryTable{Source: loc.Categories}
		}

		builder := &build.Builder{Staging: db, Log: logrus.StandardLogger()}
		g, err := builder.Build(tables)
		if err != nil {
			return err
		}

		if err := g.WriteSnapshot(buildSnapshot); err != nil {
			return err
		}

		articles, err := db.ArticleTotal()
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"nodes":    g.NodeCount(),
			"edges":    g.EdgeCount(),
			"articles": articles,
			"snapshot": buildSnapshot,
		}).Info("graph built")
		return nil
	},
}

func buildLocations() (assets.Locations, error) {
	if buildLang != "" {
		if buildPages != "" || buildLinks != "" {
			return assets.Locations{}, fmt.Errorf("--lang and local paths are mutually exclusive")
		}
		url := assets.LatestURL(buildLang, assets.TablePage)
		if modified, err := assets.LastModified(url); err == nil {
			logrus.WithFields(logrus.Fields{
				"lang":          buildLang,
				"last_modified": modified,
			}).Info("ingesting latest dump")
		}
		return assets.Latest(buildLang, buildProgress), nil
	}

	if buildPages == "" || buildLinks == "" {
		return assets.Locations{}, fmt.Errorf("either --lang or both --pages and --links are required")
	}
	return assets.Local(buildPages, buildLinks, buildCategories, buildProgress), nil
}

func init() {
	buildCmd.Flags().StringVar(&buildLang, "lang", "", "Language code, e.g. en; streams the latest remote dumps")
	buildCmd.Flags().StringVar(&buildPages, "pages", "", "Path to a local page table dump (.sql.gz)")
	buildCmd.Flags().StringVar(&buildLinks, "links", "", "Path to a local categorylinks dump (.sql.gz)")
	buildCmd.Flags().StringVar(&buildCategories, "categories", "", "Path to a local category table dump (.sql.gz)")
	buildCmd.Flags().StringVar(&buildDB, "db", "articles.db", "Path to the article staging database")
	buildCmd.Flags().StringVar(&buildSnapshot, "snapshot", "graph.bytes", "Path to write the graph snapshot")
	buildCmd.Flags().BoolVar(&buildProgress, "progress", true, "Show a byte-level progress bar per dump")
	rootCmd.AddCommand(buildCmd)
}
