// Package assets maps a wiki language code to the dump locations for the
// three tables the pipeline consumes. The addressing scheme is a pure
// string-formatting convention over dumps.wikimedia.org.
package assets

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/aimless-wiki/db/internal/dump"
)

// Table names the dump tables the pipeline understands.
type Table string

const (
	TablePage          Table = "page"
	TableCategoryLinks Table = "categorylinks"
	TableCategory      Table = "category"
)

var headClient = &http.Client{Timeout: 30 * time.Second}

// LatestURL returns the download URL of the latest dump of a table for
// the given language code.
func LatestURL(lang string, table Table) string {
	return fmt.Sprintf("https://dumps.wikimedia.org/%swiki/latest/%swiki-latest-%s.sql.gz",
		lang, lang, table)
}

// Locations bundles the line sources for one wiki snapshot. Categories
// may be nil.
type Locations struct {
	Pages      dump.LineSource
	Links      dump.LineSource
	Categories dump.LineSource
}

// Latest points all three tables at the most recent remote dump for lang.
func Latest(lang string, progress bool) Locations {
	return Locations{
		Pages: &dump.RemoteSource{
			URL:         LatestURL(lang, TablePage),
			Progress:    progress,
			Description: "page table",
		},
		Links: &dump.RemoteSource{
			URL:         LatestURL(lang, TableCategoryLinks),
			Progress:    progress,
			Description: "category links",
		},
		Categories: &dump.RemoteSource{
			URL:         LatestURL(lang, TableCategory),
			Progress:    progress,
			Description: "categories",
		},
	}
}

// Local points the tables at dump files on disk. categoriesPath may be
// empty, leaving Locations.Categories nil.
func Local(pagesPath, linksPath, categoriesPath string, progress bool) Locations {
	loc := Locations{
		Pages: &dump.LocalSource{Path: pagesPath, Progress: progress, Description: "page table"},
		Links: &dump.LocalSource{Path: linksPath, Progress: progress, Description: "category links"},
	}
	if categoriesPath != "" {
		loc.Categories = &dump.LocalSource{Path: categoriesPath, Progress: progress, Description: "categories"}
	}
	return loc
}

// LastModified probes a dump URL for its Last-Modified header.
func LastModified(url string) (string, error) {
	resp, err := headClient.Head(url)
	if err != nil {
		return "", errors.Wrapf(err, "head %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("head %s: status %s", url, resp.Status)
	}
	return resp.Header.Get("Last-Modified"), nil
}
