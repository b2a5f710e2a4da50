package staging

import (
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id INTEGER NOT NULL,
	PRIMARY KEY (id)
);

CREATE TABLE IF NOT EXISTS article_edges (
	article_id INTEGER NOT NULL,
	category_id INTEGER NOT NULL,
	PRIMARY KEY (article_id, category_id)
);
`

// DB stages article ids and article->category edges on disk, so the
// graph build never has to hold the article set in memory.
type DB struct {
	conn *sql.DB
	Path string
}

// Open opens (or creates) the staging database and applies the schema.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening staging database")
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "applying %s", pragma)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "creating staging schema")
	}

	return &DB{conn: conn, Path: path}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// InsertArticles inserts a batch of article ids inside one transaction.
func (d *DB) InsertArticles(ids []int64) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return errors.Wrap(err, "begin article batch")
	}
	stmt, err := tx.Prepare("INSERT OR IGNORE INTO articles (id) VALUES (?)")
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare article insert")
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert article %d", id)
		}
	}
	return errors.Wrap(tx.Commit(), "commit article batch")
}

// InsertArticleEdges inserts a batch of (article_id, category_id) pairs
// inside one transaction.
func (d *DB) InsertArticleEdges(pairs [][2]int64) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return errors.Wrap(err, "begin edge batch")
	}
	stmt, err := tx.Prepare("INSERT OR IGNORE INTO article_edges (article_id, category_id) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare edge insert")
	}
	defer stmt.Close()

	for _, pair := range pairs {
		if _, err := stmt.Exec(pair[0], pair[1]); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert edge %d -> %d", pair[0], pair[1])
		}
	}
	return errors.Wrap(tx.Commit(), "commit edge batch")
}

// InsertSelfLinks adds the placeholder self row (id, id) for every
// category, mirroring the category's own entry in its link table. Page
// counts subtract it back out.
func (d *DB) InsertSelfLinks(categoryIDs []int64) error {
	pairs := make([][2]int64, len(categoryIDs))
	for i, id := range categoryIDs {
		pairs[i] = [2]int64{id, id}
	}
	return d.InsertArticleEdges(pairs)
}

// CreateIndices builds the lookup indices. Called once after loading,
// which is much faster than maintaining them during the bulk insert.
func (d *DB) CreateIndices() error {
	for _, stmt := range []string{
		"CREATE INDEX IF NOT EXISTS article_edges_article_index ON article_edges (article_id)",
		"CREATE INDEX IF NOT EXISTS article_edges_category_index ON article_edges (category_id)",
	} {
		if _, err := d.conn.Exec(stmt); err != nil {
			return errors.Wrap(err, "creating index")
		}
	}
	return nil
}

// Contains reports whether id was staged as an article.
func (d *DB) Contains(id int64) (bool, error) {
	row := d.conn.QueryRow("SELECT 1 FROM articles WHERE id = ?", id)
	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "lookup article %d", id)
	}
	return true, nil
}

// ArticleCount returns the number of articles linked into a category,
// excluding the category's own self link.
func (d *DB) ArticleCount(categoryID int64) (int, error) {
	row := d.conn.QueryRow(
		"SELECT COUNT(1) FROM article_edges WHERE category_id = ? AND article_id != ?",
		categoryID, categoryID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "article count for category %d", categoryID)
	}
	return count, nil
}

// ArticleTotal returns the number of staged articles.
func (d *DB) ArticleTotal() (int, error) {
	row := d.conn.QueryRow("SELECT COUNT(1) FROM articles")
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, errors.Wrap(err, "article total")
	}
	return count, nil
}

// EdgeTotal returns the number of staged article edges, self links included.
func (d *DB) EdgeTotal() (int, error) {
	row := d.conn.QueryRow("SELECT COUNT(1) FROM article_edges")
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, errors.Wrap(err, "edge total")
	}
	return count, nil
}
