package dump

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// The dump tables arrive as SQL INSERT statements with many tuple
// literals per line. Each table has a fixed-shape grammar applied with
// findall semantics; fragments that do not match are skipped silently,
// since dump files routinely contain noise between matches.
const (
	stringValue  = `'[^'\\]*(?:\\.[^'\\]*)*'`
	integerValue = `\d+`
	floatValue   = `\d+\.\d+`
	scalarValue  = `(?:` + stringValue + `|` + integerValue + `)`
)

var pagePattern = regexp.MustCompile(
	`\((` + integerValue + `),((?:14)|(?:0)),` +
		`(` + stringValue + `),0,` +
		`(?:` + integerValue + `,){1,2}` + floatValue + `,` +
		stringValue + `,` + stringValue + `,` +
		integerValue + `,` + integerValue + `,` +
		stringValue + `,(?:` + stringValue + `|NULL)\)`)

var categoryLinksPattern = regexp.MustCompile(
	`\((` + integerValue + `),(` + stringValue + `),` +
		`(?:` + scalarValue + `,){4}` +
		`'((?:page)|(?:subcat))'\)`)

var categoryPattern = regexp.MustCompile(
	`\(` + integerValue + `,(` + stringValue + `),` +
		`(` + integerValue + `),(` + integerValue + `),` + integerValue + `\)`)

// PageRecord is one row of the page table. Namespace 0 marks an article;
// namespace 14 a category. Titles are only kept for categories.
type PageRecord struct {
	PageID    int64
	Title     string
	IsArticle bool
}

// CategoryLinkRecord is one row of the categorylinks table: a raw link
// from page FromID into the category named ToName, before id resolution.
type CategoryLinkRecord struct {
	FromID    int64
	ToName    string
	IsArticle bool
}

// CategoryRecord is one row of the category table, carrying the
// authoritative aggregate counts for a category name.
type CategoryRecord struct {
	Name    string
	Pages   int
	Subcats int
}

// PageTable extracts PageRecords from a page-table dump.
type PageTable struct {
	Source LineSource
}

func (t *PageTable) Each(fn func(PageRecord) error) error {
	return eachLine(t.Source, func(line string) error {
		for _, hit := range pagePattern.FindAllStringSubmatch(line, -1) {
			id, err := strconv.ParseInt(hit[1], 10, 64)
			if err != nil {
				continue
			}
			rec := PageRecord{PageID: id, IsArticle: hit[2] == "0"}
			if !rec.IsArticle {
				title, err := unquote(hit[3])
				if err != nil {
					continue
				}
				rec.Title = title
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// CategoryLinksTable extracts CategoryLinkRecords from a categorylinks dump.
type CategoryLinksTable struct {
	Source LineSource
}

func (t *CategoryLinksTable) Each(fn func(CategoryLinkRecord) error) error {
	return eachLine(t.Source, func(line string) error {
		for _, hit := range categoryLinksPattern.FindAllStringSubmatch(line, -1) {
			from, err := strconv.ParseInt(hit[1], 10, 64)
			if err != nil {
				continue
			}
			to, err := unquote(hit[2])
			if err != nil {
				continue
			}
			rec := CategoryLinkRecord{
				FromID:    from,
				ToName:    to,
				IsArticle: hit[3] == "page",
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// CategoryTable extracts CategoryRecords from a category-table dump.
type CategoryTable struct {
	Source LineSource
}

func (t *CategoryTable) Each(fn func(CategoryRecord) error) error {
	return eachLine(t.Source, func(line string) error {
		for _, hit := range categoryPattern.FindAllStringSubmatch(line, -1) {
			name, err := unquote(hit[1])
			if err != nil {
				continue
			}
			pages, err := strconv.Atoi(hit[2])
			if err != nil {
				continue
			}
			subcats, err := strconv.Atoi(hit[3])
			if err != nil {
				continue
			}
			rec := CategoryRecord{Name: name, Pages: pages, Subcats: subcats}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func eachLine(source LineSource, fn func(line string) error) error {
	lr, err := source.Lines()
	if err != nil {
		return err
	}
	defer lr.Close()

	for {
		line, ok := lr.Next()
		if !ok {
			break
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return lr.Err()
}

// unquote decodes a single-quoted SQL string literal using the dump's
// backslash escaping. Escaped quotes, backslashes and newlines round-trip
// exactly; unrecognized escapes decode to the escaped character.
func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return "", errors.Errorf("not a quoted string: %q", s)
	}
	s = s[1 : len(s)-1]
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", errors.Errorf("dangling escape in %q", s)
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case '0':
			b.WriteByte(0)
		case 'Z':
			b.WriteByte(0x1a)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}
