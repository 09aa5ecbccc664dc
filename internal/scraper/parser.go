package scraper

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Erm2130/buu-api/internal/models"
)

// The weekday rows sit at fixed child positions inside the innermost grid
// table: rows 1 and 2 are the banner and the hour header, rows 3 through 11
// carry the seven weekdays plus spacer rows. The position range is a
// structural fact of the registration system's markup, not data.
const (
	gridFirstRow = 3
	gridLastRow  = 11
)

// ParseLegend extracts the course legend (#myTable): one row per course,
// code in the first cell, the English and Thai names stacked with <br> in
// the second. Rows with fewer than two cells (the header) and rows with an
// empty code are skipped. A code listed twice keeps its last row.
func ParseLegend(page []byte) (models.LegendMap, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("แปลง HTML ไม่สำเร็จ (failed to parse HTML): %w", err)
	}

	legend := make(models.LegendMap)
	tableRows(doc.Find("#myTable").First()).Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 2 {
			return
		}
		code := strings.TrimSpace(cells.Eq(0).Text())
		if code == "" {
			return
		}
		names := splitClean(textWithBreaks(cells.Eq(1), "\n"), "\n")
		entry := models.LegendEntry{Code: code}
		if len(names) > 0 {
			entry.NameEN = names[0]
		}
		if len(names) > 1 {
			entry.NameTH = names[1]
		}
		legend[code] = entry
	})
	return legend, nil
}

// ParseGrid extracts the weekly grid as raw rows: the day label from the
// first cell, then one token list per non-empty slot cell. Slot cells pack
// several values into one cell with <br> tags, so each cell is flattened to
// comma-separated tokens before splitting. Rows whose day label is empty
// are spacers and are dropped.
func ParseGrid(page []byte) ([]models.GridRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("แปลง HTML ไม่สำเร็จ (failed to parse HTML): %w", err)
	}

	rows := gridRows(doc)
	var out []models.GridRow
	for pos := gridFirstRow; pos <= gridLastRow; pos++ {
		row := rows.Eq(pos - 1)
		if row.Length() == 0 {
			continue
		}
		cells := row.ChildrenFiltered("td")
		if cells.Length() == 0 {
			continue
		}
		day := strings.TrimSpace(cells.Eq(0).Text())
		if day == "" {
			continue
		}
		grid := models.GridRow{Day: day}
		for i := 1; i < cells.Length(); i++ {
			text := textWithBreaks(cells.Eq(i), ",")
			text = strings.ReplaceAll(text, "\n", ",")
			if tokens := splitClean(text, ","); len(tokens) > 0 {
				grid.Columns = append(grid.Columns, tokens)
			}
		}
		out = append(out, grid)
	}
	return out, nil
}

// gridRows walks from the #page container down to the innermost weekday
// table by child position: third child table, second cell of its rows,
// third child table again, then the table nested one cell deeper. The
// markup below #page carries no ids or classes, so position is the only
// stable address, and a descendant selector would also match the nested
// slot tables.
func gridRows(doc *goquery.Document) *goquery.Selection {
	sel := doc.Find("#page").First()
	sel = nthChild(sel, "table", 3)
	sel = tableRows(sel)
	sel = nthChild(sel, "td", 2)
	sel = nthChild(sel, "table", 3)
	sel = tableRows(sel)
	sel = sel.ChildrenFiltered("td")
	sel = sel.ChildrenFiltered("table")
	return tableRows(sel)
}

// tableRows returns the direct rows of every table in sel, with or without
// an explicit tbody.
func tableRows(tables *goquery.Selection) *goquery.Selection {
	out := tables.Slice(0, 0)
	tables.Each(func(_ int, t *goquery.Selection) {
		rows := t.ChildrenFiltered("tbody").ChildrenFiltered("tr")
		if rows.Length() == 0 {
			rows = t.ChildrenFiltered("tr")
		}
		out = out.AddSelection(rows)
	})
	return out
}

// nthChild picks, for every node in parents, its n-th (1-based) child
// element with the given tag.
func nthChild(parents *goquery.Selection, tag string, n int) *goquery.Selection {
	out := parents.Slice(0, 0)
	parents.Each(func(_ int, p *goquery.Selection) {
		out = out.AddSelection(p.ChildrenFiltered(tag).Eq(n - 1))
	})
	return out
}

// textWithBreaks concatenates the text content of sel, emitting sep for
// each <br>. Plain Text() would glue the stacked values together.
func textWithBreaks(sel *goquery.Selection, sep string) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			b.WriteString(sep)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	return b.String()
}

// splitClean splits on sep, trims every piece, and drops the empty ones.
func splitClean(s, sep string) []string {
	var out []string
	for _, piece := range strings.Split(s, sep) {
		if piece = strings.TrimSpace(piece); piece != "" {
			out = append(out, piece)
		}
	}
	return out
}
