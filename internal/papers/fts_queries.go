package papers

// Hand-written FTS5 query implementations. The MATCH operator and bm25()
// ranking are FTS5-specific syntax, so these queries are maintained here
// rather than alongside the key-value access patterns.
//
// IMPORTANT: If the 'items' or 'items_fts' table schemas change, the SQL
// in this file must be updated manually to match.

import (
	"context"
	"database/sql"
)

const searchPapersByFullText = `
SELECT
    i.payload
FROM
    items_fts
    JOIN items i ON i.pk = 'PAPER#' || items_fts.arxiv_id AND i.sk = 'DETAIL'
WHERE
    items_fts MATCH ?
ORDER BY
    bm25(items_fts),
    items_fts.arxiv_id
LIMIT
    ?
`

// SearchFullText finds papers whose title or abstract matches the FTS5
// query expression, best match first.
func (s *Store) SearchFullText(ctx context.Context, query string, limit int) ([]PaperItem, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	return s.queryPayloads(ctx, "full_text_search", searchPapersByFullText, query, limit)
}

// indexForSearch refreshes the full-text rows for the given detail items.
// Existing rows for the same paper are removed first since FTS5 tables have
// no usable conflict target.
func indexForSearch(ctx context.Context, tx *sql.Tx, items []Item) error {
	for _, item := range items {
		if item.Payload.ItemType != ItemTypePaperDetail {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM items_fts WHERE arxiv_id = ?", item.Payload.ArxivID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO items_fts (arxiv_id, title, abstract) VALUES (?, ?, ?)",
			item.Payload.ArxivID, item.Payload.Title, item.Payload.Abstract); err != nil {
			return err
		}
	}
	return nil
}
