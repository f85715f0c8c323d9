package papers

import "fmt"

// Item type discriminators stored alongside every row.
const (
	ItemTypePaperDetail = "PAPER_DETAIL"
	ItemTypeCategory    = "CATEGORY_ITEM"
	ItemTypeAuthor      = "AUTHOR_ITEM"
	ItemTypeKeyword     = "KEYWORD_ITEM"
)

// topKeywordCount is how many keywords are extracted per abstract.
const topKeywordCount = 10

// Paper is one record of the source JSON corpus.
type Paper struct {
	ArxivID    string   `json:"arxiv_id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Abstract   string   `json:"abstract"`
	Categories []string `json:"categories"`
	Published  string   `json:"published"`
}

// PaperItem is the denormalized payload stored with every item row.
// Lookup items (author, keyword) omit the heavyweight fields.
type PaperItem struct {
	ArxivID    string   `json:"arxiv_id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors,omitempty"`
	Abstract   string   `json:"abstract,omitempty"`
	Categories []string `json:"categories"`
	Keywords   []string `json:"keywords,omitempty"`
	Published  string   `json:"published"`
	ItemType   string   `json:"item_type"`
}

// Item is one row of the single-table layout. The base key is (PK, SK);
// the secondary key pairs are populated only on rows the matching index
// should cover.
type Item struct {
	PK      string
	SK      string
	GSI1PK  string
	GSI1SK  string
	GSI2PK  string
	GSI2SK  string
	GSI3PK  string
	GSI3SK  string
	Payload PaperItem
}

// publishedDate trims an ISO timestamp to its date component. Papers
// without a published timestamp sort before everything else.
func publishedDate(publishedISO string) string {
	if len(publishedISO) >= 10 {
		return publishedISO[:10]
	}
	return "0000-00-00"
}

// BuildItems expands one paper into its denormalized item rows: a detail
// row, one row per category, one per author, and one per distinct keyword.
func BuildItems(p Paper) []Item {
	date := publishedDate(p.Published)
	keywords := TopKeywords(p.Abstract, topKeywordCount)
	dateAndID := fmt.Sprintf("%s#%s", date, p.ArxivID)

	items := make([]Item, 0, 1+len(p.Categories)+len(p.Authors)+len(keywords))

	items = append(items, Item{
		PK:     fmt.Sprintf("PAPER#%s", p.ArxivID),
		SK:     "DETAIL",
		GSI3PK: fmt.Sprintf("PAPER#%s", p.ArxivID),
		GSI3SK: "DETAIL",
		Payload: PaperItem{
			ArxivID:    p.ArxivID,
			Title:      p.Title,
			Authors:    p.Authors,
			Abstract:   p.Abstract,
			Categories: p.Categories,
			Keywords:   keywords,
			Published:  p.Published,
			ItemType:   ItemTypePaperDetail,
		},
	})

	for _, cat := range p.Categories {
		items = append(items, Item{
			PK: fmt.Sprintf("CATEGORY#%s", cat),
			SK: dateAndID,
			Payload: PaperItem{
				ArxivID:    p.ArxivID,
				Title:      p.Title,
				Authors:    p.Authors,
				Abstract:   p.Abstract,
				Categories: p.Categories,
				Keywords:   keywords,
				Published:  p.Published,
				ItemType:   ItemTypeCategory,
			},
		})
	}

	for _, author := range p.Authors {
		items = append(items, Item{
			PK:     fmt.Sprintf("AUTHORITEM#%s", author),
			SK:     dateAndID,
			GSI1PK: fmt.Sprintf("AUTHOR#%s", author),
			GSI1SK: dateAndID,
			Payload: PaperItem{
				ArxivID:    p.ArxivID,
				Title:      p.Title,
				Categories: p.Categories,
				Published:  p.Published,
				ItemType:   ItemTypeAuthor,
			},
		})
	}

	for _, kw := range keywords {
		items = append(items, Item{
			PK:     fmt.Sprintf("KEYWORDITEM#%s", kw),
			SK:     dateAndID,
			GSI2PK: fmt.Sprintf("KW#%s", kw),
			GSI2SK: dateAndID,
			Payload: PaperItem{
				ArxivID:    p.ArxivID,
				Title:      p.Title,
				Categories: p.Categories,
				Published:  p.Published,
				ItemType:   ItemTypeKeyword,
			},
		})
	}

	return items
}
