package papers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePaper() Paper {
	return Paper{
		ArxivID:    "2101.00001",
		Title:      "Attention Mechanisms in Graph Networks",
		Authors:    []string{"Ada Lovelace", "Alan Turing"},
		Abstract:   "attention attention graph networks graph attention",
		Categories: []string{"cs.LG", "cs.AI"},
		Published:  "2021-01-05T10:00:00Z",
	}
}

func TestBuildItemsDetailRow(t *testing.T) {
	items := BuildItems(samplePaper())
	require.NotEmpty(t, items)

	detail := items[0]
	assert.Equal(t, "PAPER#2101.00001", detail.PK)
	assert.Equal(t, "DETAIL", detail.SK)
	assert.Equal(t, "PAPER#2101.00001", detail.GSI3PK)
	assert.Equal(t, "DETAIL", detail.GSI3SK)
	assert.Equal(t, ItemTypePaperDetail, detail.Payload.ItemType)
	assert.Equal(t, "attention attention graph networks graph attention", detail.Payload.Abstract)
	assert.Equal(t, []string{"attention", "graph", "networks"}, detail.Payload.Keywords)
}

func TestBuildItemsExpandsAllDimensions(t *testing.T) {
	items := BuildItems(samplePaper())

	// 1 detail + 2 categories + 2 authors + 3 keywords
	require.Len(t, items, 8)

	counts := map[string]int{}
	for _, item := range items {
		counts[item.Payload.ItemType]++
	}
	assert.Equal(t, 1, counts[ItemTypePaperDetail])
	assert.Equal(t, 2, counts[ItemTypeCategory])
	assert.Equal(t, 2, counts[ItemTypeAuthor])
	assert.Equal(t, 3, counts[ItemTypeKeyword])
}

func TestBuildItemsCategoryKeys(t *testing.T) {
	items := BuildItems(samplePaper())

	var cat *Item
	for i := range items {
		if items[i].PK == "CATEGORY#cs.LG" {
			cat = &items[i]
			break
		}
	}
	require.NotNil(t, cat)
	assert.Equal(t, "2021-01-05#2101.00001", cat.SK)
	assert.Empty(t, cat.GSI1PK)
	assert.Equal(t, ItemTypeCategory, cat.Payload.ItemType)
}

func TestBuildItemsAuthorKeys(t *testing.T) {
	items := BuildItems(samplePaper())

	var author *Item
	for i := range items {
		if items[i].PK == "AUTHORITEM#Ada Lovelace" {
			author = &items[i]
			break
		}
	}
	require.NotNil(t, author)
	assert.Equal(t, "AUTHOR#Ada Lovelace", author.GSI1PK)
	assert.Equal(t, "2021-01-05#2101.00001", author.GSI1SK)
	// Author rows carry only the lookup projection
	assert.Empty(t, author.Payload.Abstract)
	assert.Empty(t, author.Payload.Authors)
	assert.Equal(t, "Attention Mechanisms in Graph Networks", author.Payload.Title)
}

func TestBuildItemsKeywordKeys(t *testing.T) {
	items := BuildItems(samplePaper())

	var kw *Item
	for i := range items {
		if items[i].PK == "KEYWORDITEM#attention" {
			kw = &items[i]
			break
		}
	}
	require.NotNil(t, kw)
	assert.Equal(t, "KW#attention", kw.GSI2PK)
	assert.Equal(t, "2021-01-05#2101.00001", kw.GSI2SK)
	assert.Equal(t, ItemTypeKeyword, kw.Payload.ItemType)
}

func TestBuildItemsMissingPublishedDate(t *testing.T) {
	p := samplePaper()
	p.Published = ""
	items := BuildItems(p)

	for _, item := range items {
		if item.Payload.ItemType == ItemTypeCategory {
			assert.Equal(t, "0000-00-00#2101.00001", item.SK)
		}
	}
}
