package papers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeDropsStopwordsAndShortTokens(t *testing.T) {
	tokens := Tokenize("We propose a novel graph neural network for the QA task")
	assert.Equal(t, []string{"novel", "graph", "neural", "network", "task"}, tokens)
}

func TestTokenizeLowercasesAndSplitsOnNonAlpha(t *testing.T) {
	tokens := Tokenize("Self-Attention improves BERT-style models (significantly)!")
	assert.Equal(t, []string{"self", "attention", "improves", "bert", "style", "models", "significantly"}, tokens)
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("a an the 123 !!"))
}

func TestTopKeywordsOrdersByFrequency(t *testing.T) {
	abstract := "transformer transformer transformer attention attention encoder"
	assert.Equal(t, []string{"transformer", "attention", "encoder"}, TopKeywords(abstract, 10))
}

func TestTopKeywordsTiesKeepFirstOccurrence(t *testing.T) {
	abstract := "alpha beta gamma alpha beta gamma"
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, TopKeywords(abstract, 10))
}

func TestTopKeywordsCapsAtK(t *testing.T) {
	abstract := "one two three four five six seven eight nine ten eleven twelve"
	kws := TopKeywords(abstract, 10)
	assert.Len(t, kws, 10)
	assert.NotContains(t, kws, "eleven")
	assert.NotContains(t, kws, "twelve")
}

func TestTopKeywordsReturnsDistinctWords(t *testing.T) {
	kws := TopKeywords("neural neural neural networks networks", 10)
	assert.Equal(t, []string{"neural", "networks"}, kws)
}
