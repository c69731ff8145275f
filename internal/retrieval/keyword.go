package retrieval

import (
	"context"
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/types"
	"github.com/yanyiwu/gojieba"
	"gorm.io/gorm"
)

// KeywordIndex performs lexical search over a collection's chunks.
type KeywordIndex interface {
	Search(ctx context.Context, collectionID string, query string, topK int) ([]types.ScoredChunk, error)
}

var wordRe = regexp.MustCompile(`\b\w+\b`)

// Tokenizer splits text into terms. The default falls back to an ASCII word regex
// (RE2's \w and \b match ASCII only); SegmenterTokenizer prefers gojieba for CJK text, matching the teacher's choice
// of a Chinese-aware segmenter over a naive whitespace split.
type Tokenizer interface {
	Tokenize(text string) []string
}

type regexTokenizer struct{}

func (regexTokenizer) Tokenize(text string) []string {
	matches := wordRe.FindAllString(strings.ToLower(text), -1)
	return matches
}

// SegmenterTokenizer wraps gojieba, falling back to the regex tokenizer for text that
// looks purely ASCII (gojieba adds no value there and its process-wide dictionary load
// is unnecessary overhead for non-CJK corpora).
type SegmenterTokenizer struct {
	seg     *gojieba.Jieba
	regex   regexTokenizer
	once    sync.Once
}

func NewSegmenterTokenizer() *SegmenterTokenizer {
	return &SegmenterTokenizer{}
}

func (t *SegmenterTokenizer) ensure() {
	t.once.Do(func() {
		t.seg = gojieba.NewJieba()
	})
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

func (t *SegmenterTokenizer) Tokenize(text string) []string {
	if isASCII(text) {
		return t.regex.Tokenize(text)
	}
	t.ensure()
	words := t.seg.CutForSearch(text, true)
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		out = append(out, w)
	}
	return out
}

// tfidfIndex is one collection's cached term-frequency/inverse-document-frequency matrix.
type tfidfIndex struct {
	version    int64
	docIDs     []string
	docs       []types.Chunk
	termIDF    map[string]float64
	docVectors []map[string]float64 // term -> tf-idf weight, per document
	docNorms   []float64
}

// TFIDFKeywordIndex is the built-in KeywordIndex: a lazily-built, per-collection TF-IDF
// matrix rebuilt whenever the collection's IndexVersion advances, matching the "rebuild
// on chunk-set change" invalidation policy.
type TFIDFKeywordIndex struct {
	db        *gorm.DB
	tokenizer Tokenizer

	mu      sync.Mutex
	indexes map[string]*tfidfIndex
}

func NewTFIDFKeywordIndex(db *gorm.DB, tokenizer Tokenizer) *TFIDFKeywordIndex {
	if tokenizer == nil {
		tokenizer = regexTokenizer{}
	}
	return &TFIDFKeywordIndex{
		db:        db,
		tokenizer: tokenizer,
		indexes:   make(map[string]*tfidfIndex),
	}
}

func (k *TFIDFKeywordIndex) currentVersion(ctx context.Context, collectionID string) (int64, error) {
	var c types.Collection
	if err := k.db.WithContext(ctx).First(&c, "id = ?", collectionID).Error; err != nil {
		return 0, errors.NewRetrievalError("collection not found: " + collectionID)
	}
	return c.IndexVersion, nil
}

func (k *TFIDFKeywordIndex) build(ctx context.Context, collectionID string) (*tfidfIndex, error) {
	version, err := k.currentVersion(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	var chunks []types.Chunk
	if err := k.db.WithContext(ctx).
		Where("knowledge_base_id = ? AND is_enabled = ?", collectionID, true).
		Find(&chunks).Error; err != nil {
		return nil, errors.NewRetrievalError("load chunks: " + err.Error())
	}

	docTermFreq := make([]map[string]int, len(chunks))
	docFreq := make(map[string]int)
	for i, c := range chunks {
		terms := k.tokenizer.Tokenize(c.Content)
		tf := make(map[string]int, len(terms))
		seen := make(map[string]bool, len(terms))
		for _, t := range terms {
			tf[t]++
			if !seen[t] {
				docFreq[t]++
				seen[t] = true
			}
		}
		docTermFreq[i] = tf
	}

	n := float64(len(chunks))
	idf := make(map[string]float64, len(docFreq))
	for term, df := range docFreq {
		idf[term] = math.Log((n+1)/(float64(df)+1)) + 1
	}

	docVectors := make([]map[string]float64, len(chunks))
	docNorms := make([]float64, len(chunks))
	docIDs := make([]string, len(chunks))
	for i, tf := range docTermFreq {
		vec := make(map[string]float64, len(tf))
		var norm float64
		for term, count := range tf {
			w := float64(count) * idf[term]
			vec[term] = w
			norm += w * w
		}
		docVectors[i] = vec
		docNorms[i] = math.Sqrt(norm)
		docIDs[i] = chunks[i].ID
	}

	return &tfidfIndex{
		version:    version,
		docIDs:     docIDs,
		docs:       chunks,
		termIDF:    idf,
		docVectors: docVectors,
		docNorms:   docNorms,
	}, nil
}

func (k *TFIDFKeywordIndex) getOrBuild(ctx context.Context, collectionID string) (*tfidfIndex, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	cached, ok := k.indexes[collectionID]
	if ok {
		version, err := k.currentVersion(ctx, collectionID)
		if err == nil && version == cached.version {
			return cached, nil
		}
	}

	fresh, err := k.build(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	k.indexes[collectionID] = fresh
	return fresh, nil
}

// Search scores chunks by cosine similarity between the query's TF-IDF vector
// (weighted by the index's cached IDF, so unseen query terms score as zero)
// and each document's TF-IDF vector.
func (k *TFIDFKeywordIndex) Search(ctx context.Context, collectionID string, query string, topK int) ([]types.ScoredChunk, error) {
	idx, err := k.getOrBuild(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if len(idx.docs) == 0 {
		return nil, nil
	}

	terms := k.tokenizer.Tokenize(query)
	queryTF := make(map[string]int)
	for _, t := range terms {
		queryTF[t]++
	}
	queryVec := make(map[string]float64, len(queryTF))
	var queryNorm float64
	for term, count := range queryTF {
		idf, ok := idx.termIDF[term]
		if !ok {
			continue
		}
		w := float64(count) * idf
		queryVec[term] = w
		queryNorm += w * w
	}
	queryNorm = math.Sqrt(queryNorm)
	if queryNorm == 0 {
		return nil, nil
	}

	scored := make([]types.ScoredChunk, 0, len(idx.docs))
	for i, vec := range idx.docVectors {
		if idx.docNorms[i] == 0 {
			continue
		}
		var dot float64
		for term, qw := range queryVec {
			if dw, ok := vec[term]; ok {
				dot += qw * dw
			}
		}
		score := dot / (queryNorm * idx.docNorms[i])
		if score <= 0 {
			continue
		}
		scored = append(scored, types.ScoredChunk{Chunk: idx.docs[i], KeywordScore: score})
	}

	sortScoredChunksByKeyword(scored)
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func sortScoredChunksByKeyword(s []types.ScoredChunk) {
	// insertion sort is fine at the per-collection chunk scale this index targets
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].KeywordScore > s[j-1].KeywordScore; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
