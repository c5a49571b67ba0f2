package parser

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// 文本相似度：TF-IDF余弦为主，词集合重叠为兜底

// ErrEmptyVocabulary 语料过滤后没有剩余词项
var ErrEmptyVocabulary = errors.New("tfidf: no terms remain after pruning")

// tokenPattern 小写字母数字词元
var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// englishStopwords 英文停用词表
var englishStopwords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "against": {},
	"all": {}, "am": {}, "an": {}, "and": {}, "any": {}, "are": {}, "as": {},
	"at": {}, "be": {}, "because": {}, "been": {}, "before": {}, "being": {},
	"below": {}, "between": {}, "both": {}, "but": {}, "by": {}, "can": {},
	"did": {}, "do": {}, "does": {}, "doing": {}, "down": {}, "during": {},
	"each": {}, "few": {}, "for": {}, "from": {}, "further": {}, "had": {},
	"has": {}, "have": {}, "having": {}, "he": {}, "her": {}, "here": {},
	"hers": {}, "him": {}, "his": {}, "how": {}, "i": {}, "if": {}, "in": {},
	"into": {}, "is": {}, "it": {}, "its": {}, "just": {}, "me": {}, "more": {},
	"most": {}, "my": {}, "no": {}, "nor": {}, "not": {}, "now": {}, "of": {},
	"off": {}, "on": {}, "once": {}, "only": {}, "or": {}, "other": {},
	"our": {}, "ours": {}, "out": {}, "over": {}, "own": {}, "same": {},
	"she": {}, "should": {}, "so": {}, "some": {}, "such": {}, "than": {},
	"that": {}, "the": {}, "their": {}, "theirs": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {}, "through": {},
	"to": {}, "too": {}, "under": {}, "until": {}, "up": {}, "very": {},
	"was": {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "who": {}, "whom": {}, "why": {}, "will": {},
	"with": {}, "you": {}, "your": {}, "yours": {},
}

// TFIDFVectorizer 词频-逆文档频率向量化器
// 特征为一元和二元词组，去停用词，最多保留maxFeatures个特征
type TFIDFVectorizer struct {
	maxFeatures int
	// maxDFRatio 文档频率占比超过该值的词项被剪除
	// 语料只有两篇文档时不启用，否则两篇共有的词全部被剪掉
	maxDFRatio float64
}

// NewTFIDFVectorizer 创建默认配置的向量化器
func NewTFIDFVectorizer() *TFIDFVectorizer {
	return &TFIDFVectorizer{
		maxFeatures: 1000,
		maxDFRatio:  0.95,
	}
}

// CosineSimilarity 计算两段文本的TF-IDF余弦相似度
// 语料退化（均为空、剪枝后无词项）时返回 ErrEmptyVocabulary，由调用方兜底
func (v *TFIDFVectorizer) CosineSimilarity(a, b string) (float64, error) {
	docs := [][]string{extractTerms(a), extractTerms(b)}

	// 文档频率统计
	df := make(map[string]int)
	for _, terms := range docs {
		seen := make(map[string]struct{})
		for _, term := range terms {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	if len(df) == 0 {
		return 0, ErrEmptyVocabulary
	}

	nDocs := len(docs)
	vocab := make([]string, 0, len(df))
	for term, freq := range df {
		if nDocs > 2 && float64(freq) > v.maxDFRatio*float64(nDocs) {
			continue
		}
		vocab = append(vocab, term)
	}
	if len(vocab) == 0 {
		return 0, ErrEmptyVocabulary
	}

	// 截断到maxFeatures：按文档频率降序、词项字典序稳定排序
	sort.Slice(vocab, func(i, j int) bool {
		if df[vocab[i]] != df[vocab[j]] {
			return df[vocab[i]] > df[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	if len(vocab) > v.maxFeatures {
		vocab = vocab[:v.maxFeatures]
	}

	index := make(map[string]int, len(vocab))
	for i, term := range vocab {
		index[term] = i
	}

	// 平滑IDF：ln((1+n)/(1+df)) + 1，向量L2归一化
	vectors := make([][]float64, nDocs)
	for d, terms := range docs {
		vec := make([]float64, len(vocab))
		for _, term := range terms {
			if i, ok := index[term]; ok {
				vec[i]++
			}
		}
		for i, term := range vocab {
			if vec[i] > 0 {
				idf := math.Log(float64(1+nDocs)/float64(1+df[term])) + 1
				vec[i] *= idf
			}
		}
		normalize(vec)
		vectors[d] = vec
	}

	dot := 0.0
	for i := range vectors[0] {
		dot += vectors[0][i] * vectors[1][i]
	}
	if math.IsNaN(dot) {
		return 0, ErrEmptyVocabulary
	}
	return dot, nil
}

// WordOverlapSimilarity 词集合Jaccard相似度，TF-IDF退化时的兜底
func WordOverlapSimilarity(a, b string) float64 {
	setA := termSet(tokenize(a))
	setB := termSet(tokenize(b))
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for term := range setA {
		if _, ok := setB[term]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// extractTerms 词元化并生成一元+二元特征
func extractTerms(text string) []string {
	tokens := tokenize(text)
	terms := make([]string, 0, len(tokens)*2)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// tokenize 小写词元化并去停用词
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, stop := englishStopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func termSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func normalize(vec []float64) {
	sum := 0.0
	for _, x := range vec {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}
