package parser

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// NounPhrase 文本中的一个名词短语候选
type NounPhrase struct {
	Text string
	// TokenCount 短语包含的词数
	TokenCount int
}

// NounPhraseTagger 名词短语标注能力
// 技能提取的启发式通道依赖此能力，未注入时该通道自动关闭
type NounPhraseTagger interface {
	// NounPhrases 返回文本中的名词短语候选
	NounPhrases(text string) ([]NounPhrase, error)
	// HasAdvancedHeuristics 报告标注器是否具备词性分析能力
	HasAdvancedHeuristics() bool
}

// ProseNounPhraseTagger 基于 prose 词性标注的名词短语标注器
type ProseNounPhraseTagger struct{}

// NewProseNounPhraseTagger 创建标注器
func NewProseNounPhraseTagger() *ProseNounPhraseTagger {
	return &ProseNounPhraseTagger{}
}

// HasAdvancedHeuristics 恒为true，prose自带POS模型
func (t *ProseNounPhraseTagger) HasAdvancedHeuristics() bool { return true }

// NounPhrases 基于词性序列切出名词短语
// 规则：连续的形容词/名词token构成一个短语，必须以名词结尾
func (t *ProseNounPhraseTagger) NounPhrases(text string) ([]NounPhrase, error) {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false), prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}

	var phrases []NounPhrase
	var current []string
	endsWithNoun := false

	flush := func() {
		if len(current) > 0 && endsWithNoun {
			phrases = append(phrases, NounPhrase{
				Text:       strings.Join(current, " "),
				TokenCount: len(current),
			})
		}
		current = current[:0]
		endsWithNoun = false
	}

	for _, tok := range doc.Tokens() {
		switch {
		case strings.HasPrefix(tok.Tag, "NN"):
			current = append(current, tok.Text)
			endsWithNoun = true
		case tok.Tag == "JJ":
			current = append(current, tok.Text)
			endsWithNoun = false
		default:
			flush()
		}
	}
	flush()

	return phrases, nil
}
