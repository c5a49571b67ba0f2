package parser

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

const sampleResumeText = `John Doe
Email: john.doe@example.com
Phone: (555) 123-4567
linkedin.com/in/john-doe

Work Experience
Senior Software Engineer at Acme Corp
2018-2023
Built backend services in Python and Go, deployed on AWS with Docker.

Education

Bachelor of Science in Computer Science
University of Washington, 2017
`

func TestExtractEntitiesFullResume(t *testing.T) {
	extractor := NewEntityExtractor()
	entities := extractor.ExtractEntities(context.Background(), sampleResumeText)

	// 技能：词表通道应命中 Python/Go/AWS/Docker
	skillNames := make([]string, 0, len(entities.Skills))
	for _, s := range entities.Skills {
		skillNames = append(skillNames, s.Name)
		assert.Equal(t, types.SourcePatternMatch, s.Source, "词表通道技能来源应为pattern_match")
		assert.InDelta(t, 0.8, s.Confidence, 0.001, "词表通道技能置信度应为0.8")
		assert.NotEmpty(t, s.Context, "技能应携带上下文片段")
	}
	assert.Contains(t, skillNames, "Python")
	assert.Contains(t, skillNames, "Go")
	assert.Contains(t, skillNames, "AWS")
	assert.Contains(t, skillNames, "Docker")

	// 经历：应识别出职位、公司、起止年份
	require.NotEmpty(t, entities.Experience, "应提取到工作经历")
	foundSenior := false
	for _, exp := range entities.Experience {
		if exp.Position == "Senior Software" || exp.Position == "Software Engineer" {
			foundSenior = true
			assert.Contains(t, exp.Company, "Acme Corp", "公司应从邻近行识别")
			assert.Equal(t, "2018-2023", exp.Duration, "起止年份应从邻近行识别")
			assert.InDelta(t, 0.7, exp.Confidence, 0.001)
		}
	}
	assert.True(t, foundSenior, "应至少命中一条职位模式")

	// 学历：学位、院校、年份、专业
	require.NotEmpty(t, entities.Education, "应提取到教育背景")
	foundDegree := false
	for _, edu := range entities.Education {
		if edu.Degree == "Bachelor of Science" {
			foundDegree = true
			assert.Equal(t, "University of Washington", edu.Institution)
			assert.Equal(t, "2017", edu.Year)
			assert.Equal(t, "Computer Science", edu.FieldOfStudy)
		}
	}
	assert.True(t, foundDegree, "应识别出学士学位")

	// 联系方式
	assert.Equal(t, "john.doe@example.com", entities.ContactInfo.Email)
	assert.Equal(t, "5551234567", entities.ContactInfo.Phone, "电话应只保留数字分组")
	assert.Equal(t, "linkedin.com/in/john-doe", entities.ContactInfo.LinkedIn)

	// 置信度
	assert.Equal(t, 1.0, entities.ConfidenceScores["contact_info"], "有联系方式时该类别置信度为1")
	assert.Greater(t, entities.OverallConfidence, 0.0)
	assert.LessOrEqual(t, entities.OverallConfidence, 1.0)
	assert.Empty(t, entities.Error, "正常提取不应有降级记录")
}

func TestExtractEntitiesEmptyInput(t *testing.T) {
	extractor := NewEntityExtractor()

	for _, input := range []string{"", "   \n\t  "} {
		entities := extractor.ExtractEntities(context.Background(), input)
		assert.Empty(t, entities.Skills, "空输入不应产生技能")
		assert.Empty(t, entities.Experience, "空输入不应产生经历")
		assert.Empty(t, entities.Education, "空输入不应产生学历")
		assert.Equal(t, 0.0, entities.OverallConfidence, "空输入总置信度应为0")
	}
}

func TestExtractSkillsDeduplication(t *testing.T) {
	extractor := NewEntityExtractor()

	// 同一技能大小写不同，只保留首次出现
	text := "Skills: Python, PYTHON, python, Java and java development experience"
	entities := extractor.ExtractEntities(context.Background(), text)

	pythonCount := 0
	javaCount := 0
	for _, s := range entities.Skills {
		switch {
		case s.Name == "Python" || s.Name == "PYTHON" || s.Name == "python":
			pythonCount++
		case s.Name == "Java" || s.Name == "java":
			javaCount++
		}
	}
	assert.Equal(t, 1, pythonCount, "同名技能应大小写不敏感去重")
	assert.Equal(t, 1, javaCount, "同名技能应大小写不敏感去重")
}

func TestSkillConfidenceCapped(t *testing.T) {
	extractor := NewEntityExtractor()

	text := "experience with Python Java JavaScript Ruby Go Rust Swift Kotlin Scala PHP SQL Redis"
	entities := extractor.ExtractEntities(context.Background(), text)

	require.Greater(t, len(entities.Skills), 9, "应命中超过9项技能")
	assert.Equal(t, 0.9, entities.ConfidenceScores["skills"], "技能类别置信度应封顶0.9")
}

// stubTagger 返回固定名词短语的标注器
type stubTagger struct {
	phrases []NounPhrase
}

func (s *stubTagger) NounPhrases(string) ([]NounPhrase, error) { return s.phrases, nil }
func (s *stubTagger) HasAdvancedHeuristics() bool              { return true }

func TestHeuristicSkillChannel(t *testing.T) {
	tagger := &stubTagger{phrases: []NounPhrase{
		{Text: "distributed systems", TokenCount: 2},
		{Text: "organic chemistry", TokenCount: 2},
		{Text: "very long noun phrase here", TokenCount: 4},
	}}
	extractor := NewEntityExtractor(WithNounPhraseTagger(tagger))

	// 只有"distributed systems"邻近有熟练度指示词
	text := "Proficient in distributed systems. Once attended a lecture far away from here about topics. " +
		"Later the syllabus mentioned organic chemistry without any qualifier words nearby in text."
	entities := extractor.ExtractEntities(context.Background(), text)

	var heuristic []types.Skill
	for _, s := range entities.Skills {
		if s.Source == types.SourceHeuristic {
			heuristic = append(heuristic, s)
		}
	}
	require.Len(t, heuristic, 1, "只有邻近熟练度指示词的短语应入选")
	assert.Equal(t, "distributed systems", heuristic[0].Name)
	assert.InDelta(t, 0.6, heuristic[0].Confidence, 0.001, "启发式通道置信度应为0.6")
}

func TestEducationWindowFallsBackToFullText(t *testing.T) {
	extractor := NewEntityExtractor()

	// 没有教育段落关键词时全篇扫描
	text := "B.S. obtained in 2015 from somewhere with work experience"
	entities := extractor.ExtractEntities(context.Background(), text)
	require.NotEmpty(t, entities.Education, "无段落关键词时应扫描全文")
}

func TestCategoryIsolationOnTaggerFailure(t *testing.T) {
	// 标注器出错只影响启发式通道，词表通道和其他类别不受影响
	extractor := NewEntityExtractor(WithNounPhraseTagger(&panicTagger{}))

	entities := extractor.ExtractEntities(context.Background(),
		"Python developer, work experience at Example Inc, contact: a@b.com")
	assert.Empty(t, entities.Skills, "技能类别panic时应降级为空")
	assert.Contains(t, entities.Error, "skills", "降级记录应标明类别")
	assert.Equal(t, "a@b.com", entities.ContactInfo.Email, "其他类别不应受影响")
	assert.NotEmpty(t, entities.Experience, "其他类别不应受影响")
}

type panicTagger struct{}

func (p *panicTagger) NounPhrases(string) ([]NounPhrase, error) { panic("tagger exploded") }
func (p *panicTagger) HasAdvancedHeuristics() bool              { return true }

func TestDegradationIsLogged(t *testing.T) {
	extractor := NewEntityExtractor(WithNounPhraseTagger(&panicTagger{}))

	// 上下文携带logger时降级告警写入该logger
	var buf bytes.Buffer
	ctxLogger := zerolog.New(&buf)
	extractor.ExtractEntities(ctxLogger.WithContext(context.Background()), "Python developer resume")
	assert.Contains(t, buf.String(), "技能提取失败", "降级应产生日志输出")

	// 裸上下文时回落到全局logger，告警不能被静默丢弃
	var globalBuf bytes.Buffer
	original := logger.Logger
	logger.Logger = zerolog.New(&globalBuf)
	t.Cleanup(func() { logger.Logger = original })

	extractor.ExtractEntities(context.Background(), "Python developer resume")
	assert.Contains(t, globalBuf.String(), "技能提取失败", "无上下文logger时降级告警应走全局实例")
}
