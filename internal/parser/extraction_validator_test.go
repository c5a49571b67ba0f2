package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"resume-match-go/internal/types"
)

func TestValidateGoodResume(t *testing.T) {
	validator := NewExtractionValidator()

	text := strings.Repeat("software engineer with experience in backend development ", 10) +
		"education skills work history at a technology company"
	result := &types.ExtractionResult{
		RawText: text,
		Pages: []types.PageContent{
			{PageNumber: 1, Text: text, WordCount: len(strings.Fields(text))},
		},
		Success:    true,
		TotalWords: len(strings.Fields(text)),
	}

	verdict := validator.Validate(result)
	assert.True(t, verdict.IsValid, "正常简历应通过质量校验")
	assert.InDelta(t, 1.0, verdict.QualityScore, 0.001, "四项检查全部通过应得满分")
	assert.Empty(t, verdict.Issues, "通过校验时不应有问题项")
}

func TestValidateExtractionFailure(t *testing.T) {
	validator := NewExtractionValidator()

	verdict := validator.Validate(&types.ExtractionResult{
		Success: false,
		Error:   "malformed PDF document",
	})
	assert.False(t, verdict.IsValid, "提取失败的结果不应通过校验")
	assert.Equal(t, 0.0, verdict.QualityScore, "提取失败时质量分应为0")
	assert.Contains(t, verdict.Issues, "Extraction failed: malformed PDF document")

	verdict = validator.Validate(nil)
	assert.False(t, verdict.IsValid, "nil结果不应通过校验")
	assert.Contains(t, verdict.Issues[0], "Extraction failed:")
}

func TestValidateShortText(t *testing.T) {
	validator := NewExtractionValidator()

	verdict := validator.Validate(&types.ExtractionResult{
		RawText: "too short",
		Pages:   []types.PageContent{{PageNumber: 1, Text: "too short", WordCount: 2}},
		Success: true,
	})
	assert.False(t, verdict.IsValid, "过短文本不应通过校验")
	assert.Contains(t, verdict.Issues, "Extracted text is too short (less than 50 characters)")
	assert.Contains(t, verdict.Issues, "Few resume-related keywords found")
	assert.Contains(t, verdict.Issues, "Very low word count")
	// 只有页数项得分
	assert.InDelta(t, 0.2, verdict.QualityScore, 0.001, "只应保留页数项的0.2分")
}

func TestValidateOCRGarbage(t *testing.T) {
	validator := NewExtractionValidator()

	// 词数远超上限，疑似OCR噪声
	text := "experience education " + strings.Repeat("x ", 6000)
	verdict := validator.Validate(&types.ExtractionResult{
		RawText: text,
		Pages:   []types.PageContent{{PageNumber: 1, Text: text}},
		Success: true,
	})
	assert.Contains(t, verdict.Issues, "Extremely high word count (possible OCR issues)")
	// 长度0.2 + 关键词0.3 + 页数0.2
	assert.InDelta(t, 0.7, verdict.QualityScore, 0.001)
	assert.True(t, verdict.IsValid, "0.7分仍在可用阈值之上")
}

func TestValidateAllPagesFailed(t *testing.T) {
	validator := NewExtractionValidator()

	text := strings.Repeat("experience education skills work ", 10)
	verdict := validator.Validate(&types.ExtractionResult{
		RawText: text,
		Pages: []types.PageContent{
			{PageNumber: 1, Error: "page content panic"},
			{PageNumber: 2, Error: "page is null"},
		},
		Success: true,
	})
	// 没有成功页，页数项不得分
	assert.InDelta(t, 0.8, verdict.QualityScore, 0.001, "无成功页时应缺少0.2分")
}
