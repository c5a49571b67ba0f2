package parser

import (
	"strings"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/types"
)

// 提取质量校验：对提取结果打分，低于阈值的文档不进入后续流水线

// resumeKeywords 质量评分用的简历关键词表
var resumeKeywords = []string{"experience", "education", "skills", "work", "job", "position", "company"}

// ExtractionValidator 提取结果质量校验器
type ExtractionValidator struct{}

// NewExtractionValidator 创建校验器
func NewExtractionValidator() *ExtractionValidator {
	return &ExtractionValidator{}
}

// Validate 按固定权重计算质量分
// 长度0.2 + 关键词0.3 + 词数0.3 + 页数0.2，总分>=0.5视为可用
func (v *ExtractionValidator) Validate(result *types.ExtractionResult) types.ValidationVerdict {
	verdict := types.ValidationVerdict{Issues: []string{}}

	if result == nil || !result.Success {
		reason := "unknown error"
		if result != nil && result.Error != "" {
			reason = result.Error
		}
		verdict.Issues = append(verdict.Issues, "Extraction failed: "+reason)
		return verdict
	}

	trimmed := strings.TrimSpace(result.RawText)
	score := 0.0

	// 文本长度
	if len(trimmed) >= 50 {
		score += 0.2
	} else {
		verdict.Issues = append(verdict.Issues, "Extracted text is too short (less than 50 characters)")
	}

	// 简历关键词覆盖
	lower := strings.ToLower(trimmed)
	keywordHits := 0
	for _, kw := range resumeKeywords {
		if strings.Contains(lower, kw) {
			keywordHits++
		}
	}
	if keywordHits >= 2 {
		score += 0.3
	} else {
		verdict.Issues = append(verdict.Issues, "Few resume-related keywords found")
	}

	// 词数范围
	wordCount := len(strings.Fields(trimmed))
	switch {
	case wordCount >= 20 && wordCount <= 5000:
		score += 0.3
	case wordCount < 20:
		verdict.Issues = append(verdict.Issues, "Very low word count")
	default:
		verdict.Issues = append(verdict.Issues, "Extremely high word count (possible OCR issues)")
	}

	// 至少一页成功解析
	parsedPages := 0
	for _, page := range result.Pages {
		if page.Error == "" {
			parsedPages++
		}
	}
	if parsedPages > 0 {
		score += 0.2
	}

	verdict.QualityScore = score
	verdict.IsValid = score >= constants.MinValidQualityScore
	return verdict
}
