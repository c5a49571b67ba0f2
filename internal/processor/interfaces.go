package processor

import (
	"context"
	"io"

	"resume-match-go/internal/types"
)

//
// 文档提取相关接口
//

// PDFExtractor PDF提取器接口
// 预期内的提取失败（非PDF、损坏文档）通过结果的 Success=false 表达，不返回error
type PDFExtractor interface {
	// ExtractFromFile 从文件路径提取文本
	ExtractFromFile(ctx context.Context, filePath string) *types.ExtractionResult

	// ExtractFromReader 从流提取文本，内部负责临时文件的创建与清理
	ExtractFromReader(ctx context.Context, reader io.Reader, filename string) *types.ExtractionResult
}

// QualityValidator 提取质量校验接口
type QualityValidator interface {
	// Validate 打质量分并给出是否可用的结论
	Validate(result *types.ExtractionResult) types.ValidationVerdict
}

//
// 实体与匹配相关接口
//

// EntityExtractor 实体提取接口
type EntityExtractor interface {
	// ExtractEntities 提取技能/经历/学历/联系方式并计算置信度
	ExtractEntities(ctx context.Context, text string) types.ExtractedEntitySet
}

// MatchEvaluator 匹配打分接口
type MatchEvaluator interface {
	// CalculateMatchScore 计算简历与岗位的加权匹配结果
	CalculateMatchScore(ctx context.Context, resume types.ResumeData, job types.JobRequirements) types.MatchResult
}
