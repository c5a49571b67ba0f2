package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
)

var processorTracer = otel.Tracer("resume-match-go/processor")

// Components 流水线组件集合
type Components struct {
	// 核心组件接口
	PDFExtractor     PDFExtractor     // PDF文本提取接口
	QualityValidator QualityValidator // 提取质量校验接口
	EntityExtractor  EntityExtractor  // 实体提取接口
	MatchEvaluator   MatchEvaluator   // 匹配打分接口

	// 存储层依赖
	Storage *storage.Storage // 聚合的存储服务
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	MaxUploadSize int64 // 上传文件大小上限（字节）
	Debug         bool  // 是否开启调试模式
}

// ResumeProcessor 简历处理流水线编排器
// 提取 -> 质量校验 -> 实体提取 -> 持久化 -> 归档/事件，质量门禁不通过则流水线截断
type ResumeProcessor struct {
	// 核心组件接口
	PDFExtractor     PDFExtractor
	QualityValidator QualityValidator
	EntityExtractor  EntityExtractor
	MatchEvaluator   MatchEvaluator

	// 存储层依赖
	Storage *storage.Storage

	// 配置
	Settings Settings
}

// NewResumeProcessor 创建处理器实例
func NewResumeProcessor(comp *Components, set *Settings, opts ...SettingOpt) *ResumeProcessor {
	for _, opt := range opts {
		opt(set)
	}

	if set.MaxUploadSize <= 0 {
		set.MaxUploadSize = constants.MaxUploadSizeBytes
	}

	processor := &ResumeProcessor{
		PDFExtractor:     comp.PDFExtractor,
		QualityValidator: comp.QualityValidator,
		EntityExtractor:  comp.EntityExtractor,
		MatchEvaluator:   comp.MatchEvaluator,
		Storage:          comp.Storage,
		Settings:         *set,
	}

	if processor.Storage == nil {
		logger.Logger.Warn().Msg("ResumeProcessor 的 Storage 依赖未初始化，持久化与归档功能不可用")
	}

	return processor
}

// CreateProcessor 便捷工厂函数，通过选项组装组件与设置并构造处理器
func CreateProcessor(compOpts []ComponentOpt, setOpts []SettingOpt) (*ResumeProcessor, error) {
	components := &Components{}
	settings := &Settings{
		MaxUploadSize: constants.MaxUploadSizeBytes,
	}

	for _, opt := range compOpts {
		opt(components)
	}

	// 必要组件校验
	if components.PDFExtractor == nil {
		return nil, fmt.Errorf("必须提供PDF提取器组件")
	}
	if components.QualityValidator == nil {
		return nil, fmt.Errorf("必须提供质量校验器组件")
	}
	if components.EntityExtractor == nil {
		return nil, fmt.Errorf("必须提供实体提取器组件")
	}

	return NewResumeProcessor(components, settings, setOpts...), nil
}

// ProcessResult 一次简历处理的完整输出
// 预期内的失败（提取失败、质量不达标）通过 Extraction/Validation 表达，不作为error返回
type ProcessResult struct {
	AnalysisID     string                   `json:"analysis_id"`
	ApplicationID  string                   `json:"application_id"`
	Extraction     *types.ExtractionResult  `json:"extraction"`
	Validation     types.ValidationVerdict  `json:"validation"`
	Entities       types.ExtractedEntitySet `json:"entities"`
	Stored         bool                     `json:"stored"`                     // 是否已写入数据库
	ArchivePath    string                   `json:"archive_path,omitempty"`     // 原始文件归档路径
	ParsedTextPath string                   `json:"parsed_text_path,omitempty"` // 解析文本归档路径
}

// ProcessAndMatchResult 处理+匹配组合操作的输出
type ProcessAndMatchResult struct {
	Process *ProcessResult     `json:"process"`
	Match   *types.MatchResult `json:"match,omitempty"` // 流水线截断时为空
}

// ValidateFile 上传前的文件预校验，不触发任何提取
func (p *ResumeProcessor) ValidateFile(info types.FileInfo) types.FileValidation {
	validation := types.FileValidation{
		Issues:   []string{},
		FileInfo: info,
	}

	if info.Size > p.Settings.MaxUploadSize {
		validation.Issues = append(validation.Issues, "File size exceeds 10MB limit")
	}
	if ext := strings.ToLower(filepath.Ext(info.Name)); ext != ".pdf" {
		validation.Issues = append(validation.Issues, "Only PDF files are supported")
	}
	if info.Size == 0 {
		validation.Issues = append(validation.Issues, "File is empty")
	}

	validation.IsValid = len(validation.Issues) == 0
	return validation
}

// ProcessResume 执行完整的简历处理流水线
// 返回error仅代表基础设施故障（超限、持久化失败）；业务性失败看结果字段
func (p *ResumeProcessor) ProcessResume(ctx context.Context, applicationID string, reader io.Reader, filename string) (*ProcessResult, error) {
	ctx, span := processorTracer.Start(ctx, "ProcessResume")
	defer span.End()
	span.SetAttributes(attribute.String("application_id", applicationID))

	log := logger.Ctx(ctx)

	// 全量读入内存：提取和归档都需要重读内容
	data, err := io.ReadAll(io.LimitReader(reader, p.Settings.MaxUploadSize+1))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, NewExtractionError(applicationID, fmt.Sprintf("读取上传内容失败: %v", err))
	}
	if int64(len(data)) > p.Settings.MaxUploadSize {
		span.SetStatus(codes.Error, "upload too large")
		return nil, NewExtractionError(applicationID, "上传内容超过大小上限")
	}

	analysisID, err := uuid.NewV7()
	if err != nil {
		return nil, NewDatabaseError(applicationID, fmt.Sprintf("生成分析ID失败: %v", err))
	}

	result := &ProcessResult{
		AnalysisID:    analysisID.String(),
		ApplicationID: applicationID,
	}

	// 阶段1：文本提取
	result.Extraction = p.PDFExtractor.ExtractFromReader(ctx, bytes.NewReader(data), filename)
	span.SetAttributes(attribute.Bool("extraction.success", result.Extraction.Success))

	// 阶段2：质量门禁，提取失败的结果同样走校验以生成统一的问题描述
	result.Validation = p.QualityValidator.Validate(result.Extraction)
	span.SetAttributes(attribute.Float64("quality_score", result.Validation.QualityScore))
	if !result.Validation.IsValid {
		log.Warn().Str("application_id", applicationID).
			Strs("issues", result.Validation.Issues).
			Float64("quality_score", result.Validation.QualityScore).
			Msg("简历质量不达标，流水线截断")
		return result, nil
	}

	// 阶段3：实体提取
	result.Entities = p.EntityExtractor.ExtractEntities(ctx, result.Extraction.RawText)
	span.SetAttributes(
		attribute.Float64("overall_confidence", result.Entities.OverallConfidence),
		attribute.String("resume.excerpt", tracing.SafeResumeContent(result.Extraction.RawText)),
		attribute.String("contact.email",
			tracing.SafeAttributeValue("contact.email", result.Entities.ContactInfo.Email, tracing.DefaultMaxLength)),
	)

	// 阶段4：持久化
	// application_id缺省时为匿名分析，没有可关联的投递记录，跳过落库
	if applicationID != "" && p.Storage != nil && p.Storage.MySQL != nil {
		if err := p.storeAnalysis(ctx, result); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return result, err
		}
		result.Stored = true
	}

	// 阶段5：旁路归档与事件，失败不影响处理结果
	p.archiveArtifacts(ctx, result, data)
	p.publishAnalyzed(ctx, result, "", 0)

	log.Info().Str("application_id", applicationID).
		Str("analysis_id", result.AnalysisID).
		Int("skills", len(result.Entities.Skills)).
		Int("experience", len(result.Entities.Experience)).
		Int("education", len(result.Entities.Education)).
		Bool("stored", result.Stored).
		Msg("简历处理完成")

	return result, nil
}

// storeAnalysis 组装模型并原子化写库
func (p *ResumeProcessor) storeAnalysis(ctx context.Context, result *ProcessResult) error {
	ctx, span := processorTracer.Start(ctx, "StoreAnalysis")
	defer span.End()

	excerpt := result.Extraction.RawText
	if len(excerpt) > constants.MaxStoredRawTextLen {
		excerpt = excerpt[:constants.MaxStoredRawTextLen]
	}

	analysis := &models.ResumeAnalysis{
		AnalysisID:      result.AnalysisID,
		ApplicationID:   result.ApplicationID,
		RawTextExcerpt:  excerpt,
		ConfidenceScore: result.Entities.OverallConfidence,
		ProcessedAt:     time.Now(),
	}

	skills, experience, education := entitySetToModels(result.AnalysisID, &result.Entities)
	if err := p.Storage.MySQL.StoreAnalysis(ctx, analysis, skills, experience, education); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return NewDatabaseError(result.ApplicationID, err.Error())
	}

	// 覆盖写入时主键沿用旧记录
	result.AnalysisID = analysis.AnalysisID
	return nil
}

// archiveArtifacts 归档原始文件与解析文本，仅记录失败
func (p *ResumeProcessor) archiveArtifacts(ctx context.Context, result *ProcessResult, data []byte) {
	if p.Storage == nil || p.Storage.MinIO == nil {
		return
	}

	log := logger.Ctx(ctx)
	path, err := p.Storage.MinIO.UploadResumeFile(ctx, result.AnalysisID, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Warn().Err(err).Str("analysis_id", result.AnalysisID).Msg("归档原始简历失败")
	} else {
		result.ArchivePath = path
	}

	path, err = p.Storage.MinIO.UploadParsedText(ctx, result.AnalysisID, result.Extraction.RawText)
	if err != nil {
		log.Warn().Err(err).Str("analysis_id", result.AnalysisID).Msg("归档解析文本失败")
	} else {
		result.ParsedTextPath = path
	}
}

// publishAnalyzed 发布分析完成事件，仅记录失败
func (p *ResumeProcessor) publishAnalyzed(ctx context.Context, result *ProcessResult, jobID string, overallScore float64) {
	if p.Storage == nil || p.Storage.RabbitMQ == nil {
		return
	}

	msg := storage.NewResumeAnalyzedMessage(result.AnalysisID, result.ApplicationID)
	msg.ConfidenceScore = result.Entities.OverallConfidence
	msg.JobID = jobID
	msg.OverallScore = overallScore
	msg.ArchivePath = result.ArchivePath
	msg.ParsedTextPath = result.ParsedTextPath

	if err := p.Storage.RabbitMQ.PublishResumeAnalyzed(ctx, msg); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Str("analysis_id", result.AnalysisID).
			Msg("发布分析完成事件失败")
	}
}

// GetJobRequirements 获取岗位要求，优先走Redis缓存，未命中回源数据库并写缓存
func (p *ResumeProcessor) GetJobRequirements(ctx context.Context, jobID string) (types.JobRequirements, error) {
	var req types.JobRequirements

	if p.Storage == nil || p.Storage.MySQL == nil {
		return req, ErrStorageRequired
	}

	if p.Storage.Redis != nil {
		cached, hit, err := p.Storage.Redis.GetCachedJobText(ctx, jobID)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("job_id", jobID).Msg("读取岗位缓存失败，回源数据库")
		} else if hit {
			if err := json.Unmarshal([]byte(cached), &req); err == nil {
				return req, nil
			}
			logger.Ctx(ctx).Warn().Str("job_id", jobID).Msg("岗位缓存内容损坏，回源数据库")
		}
	}

	job, err := p.Storage.MySQL.GetJobByID(ctx, jobID)
	if err != nil {
		return req, err
	}
	req, err = storage.JobToRequirements(job)
	if err != nil {
		return req, err
	}

	if p.Storage.Redis != nil {
		if encoded, err := json.Marshal(req); err == nil {
			if err := p.Storage.Redis.CacheJobText(ctx, jobID, string(encoded)); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("job_id", jobID).Msg("写入岗位缓存失败")
			}
		}
	}

	return req, nil
}

// MatchExtractedResume 直接对提取出的简历数据与岗位要求打分
// 纯计算操作，不读写任何存储
func (p *ResumeProcessor) MatchExtractedResume(ctx context.Context, resume types.ResumeData, job types.JobRequirements) *types.MatchResult {
	result := p.MatchEvaluator.CalculateMatchScore(ctx, resume, job)
	return &result
}

// MatchResumeToJob 对已持久化的分析结果做岗位匹配打分并落库
func (p *ResumeProcessor) MatchResumeToJob(ctx context.Context, applicationID, jobID string) (*types.MatchResult, error) {
	ctx, span := processorTracer.Start(ctx, "MatchResumeToJob")
	defer span.End()
	span.SetAttributes(
		attribute.String("application_id", applicationID),
		attribute.String("job_id", jobID),
	)

	if p.Storage == nil || p.Storage.MySQL == nil {
		return nil, ErrStorageRequired
	}

	analysis, err := p.Storage.MySQL.GetAnalysisByApplicationID(ctx, applicationID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	skills, experience, education, err := p.Storage.MySQL.GetExtractedEntities(ctx, analysis.AnalysisID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, NewDatabaseError(applicationID, err.Error())
	}
	resume := modelsToResumeData(analysis, skills, experience, education)

	job, err := p.GetJobRequirements(ctx, jobID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	result := p.MatchExtractedResume(ctx, resume, job)

	if err := p.storeMatchScore(ctx, analysis.AnalysisID, jobID, result); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	processResult := &ProcessResult{
		AnalysisID:    analysis.AnalysisID,
		ApplicationID: applicationID,
		Entities:      types.ExtractedEntitySet{OverallConfidence: analysis.ConfidenceScore},
	}
	p.publishAnalyzed(ctx, processResult, jobID, result.OverallScore)

	return result, nil
}

// ProcessAndMatch 处理简历并直接与目标岗位打分，组合操作
func (p *ResumeProcessor) ProcessAndMatch(ctx context.Context, applicationID string, reader io.Reader, filename, jobID string) (*ProcessAndMatchResult, error) {
	ctx, span := processorTracer.Start(ctx, "ProcessAndMatch")
	defer span.End()

	processResult, err := p.ProcessResume(ctx, applicationID, reader, filename)
	if err != nil {
		return nil, err
	}

	combined := &ProcessAndMatchResult{Process: processResult}
	if !processResult.Validation.IsValid {
		// 流水线截断，跳过匹配
		return combined, nil
	}

	job, err := p.GetJobRequirements(ctx, jobID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return combined, NewJobFetchError(applicationID, err.Error())
	}

	resume := types.ResumeData{
		RawText:     processResult.Extraction.RawText,
		Skills:      processResult.Entities.Skills,
		Experience:  processResult.Entities.Experience,
		Education:   processResult.Entities.Education,
		ContactInfo: processResult.Entities.ContactInfo,
	}
	result := p.MatchExtractedResume(ctx, resume, job)
	combined.Match = result

	if processResult.Stored {
		if err := p.storeMatchScore(ctx, processResult.AnalysisID, jobID, result); err != nil {
			return combined, err
		}
		p.publishAnalyzed(ctx, processResult, jobID, result.OverallScore)
	}

	return combined, nil
}

// storeMatchScore 匹配分数落库，各维度换算为百分制
func (p *ResumeProcessor) storeMatchScore(ctx context.Context, analysisID, jobID string, result *types.MatchResult) error {
	details, err := storage.MatchDetailsJSON(result)
	if err != nil {
		return NewDatabaseError(analysisID, err.Error())
	}

	score := &models.ResumeMatchScore{
		AnalysisID:          analysisID,
		JobID:               jobID,
		OverallScore:        result.OverallScore,
		SkillsScore:         result.SkillsMatch * 100,
		ExperienceScore:     result.ExperienceMatch * 100,
		EducationScore:      result.EducationMatch * 100,
		TextSimilarityScore: result.TextSimilarity * 100,
		DetailsJSON:         details,
		MatchedAt:           time.Now(),
	}
	if err := p.Storage.MySQL.StoreMatchScore(ctx, score); err != nil {
		return NewDatabaseError(analysisID, err.Error())
	}
	return nil
}

// GetAnalysisSummary 按分析ID查询已持久化记录的概要
func (p *ResumeProcessor) GetAnalysisSummary(ctx context.Context, analysisID string) (*types.AnalysisSummary, error) {
	if p.Storage == nil || p.Storage.MySQL == nil {
		return nil, ErrStorageRequired
	}
	return p.Storage.MySQL.GetAnalysisSummary(ctx, analysisID)
}

// GetAnalysisSummaryByApplication 按投递ID查询概要，投递与分析记录一一对应
func (p *ResumeProcessor) GetAnalysisSummaryByApplication(ctx context.Context, applicationID string) (*types.AnalysisSummary, error) {
	if p.Storage == nil || p.Storage.MySQL == nil {
		return nil, ErrStorageRequired
	}
	return p.Storage.MySQL.GetAnalysisSummaryByApplicationID(ctx, applicationID)
}

// entitySetToModels 实体集合转数据库模型
func entitySetToModels(analysisID string, set *types.ExtractedEntitySet) (
	[]models.ExtractedSkill, []models.ExtractedExperience, []models.ExtractedEducation) {

	skills := make([]models.ExtractedSkill, 0, len(set.Skills))
	for _, s := range set.Skills {
		skills = append(skills, models.ExtractedSkill{
			AnalysisID: analysisID,
			SkillName:  s.Name,
			Confidence: s.Confidence,
			Source:     string(s.Source),
			Context:    s.Context,
		})
	}

	experience := make([]models.ExtractedExperience, 0, len(set.Experience))
	for _, e := range set.Experience {
		experience = append(experience, models.ExtractedExperience{
			AnalysisID:  analysisID,
			Position:    e.Position,
			Company:     e.Company,
			Duration:    e.Duration,
			Description: e.Context,
			Confidence:  e.Confidence,
		})
	}

	education := make([]models.ExtractedEducation, 0, len(set.Education))
	for _, e := range set.Education {
		education = append(education, models.ExtractedEducation{
			AnalysisID:     analysisID,
			Degree:         e.Degree,
			Institution:    e.Institution,
			FieldOfStudy:   e.FieldOfStudy,
			GraduationYear: e.Year,
			Confidence:     e.Confidence,
		})
	}

	return skills, experience, education
}

// modelsToResumeData 数据库模型转匹配输入
func modelsToResumeData(analysis *models.ResumeAnalysis,
	skills []models.ExtractedSkill, experience []models.ExtractedExperience,
	education []models.ExtractedEducation) types.ResumeData {

	resume := types.ResumeData{RawText: analysis.RawTextExcerpt}

	for _, s := range skills {
		resume.Skills = append(resume.Skills, types.Skill{
			Name:       s.SkillName,
			Confidence: s.Confidence,
			Source:     types.EntitySource(s.Source),
			Context:    s.Context,
		})
	}
	for _, e := range experience {
		resume.Experience = append(resume.Experience, types.Experience{
			Position:   e.Position,
			Company:    e.Company,
			Duration:   e.Duration,
			Confidence: e.Confidence,
			Context:    e.Description,
		})
	}
	for _, e := range education {
		resume.Education = append(resume.Education, types.Education{
			Degree:       e.Degree,
			Institution:  e.Institution,
			FieldOfStudy: e.FieldOfStudy,
			Year:         e.GraduationYear,
			Confidence:   e.Confidence,
		})
	}

	return resume
}
