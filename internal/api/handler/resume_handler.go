package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
	"gorm.io/datatypes"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/types"
)

// ResumeHandler 简历接口处理器，协调流水线与存储
type ResumeHandler struct {
	cfg             *config.Config
	storage         *storage.Storage
	processorModule *processor.ResumeProcessor
}

// NewResumeHandler 创建简历接口处理器
func NewResumeHandler(
	cfg *config.Config,
	storage *storage.Storage,
	processorModule *processor.ResumeProcessor,
) *ResumeHandler {
	return &ResumeHandler{
		cfg:             cfg,
		storage:         storage,
		processorModule: processorModule,
	}
}

// FileValidationRequest 文件预校验请求
type FileValidationRequest struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// HandleValidateFile 文件预校验，不读取文件内容
func (h *ResumeHandler) HandleValidateFile(req FileValidationRequest) types.FileValidation {
	return h.processorModule.ValidateFile(types.FileInfo{
		Name:        req.Name,
		Size:        req.Size,
		ContentType: req.ContentType,
	})
}

// HandleResumeProcess 处理简历上传并执行完整流水线
func (h *ResumeHandler) HandleResumeProcess(ctx context.Context, reader io.Reader, fileSize int64,
	filename, applicationID string) (*processor.ProcessResult, error) {

	validation := h.processorModule.ValidateFile(types.FileInfo{
		Name: filename,
		Size: fileSize,
	})
	if !validation.IsValid {
		return nil, &ValidationError{Validation: validation}
	}

	return h.processorModule.ProcessResume(ctx, applicationID, reader, filename)
}

// HandleResumeMatch 对已有分析结果做岗位匹配
func (h *ResumeHandler) HandleResumeMatch(ctx context.Context, applicationID, jobID string) (*types.MatchResult, error) {
	return h.processorModule.MatchResumeToJob(ctx, applicationID, jobID)
}

// HandleProcessAndMatch 处理简历并直接匹配目标岗位
func (h *ResumeHandler) HandleProcessAndMatch(ctx context.Context, reader io.Reader, fileSize int64,
	filename, applicationID, jobID string) (*processor.ProcessAndMatchResult, error) {

	validation := h.processorModule.ValidateFile(types.FileInfo{
		Name: filename,
		Size: fileSize,
	})
	if !validation.IsValid {
		return nil, &ValidationError{Validation: validation}
	}

	return h.processorModule.ProcessAndMatch(ctx, applicationID, reader, filename, jobID)
}

// HandleAnalysisSummary 按投递ID查询已持久化分析记录的概要
func (h *ResumeHandler) HandleAnalysisSummary(ctx context.Context, applicationID string) (*types.AnalysisSummary, error) {
	return h.processorModule.GetAnalysisSummaryByApplication(ctx, applicationID)
}

// JobCreateRequest 创建岗位请求
type JobCreateRequest struct {
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Requirements   string                `json:"requirements"`
	SkillsRequired []types.RequiredSkill `json:"skills_required"`
}

// JobCreateResponse 创建岗位响应
type JobCreateResponse struct {
	JobID string `json:"job_id"`
}

// HandleCreateJob 创建岗位记录并失效对应缓存
func (h *ResumeHandler) HandleCreateJob(ctx context.Context, req JobCreateRequest) (*JobCreateResponse, error) {
	if h.storage == nil || h.storage.MySQL == nil {
		return nil, processor.ErrStorageRequired
	}
	if req.Title == "" {
		return nil, &BadRequestError{Reason: "岗位标题不能为空"}
	}

	jobID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成岗位ID失败: %w", err)
	}

	skillsJSON, err := json.Marshal(req.SkillsRequired)
	if err != nil {
		return nil, fmt.Errorf("序列化技能要求失败: %w", err)
	}

	job := &models.Job{
		JobID:              jobID.String(),
		Title:              req.Title,
		Description:        req.Description,
		Requirements:       req.Requirements,
		SkillsRequiredJSON: datatypes.JSON(skillsJSON),
		Status:             "ACTIVE",
	}
	if err := h.storage.MySQL.SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("保存岗位失败: %w", err)
	}

	if h.storage.Redis != nil {
		// 缓存失效失败不影响创建结果
		if err := h.storage.Redis.InvalidateJobText(ctx, job.JobID); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("job_id", job.JobID).Msg("失效岗位缓存失败")
		}
	}

	return &JobCreateResponse{JobID: job.JobID}, nil
}

// ValidationError 文件预校验未通过
type ValidationError struct {
	Validation types.FileValidation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("file validation failed: %v", e.Validation.Issues)
}

// BadRequestError 请求参数错误
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string {
	return e.Reason
}

// StatusForError 业务错误到HTTP状态码的映射
func StatusForError(err error) int {
	var validationErr *ValidationError
	var badRequestErr *BadRequestError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &badRequestErr):
		return consts.StatusBadRequest
	case errors.Is(err, storage.ErrAnalysisNotFound), errors.Is(err, storage.ErrJobNotFound):
		return consts.StatusNotFound
	case errors.Is(err, processor.ErrQualityTooLow):
		return consts.StatusUnprocessableEntity
	case errors.Is(err, processor.ErrExtractionFailed):
		return consts.StatusBadRequest
	default:
		return consts.StatusInternalServerError
	}
}
