package processor

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/storage"
	"resume-match-go/internal/types"
)

// stubExtractor 返回预置提取结果
type stubExtractor struct {
	result *types.ExtractionResult
}

func (s *stubExtractor) ExtractFromFile(ctx context.Context, filePath string) *types.ExtractionResult {
	return s.result
}

func (s *stubExtractor) ExtractFromReader(ctx context.Context, reader io.Reader, filename string) *types.ExtractionResult {
	// 模拟真实提取器消费流
	io.Copy(io.Discard, reader) //nolint:errcheck
	return s.result
}

// stubValidator 返回预置校验结论
type stubValidator struct {
	verdict types.ValidationVerdict
}

func (s *stubValidator) Validate(result *types.ExtractionResult) types.ValidationVerdict {
	return s.verdict
}

// stubEntityExtractor 返回预置实体集合
type stubEntityExtractor struct {
	entities types.ExtractedEntitySet
	called   bool
}

func (s *stubEntityExtractor) ExtractEntities(ctx context.Context, text string) types.ExtractedEntitySet {
	s.called = true
	return s.entities
}

// stubEvaluator 返回预置匹配结果
type stubEvaluator struct {
	result types.MatchResult
}

func (s *stubEvaluator) CalculateMatchScore(ctx context.Context, resume types.ResumeData, job types.JobRequirements) types.MatchResult {
	return s.result
}

func newTestProcessor(extraction *types.ExtractionResult, verdict types.ValidationVerdict) (*ResumeProcessor, *stubEntityExtractor) {
	entityStub := &stubEntityExtractor{
		entities: types.ExtractedEntitySet{
			Skills:            []types.Skill{{Name: "Python", Confidence: 0.8}},
			ConfidenceScores:  map[string]float64{"skills": 0.1},
			OverallConfidence: 0.275,
		},
	}
	p := NewResumeProcessor(&Components{
		PDFExtractor:     &stubExtractor{result: extraction},
		QualityValidator: &stubValidator{verdict: verdict},
		EntityExtractor:  entityStub,
		MatchEvaluator:   &stubEvaluator{result: types.MatchResult{OverallScore: 72.5}},
	}, &Settings{})
	return p, entityStub
}

func TestValidateFile(t *testing.T) {
	p, _ := newTestProcessor(nil, types.ValidationVerdict{})

	cases := []struct {
		name   string
		info   types.FileInfo
		valid  bool
		issues []string
	}{
		{
			name:  "正常PDF",
			info:  types.FileInfo{Name: "resume.pdf", Size: 1024, ContentType: "application/pdf"},
			valid: true,
		},
		{
			name:   "超过大小上限",
			info:   types.FileInfo{Name: "resume.pdf", Size: 11 * 1024 * 1024},
			valid:  false,
			issues: []string{"File size exceeds 10MB limit"},
		},
		{
			name:   "非PDF格式",
			info:   types.FileInfo{Name: "resume.docx", Size: 1024},
			valid:  false,
			issues: []string{"Only PDF files are supported"},
		},
		{
			name:   "空文件",
			info:   types.FileInfo{Name: "resume.pdf", Size: 0},
			valid:  false,
			issues: []string{"File is empty"},
		},
		{
			name:  "多个问题同时报告",
			info:  types.FileInfo{Name: "huge.docx", Size: 20 * 1024 * 1024},
			valid: false,
			issues: []string{
				"File size exceeds 10MB limit",
				"Only PDF files are supported",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			validation := p.ValidateFile(tc.info)
			assert.Equal(t, tc.valid, validation.IsValid)
			for _, issue := range tc.issues {
				assert.Contains(t, validation.Issues, issue)
			}
			if tc.valid {
				assert.Empty(t, validation.Issues)
			}
		})
	}
}

func TestProcessResumePipelineTruncatedOnLowQuality(t *testing.T) {
	extraction := &types.ExtractionResult{RawText: "garbled", Success: true}
	verdict := types.ValidationVerdict{
		IsValid:      false,
		QualityScore: 0.2,
		Issues:       []string{"Extracted text is too short (less than 50 characters)"},
	}
	p, entityStub := newTestProcessor(extraction, verdict)

	result, err := p.ProcessResume(context.Background(), "app-1", strings.NewReader("%PDF"), "resume.pdf")
	require.NoError(t, err, "质量不达标属于业务结果，不应返回error")
	require.NotNil(t, result)
	assert.False(t, result.Validation.IsValid)
	assert.False(t, entityStub.called, "质量门禁截断后不应继续实体提取")
	assert.False(t, result.Stored)
	assert.NotEmpty(t, result.AnalysisID, "截断的处理仍应分配分析ID")
}

func TestProcessResumeCompletesWithoutStorage(t *testing.T) {
	extraction := &types.ExtractionResult{
		RawText: strings.Repeat("experience education skills ", 20),
		Success: true,
		Pages:   []types.PageContent{{PageNumber: 1}},
	}
	verdict := types.ValidationVerdict{IsValid: true, QualityScore: 1.0, Issues: []string{}}
	p, entityStub := newTestProcessor(extraction, verdict)

	result, err := p.ProcessResume(context.Background(), "app-2", strings.NewReader("%PDF"), "resume.pdf")
	require.NoError(t, err)
	assert.True(t, entityStub.called, "质量达标后应执行实体提取")
	assert.False(t, result.Stored, "无存储依赖时不应标记已入库")
	assert.Len(t, result.Entities.Skills, 1)
	assert.InDelta(t, 0.275, result.Entities.OverallConfidence, 0.001)
}

func TestProcessResumeRejectsOversizedUpload(t *testing.T) {
	p, _ := newTestProcessor(&types.ExtractionResult{Success: true}, types.ValidationVerdict{IsValid: true})
	p.Settings.MaxUploadSize = 16

	_, err := p.ProcessResume(context.Background(), "app-3",
		strings.NewReader(strings.Repeat("x", 64)), "resume.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExtractionFailed), "超限错误应可用errors.Is识别")

	var procErr *ResumeProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "app-3", procErr.ApplicationID)
	assert.Equal(t, "extract", procErr.Op)
}

func TestProcessAndMatchSkipsMatchOnTruncation(t *testing.T) {
	extraction := &types.ExtractionResult{Success: false, Error: "broken"}
	verdict := types.ValidationVerdict{
		IsValid: false,
		Issues:  []string{"Extraction failed: broken"},
	}
	p, _ := newTestProcessor(extraction, verdict)

	combined, err := p.ProcessAndMatch(context.Background(), "app-4",
		strings.NewReader("%PDF"), "resume.pdf", "job-1")
	require.NoError(t, err)
	require.NotNil(t, combined.Process)
	assert.Nil(t, combined.Match, "流水线截断时不应产生匹配结果")
}

func TestProcessResumeAnonymousSkipsPersistence(t *testing.T) {
	extraction := &types.ExtractionResult{
		RawText: strings.Repeat("experience education skills ", 20),
		Success: true,
		Pages:   []types.PageContent{{PageNumber: 1}},
	}
	verdict := types.ValidationVerdict{IsValid: true, QualityScore: 1.0, Issues: []string{}}
	p, entityStub := newTestProcessor(extraction, verdict)
	// 数据库已接入，但匿名处理没有可关联的投递记录，落库必须被跳过；
	// 这里的零值客户端一旦被触碰就会崩溃
	p.Storage = &storage.Storage{MySQL: &storage.MySQL{}}

	result, err := p.ProcessResume(context.Background(), "", strings.NewReader("%PDF"), "resume.pdf")
	require.NoError(t, err, "缺省application_id不应导致处理失败")
	assert.True(t, entityStub.called, "匿名处理仍应执行实体提取")
	assert.False(t, result.Stored, "没有投递记录可关联时不应落库")
	assert.Empty(t, result.ApplicationID)
	assert.NotEmpty(t, result.AnalysisID)
}

func TestMatchExtractedResumeWithoutStorage(t *testing.T) {
	p, _ := newTestProcessor(&types.ExtractionResult{Success: true}, types.ValidationVerdict{IsValid: true})

	resume := types.ResumeData{
		RawText: "text",
		Skills:  []types.Skill{{Name: "Python", Confidence: 0.8}},
	}
	job := types.JobRequirements{Title: "Engineer"}

	// 直接打分是纯计算操作，不需要任何存储依赖
	result := p.MatchExtractedResume(context.Background(), resume, job)
	require.NotNil(t, result)
	assert.InDelta(t, 72.5, result.OverallScore, 0.001)
}

func TestMatchResumeToJobRequiresStorage(t *testing.T) {
	p, _ := newTestProcessor(&types.ExtractionResult{Success: true}, types.ValidationVerdict{IsValid: true})

	_, err := p.MatchResumeToJob(context.Background(), "app-5", "job-1")
	assert.ErrorIs(t, err, ErrStorageRequired)

	_, err = p.GetAnalysisSummary(context.Background(), "analysis-5")
	assert.ErrorIs(t, err, ErrStorageRequired)

	_, err = p.GetAnalysisSummaryByApplication(context.Background(), "app-5")
	assert.ErrorIs(t, err, ErrStorageRequired)

	_, err = p.GetJobRequirements(context.Background(), "job-1")
	assert.ErrorIs(t, err, ErrStorageRequired)
}

func TestResumeProcessErrorFormatting(t *testing.T) {
	err := NewQualityError("app-6", "score 0.3 below threshold")
	assert.True(t, errors.Is(err, ErrQualityTooLow))
	assert.Contains(t, err.Error(), "app-6")
	assert.Contains(t, err.Error(), "score 0.3 below threshold")

	bare := NewDatabaseError("app-7", "")
	assert.True(t, errors.Is(bare, ErrDatabaseFailed))
	assert.Contains(t, bare.Error(), "app-7")
}

func TestCreateProcessorWithOptions(t *testing.T) {
	extraction := &types.ExtractionResult{RawText: "text", Success: true}

	p, err := CreateProcessor(
		[]ComponentOpt{
			WithcompPdfextractor(&stubExtractor{result: extraction}),
			WithcompQualityvalidator(&stubValidator{verdict: types.ValidationVerdict{IsValid: true}}),
			WithcompEntityextractor(&stubEntityExtractor{}),
			WithcompMatchevaluator(&stubEvaluator{}),
			WithcompStorage(nil),
		},
		[]SettingOpt{
			WithsetMaxuploadsize(1024),
			WithsetDebug(true),
		},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), p.Settings.MaxUploadSize)
	assert.True(t, p.Settings.Debug)

	// 缺少必要组件时拒绝构造
	_, err = CreateProcessor(nil, nil)
	assert.Error(t, err, "未提供PDF提取器时应报错")
}
