package handler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/config"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/types"
)

func newTestHandler(t *testing.T) *ResumeHandler {
	t.Helper()
	proc := processor.NewResumeProcessor(
		&processor.Components{},
		&processor.Settings{},
	)
	return NewResumeHandler(&config.Config{}, nil, proc)
}

func TestHandleValidateFile(t *testing.T) {
	h := newTestHandler(t)

	validation := h.HandleValidateFile(FileValidationRequest{
		Name:        "resume.pdf",
		Size:        1024,
		ContentType: "application/pdf",
	})
	assert.True(t, validation.IsValid, "合法PDF文件应通过预校验")
	assert.Empty(t, validation.Issues)

	validation = h.HandleValidateFile(FileValidationRequest{
		Name:        "resume.docx",
		Size:        0,
		ContentType: "application/msword",
	})
	require.False(t, validation.IsValid, "非PDF空文件不应通过预校验")
	assert.Contains(t, validation.Issues, "Only PDF files are supported")
	assert.Contains(t, validation.Issues, "File is empty")
}

func TestHandleResumeProcessRejectsInvalidFile(t *testing.T) {
	h := newTestHandler(t)

	result, err := h.HandleResumeProcess(context.Background(), nil, 0, "resume.txt", "app-1")
	require.Error(t, err)
	assert.Nil(t, result)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr, "预校验失败应返回ValidationError")
	assert.False(t, validationErr.Validation.IsValid)
}

func TestHandleCreateJobRequiresStorage(t *testing.T) {
	h := newTestHandler(t)

	resp, err := h.HandleCreateJob(context.Background(), JobCreateRequest{Title: "后端工程师"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, processor.ErrStorageRequired, "未配置存储时创建岗位应报错")
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "文件校验失败",
			err:  &ValidationError{Validation: types.FileValidation{Issues: []string{"File is empty"}}},
			want: consts.StatusBadRequest,
		},
		{
			name: "请求参数错误",
			err:  &BadRequestError{Reason: "title不能为空"},
			want: consts.StatusBadRequest,
		},
		{
			name: "分析记录不存在",
			err:  fmt.Errorf("查询失败: %w", storage.ErrAnalysisNotFound),
			want: consts.StatusNotFound,
		},
		{
			name: "岗位不存在",
			err:  storage.ErrJobNotFound,
			want: consts.StatusNotFound,
		},
		{
			name: "质量不达标",
			err:  processor.NewQualityError("app-1", "quality score 0.30 below threshold"),
			want: consts.StatusUnprocessableEntity,
		},
		{
			name: "提取失败",
			err:  processor.NewExtractionError("app-1", "malformed PDF document"),
			want: consts.StatusBadRequest,
		},
		{
			name: "未知错误",
			err:  errors.New("connection reset"),
			want: consts.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}
