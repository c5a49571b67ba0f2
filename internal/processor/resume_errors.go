package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrExtractionFailed = errors.New("提取简历文本失败")
	ErrQualityTooLow    = errors.New("简历文本质量不达标")
	ErrDatabaseFailed   = errors.New("数据库操作失败")
	ErrJobFetchFailed   = errors.New("获取岗位要求失败")
	ErrStorageRequired  = errors.New("存储服务未初始化")
)

// ResumeProcessError 包含详细错误信息的自定义错误
type ResumeProcessError struct {
	ApplicationID string
	Op            string
	BaseErr       error
	Detail        string
}

func (e *ResumeProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 投递:%s): %s", e.BaseErr, e.Op, e.ApplicationID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 投递:%s)", e.BaseErr, e.Op, e.ApplicationID)
}

func (e *ResumeProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ResumeProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数

func NewExtractionError(applicationID, detail string) error {
	return &ResumeProcessError{
		ApplicationID: applicationID,
		Op:            "extract",
		BaseErr:       ErrExtractionFailed,
		Detail:        detail,
	}
}

func NewQualityError(applicationID, detail string) error {
	return &ResumeProcessError{
		ApplicationID: applicationID,
		Op:            "validate",
		BaseErr:       ErrQualityTooLow,
		Detail:        detail,
	}
}

func NewDatabaseError(applicationID, detail string) error {
	return &ResumeProcessError{
		ApplicationID: applicationID,
		Op:            "database",
		BaseErr:       ErrDatabaseFailed,
		Detail:        detail,
	}
}

func NewJobFetchError(applicationID, detail string) error {
	return &ResumeProcessError{
		ApplicationID: applicationID,
		Op:            "job_fetch",
		BaseErr:       ErrJobFetchFailed,
		Detail:        detail,
	}
}
