package storage

import (
	"time"

	"github.com/google/uuid"
)

// ResumeAnalyzedMessage 简历分析完成事件
type ResumeAnalyzedMessage struct {
	EventID         string    `json:"event_id"`                   // 事件唯一ID
	AnalysisID      string    `json:"analysis_id"`                // 分析记录ID
	ApplicationID   string    `json:"application_id"`             // 投递记录ID
	JobID           string    `json:"job_id,omitempty"`           // 参与匹配的岗位ID
	OverallScore    float64   `json:"overall_score,omitempty"`    // 匹配总分，百分制
	ConfidenceScore float64   `json:"confidence_score"`           // 提取总置信度
	ProcessedAt     time.Time `json:"processed_at"`               // 处理完成时间
	ArchivePath     string    `json:"archive_path,omitempty"`     // 原始文件归档路径
	ParsedTextPath  string    `json:"parsed_text_path,omitempty"` // 解析文本归档路径
}

// NewResumeAnalyzedMessage 创建带事件ID和时间戳的事件
func NewResumeAnalyzedMessage(analysisID, applicationID string) *ResumeAnalyzedMessage {
	return &ResumeAnalyzedMessage{
		EventID:       uuid.NewString(),
		AnalysisID:    analysisID,
		ApplicationID: applicationID,
		ProcessedAt:   time.Now(),
	}
}
