package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
)

// MinIO 对象存储客户端，归档原始简历与解析文本
// 归档属于旁路操作，上传失败只记日志，不影响分析流程
type MinIO struct {
	client *minio.Client
	cfg    *config.MinIOConfig
}

// NewMinIO 创建MinIO客户端并确保目标桶存在
func NewMinIO(ctx context.Context, cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{client: client, cfg: cfg}
	for _, bucket := range []string{cfg.ResumeBucket, cfg.ParsedTextBucket} {
		if err := m.ensureBucket(ctx, bucket); err != nil {
			return nil, err
		}
	}

	logger.Logger.Info().Str("endpoint", cfg.Endpoint).Msg("成功连接到MinIO")
	return m, nil
}

func (m *MinIO) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("检查桶 %s 失败: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: m.cfg.Location}); err != nil {
		return fmt.Errorf("创建桶 %s 失败: %w", bucket, err)
	}
	logger.Logger.Info().Str("bucket", bucket).Msg("创建存储桶")
	return nil
}

// UploadResumeFile 归档原始简历文件，返回对象路径
func (m *MinIO) UploadResumeFile(ctx context.Context, analysisID string, reader io.Reader, size int64) (string, error) {
	objectName := fmt.Sprintf("%s.pdf", analysisID)
	_, err := m.client.PutObject(ctx, m.cfg.ResumeBucket, objectName, reader, size,
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", fmt.Errorf("上传简历文件失败: %w", err)
	}
	return fmt.Sprintf("%s/%s", m.cfg.ResumeBucket, objectName), nil
}

// UploadParsedText 归档解析后的纯文本，返回对象路径
func (m *MinIO) UploadParsedText(ctx context.Context, analysisID, text string) (string, error) {
	objectName := fmt.Sprintf("%s.txt", analysisID)
	reader := bytes.NewReader([]byte(text))
	_, err := m.client.PutObject(ctx, m.cfg.ParsedTextBucket, objectName, reader, int64(reader.Len()),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return "", fmt.Errorf("上传解析文本失败: %w", err)
	}
	return fmt.Sprintf("%s/%s", m.cfg.ParsedTextBucket, objectName), nil
}

// GetParsedText 读取归档的解析文本
func (m *MinIO) GetParsedText(ctx context.Context, analysisID string) (string, error) {
	objectName := fmt.Sprintf("%s.txt", analysisID)
	obj, err := m.client.GetObject(ctx, m.cfg.ParsedTextBucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("读取解析文本失败: %w", err)
	}
	defer obj.Close()

	var builder strings.Builder
	if _, err := io.Copy(&builder, obj); err != nil {
		return "", fmt.Errorf("读取解析文本内容失败: %w", err)
	}
	return builder.String(), nil
}
