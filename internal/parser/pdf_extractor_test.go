package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFromFileUnsupportedFormat(t *testing.T) {
	extractor := NewNativePDFExtractor()

	dir := t.TempDir()
	path := filepath.Join(dir, "resume.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

	result := extractor.ExtractFromFile(context.Background(), path)
	require.NotNil(t, result)
	assert.False(t, result.Success, "非PDF扩展名应直接失败")
	assert.Contains(t, result.Error, "unsupported file format: .docx")
	assert.Empty(t, result.RawText)
}

func TestExtractFromFileNotFound(t *testing.T) {
	extractor := NewNativePDFExtractor()

	result := extractor.ExtractFromFile(context.Background(), "/nonexistent/resume.pdf")
	require.NotNil(t, result)
	assert.False(t, result.Success, "文件不存在应返回失败结果而非panic")
	assert.Contains(t, result.Error, "file not found")
}

func TestExtractFromFileMalformedPDF(t *testing.T) {
	extractor := NewNativePDFExtractor()

	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 garbage content"), 0o644))

	result := extractor.ExtractFromFile(context.Background(), path)
	require.NotNil(t, result)
	assert.False(t, result.Success, "损坏的PDF应返回失败结果")
	assert.NotEmpty(t, result.Error)
}

func TestExtractFromReaderRejectsWrongExtension(t *testing.T) {
	extractor := NewNativePDFExtractor()

	result := extractor.ExtractFromReader(context.Background(),
		strings.NewReader("plain text"), "resume.txt")
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported file format: .txt")
}

func TestExtractFromReaderCleansUpTempFile(t *testing.T) {
	extractor := NewNativePDFExtractor()

	before := countTempResumes(t)
	_ = extractor.ExtractFromReader(context.Background(),
		strings.NewReader("%PDF-1.4 not really"), "resume.pdf")
	after := countTempResumes(t)
	assert.Equal(t, before, after, "提取结束后不应残留临时文件")
}

func countTempResumes(t *testing.T) int {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "resume-*.pdf"))
	require.NoError(t, err)
	return len(matches)
}
