package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
)

var mysqlTracer = otel.Tracer("resume-match-go/storage/mysql")

// ErrJobNotFound 岗位不存在
var ErrJobNotFound = errors.New("job not found")

// ErrAnalysisNotFound 分析记录不存在
var ErrAnalysisNotFound = errors.New("resume analysis not found")

type gormSpanKey struct{}

// GormTracingPlugin GORM插件，为数据库操作创建追踪span
type GormTracingPlugin struct {
	tracer trace.Tracer
	dbName string
}

// NewGormTracingPlugin 创建追踪插件
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{
		tracer: mysqlTracer,
		dbName: dbName,
	}
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 注册GORM回调
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after()); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after()); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after()); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after()); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("otel:before_row", p.before("ROW")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("otel:after_row", p.after()); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("RAW")); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after()); err != nil {
		return err
	}

	return nil
}

func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		opts := []trace.SpanStartOption{
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			),
		}
		if sql := db.Statement.SQL.String(); sql != "" {
			opts = append(opts, trace.WithAttributes(
				attribute.String("db.statement", tracing.SafeSQL(sql)),
			))
		}

		newCtx, span := p.tracer.Start(ctx, fmt.Sprintf("%s %s", operation, tableName), opts...)
		db.Statement.Context = context.WithValue(newCtx, gormSpanKey{}, span)
	}
}

func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value(gormSpanKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

		switch {
		case db.Error == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(db.Error, gorm.ErrRecordNotFound):
			// 记录不存在属于正常业务分支
			span.SetAttributes(attribute.String("error.type", "record_not_found"))
			span.SetStatus(codes.Ok, "record not found")
		default:
			span.RecordError(db.Error)
			span.SetStatus(codes.Error, db.Error.Error())
		}
	}
}

// MySQL 关系数据库客户端
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL客户端，完成连接池设置、追踪插件注册与表结构迁移
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
		PrepareStmt:                              true,
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	if err := db.Use(NewGormTracingPlugin(cfg.Database)); err != nil {
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	m := &MySQL{db: db, cfg: cfg}
	if err := m.autoMigrateSchema(); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	logger.Logger.Info().Str("database", cfg.Database).Msg("成功连接到MySQL并完成表结构迁移")
	return m, nil
}

func (m *MySQL) autoMigrateSchema() error {
	// 迁移阶段关闭SQL日志
	silentDB := m.db.Session(&gorm.Session{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	return silentDB.AutoMigrate(
		&models.Job{},
		&models.ResumeAnalysis{},
		&models.ExtractedSkill{},
		&models.ExtractedExperience{},
		&models.ExtractedEducation{},
		&models.ResumeMatchScore{},
	)
}

// DB 返回GORM实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StoreAnalysis 原子化持久化一次分析结果
// 父记录按application_id覆盖写入，子记录先删后插，事务内全部完成
func (m *MySQL) StoreAnalysis(ctx context.Context, analysis *models.ResumeAnalysis,
	skills []models.ExtractedSkill, experience []models.ExtractedExperience,
	education []models.ExtractedEducation) error {

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "application_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"raw_text_excerpt", "confidence_score", "processed_at", "updated_at",
			}),
		}).Create(analysis).Error; err != nil {
			return fmt.Errorf("写入分析主记录失败: %w", err)
		}

		// 覆盖写入前先读回实际生效的analysis_id：
		// application_id冲突时保留的是旧记录的主键
		var persisted models.ResumeAnalysis
		if err := tx.Where("application_id = ?", analysis.ApplicationID).First(&persisted).Error; err != nil {
			return fmt.Errorf("读取分析主记录失败: %w", err)
		}
		analysisID := persisted.AnalysisID
		analysis.AnalysisID = analysisID

		for _, model := range []interface{}{
			&models.ExtractedSkill{}, &models.ExtractedExperience{}, &models.ExtractedEducation{},
		} {
			if err := tx.Where("analysis_id = ?", analysisID).Delete(model).Error; err != nil {
				return fmt.Errorf("清理旧实体记录失败: %w", err)
			}
		}

		for i := range skills {
			skills[i].AnalysisID = analysisID
		}
		if len(skills) > 0 {
			if err := tx.Create(&skills).Error; err != nil {
				return fmt.Errorf("写入技能明细失败: %w", err)
			}
		}

		for i := range experience {
			experience[i].AnalysisID = analysisID
		}
		if len(experience) > 0 {
			if err := tx.Create(&experience).Error; err != nil {
				return fmt.Errorf("写入经历明细失败: %w", err)
			}
		}

		for i := range education {
			education[i].AnalysisID = analysisID
		}
		if len(education) > 0 {
			if err := tx.Create(&education).Error; err != nil {
				return fmt.Errorf("写入学历明细失败: %w", err)
			}
		}

		return nil
	})
}

// StoreMatchScore 写入或覆盖匹配分数，(analysis_id, job_id) 唯一
func (m *MySQL) StoreMatchScore(ctx context.Context, score *models.ResumeMatchScore) error {
	return m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "analysis_id"}, {Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"overall_score", "skills_score", "experience_score",
			"education_score", "text_similarity_score", "details_json", "matched_at",
		}),
	}).Create(score).Error
}

// GetAnalysisByApplicationID 按投递ID查分析主记录
func (m *MySQL) GetAnalysisByApplicationID(ctx context.Context, applicationID string) (*models.ResumeAnalysis, error) {
	var analysis models.ResumeAnalysis
	err := m.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&analysis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// GetAnalysisByID 按分析ID查主记录
func (m *MySQL) GetAnalysisByID(ctx context.Context, analysisID string) (*models.ResumeAnalysis, error) {
	var analysis models.ResumeAnalysis
	err := m.db.WithContext(ctx).Where("analysis_id = ?", analysisID).First(&analysis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// GetAnalysisSummary 按分析ID汇总主记录及其各类实体数量
func (m *MySQL) GetAnalysisSummary(ctx context.Context, analysisID string) (*types.AnalysisSummary, error) {
	analysis, err := m.GetAnalysisByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	return m.summarizeAnalysis(ctx, analysis)
}

// GetAnalysisSummaryByApplicationID 按投递ID汇总，投递与分析记录一一对应
func (m *MySQL) GetAnalysisSummaryByApplicationID(ctx context.Context, applicationID string) (*types.AnalysisSummary, error) {
	analysis, err := m.GetAnalysisByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return m.summarizeAnalysis(ctx, analysis)
}

func (m *MySQL) summarizeAnalysis(ctx context.Context, analysis *models.ResumeAnalysis) (*types.AnalysisSummary, error) {
	summary := &types.AnalysisSummary{
		AnalysisID:      analysis.AnalysisID,
		ApplicationID:   analysis.ApplicationID,
		ProcessedAt:     analysis.ProcessedAt,
		ConfidenceScore: analysis.ConfidenceScore,
	}

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.ExtractedSkill{}, &summary.SkillsCount},
		{&models.ExtractedExperience{}, &summary.ExperienceCount},
		{&models.ExtractedEducation{}, &summary.EducationCount},
		{&models.ResumeMatchScore{}, &summary.MatchScoresCount},
	}
	for _, c := range counts {
		if err := m.db.WithContext(ctx).Model(c.model).
			Where("analysis_id = ?", analysis.AnalysisID).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	return summary, nil
}

// GetExtractedEntities 读回一次分析的全部实体明细，按主键序返回
func (m *MySQL) GetExtractedEntities(ctx context.Context, analysisID string) (
	[]models.ExtractedSkill, []models.ExtractedExperience, []models.ExtractedEducation, error) {

	var skills []models.ExtractedSkill
	if err := m.db.WithContext(ctx).Where("analysis_id = ?", analysisID).
		Order("skill_db_id").Find(&skills).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("读取技能明细失败: %w", err)
	}

	var experience []models.ExtractedExperience
	if err := m.db.WithContext(ctx).Where("analysis_id = ?", analysisID).
		Order("experience_db_id").Find(&experience).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("读取经历明细失败: %w", err)
	}

	var education []models.ExtractedEducation
	if err := m.db.WithContext(ctx).Where("analysis_id = ?", analysisID).
		Order("education_db_id").Find(&education).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("读取学历明细失败: %w", err)
	}

	return skills, experience, education, nil
}

// GetJobByID 查岗位记录
func (m *MySQL) GetJobByID(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	err := m.db.WithContext(ctx).Where("job_id = ?", jobID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// SaveJob 写入岗位记录，已存在时整体覆盖
func (m *MySQL) SaveJob(ctx context.Context, job *models.Job) error {
	return m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		UpdateAll: true,
	}).Create(job).Error
}

// JobToRequirements 岗位记录转匹配输入
func JobToRequirements(job *models.Job) (types.JobRequirements, error) {
	req := types.JobRequirements{
		JobID:        job.JobID,
		Title:        job.Title,
		Description:  job.Description,
		Requirements: job.Requirements,
	}
	if len(job.SkillsRequiredJSON) > 0 {
		if err := json.Unmarshal(job.SkillsRequiredJSON, &req.SkillsRequired); err != nil {
			return req, fmt.Errorf("解析岗位技能要求失败: %w", err)
		}
	}
	return req, nil
}

// MatchDetailsJSON 匹配明细序列化为JSON列
func MatchDetailsJSON(result *types.MatchResult) (datatypes.JSON, error) {
	details := map[string]interface{}{
		"detailed_analysis":    result.DetailedAnalysis,
		"missing_requirements": result.MissingRequirements,
		"strengths":            result.Strengths,
		"recommendations":      result.Recommendations,
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("序列化匹配明细失败: %w", err)
	}
	return datatypes.JSON(data), nil
}
