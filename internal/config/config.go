package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Address string `yaml:"address"` // 监听地址，如 :8080
	// MaxUploadSize 单次上传大小上限（字节），0表示使用内置默认值
	MaxUploadSize int64 `yaml:"max_upload_size"`
}

// MySQLConfig MySQL配置
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	// 连接池设置
	MaxIdleConns int `yaml:"max_idle_conns"`
	MaxOpenConns int `yaml:"max_open_conns"`
	// 连接生命周期
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`
}

// DSN 拼接GORM使用的MySQL连接串
func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
}

// MinIOConfig MinIO对象存储配置
type MinIOConfig struct {
	Endpoint         string `yaml:"endpoint"`
	AccessKeyID      string `yaml:"access_key_id"`
	SecretAccessKey  string `yaml:"secret_access_key"`
	UseSSL           bool   `yaml:"use_ssl"`
	ResumeBucket     string `yaml:"resume_bucket"`      // 原始简历文件桶
	ParsedTextBucket string `yaml:"parsed_text_bucket"` // 解析文本桶
	Location         string `yaml:"location"`
}

// RabbitMQConfig RabbitMQ配置
type RabbitMQConfig struct {
	URL                    string `yaml:"url"`
	AnalyzedEventsExchange string `yaml:"analyzed_events_exchange"` // 分析完成事件交换机
	AnalyzedRoutingKey     string `yaml:"analyzed_routing_key"`
}

// TracingConfig OpenTelemetry配置
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // OTLP gRPC端点，如 localhost:4317
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	TimeFormat   string `yaml:"time_format"`
	ReportCaller bool   `yaml:"report_caller"`
}

// ParserConfig 文档提取器配置
type ParserConfig struct {
	// Engine 选择PDF提取引擎：native（逐页，默认）或 eino（整文档）
	Engine string `yaml:"engine"`
}

// NLPConfig 实体提取的可选NLP能力配置
type NLPConfig struct {
	// EnableNounPhrases 是否启用名词短语启发式技能提取
	// 关闭时该提取通道直接跳过，不视为错误
	EnableNounPhrases bool `yaml:"enable_noun_phrases"`
}

// Config 应用配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Redis    RedisConfig    `yaml:"redis"`
	MinIO    MinIOConfig    `yaml:"minio"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Logger   LoggerConfig   `yaml:"logger"`
	Parser   ParserConfig   `yaml:"parser"`
	NLP      NLPConfig      `yaml:"nlp"`
}

// LoadConfig 加载配置文件
// 未指定路径时在常见位置查找；测试环境下找不到文件时返回默认配置
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		searchPaths := []string{
			"config.yaml",
			"./config.yaml",
			"../config.yaml",
			"../../config.yaml",
			filepath.Join(os.Getenv("HOME"), ".resume-match", "config.yaml"),
		}

		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			searchPaths = append(searchPaths,
				filepath.Join(execDir, "config.yaml"),
				filepath.Join(execDir, "..", "config.yaml"),
			)
		}

		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}

		if configPath == "" {
			if inTestEnvironment() {
				return createDefaultConfig(), nil
			}
			configPath = "config.yaml"
		}
	}

	if _, err := os.Stat(configPath); err != nil {
		if inTestEnvironment() {
			return createDefaultConfig(), nil
		}
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)

	return &config, nil
}

// applyEnvOverrides 从环境变量覆盖敏感配置
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		config.MySQL.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		config.Redis.Password = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY_ID"); v != "" {
		config.MinIO.AccessKeyID = v
	}
	if v := os.Getenv("MINIO_SECRET_ACCESS_KEY"); v != "" {
		config.MinIO.SecretAccessKey = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		config.RabbitMQ.URL = v
	}
}

func applyDefaults(config *Config) {
	if config.Server.Address == "" {
		config.Server.Address = ":8080"
	}
	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
	if config.Parser.Engine == "" {
		config.Parser.Engine = "native"
	}
	if config.Tracing.ServiceName == "" {
		config.Tracing.ServiceName = "resume-match"
	}
	if config.Tracing.SampleRatio == 0 {
		config.Tracing.SampleRatio = 0.1
	}
	if config.MinIO.ResumeBucket == "" {
		config.MinIO.ResumeBucket = "resumes"
	}
	if config.MinIO.ParsedTextBucket == "" {
		config.MinIO.ParsedTextBucket = "parsed-text"
	}
	if config.RabbitMQ.AnalyzedEventsExchange == "" {
		config.RabbitMQ.AnalyzedEventsExchange = "resume.events"
	}
	if config.RabbitMQ.AnalyzedRoutingKey == "" {
		config.RabbitMQ.AnalyzedRoutingKey = "resume.analyzed"
	}
}

// createDefaultConfig 测试环境使用的默认配置
func createDefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)
	config.Logger.Format = "pretty"
	config.NLP.EnableNounPhrases = true
	return config
}

func inTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			return true
		}
	}
	return false
}
