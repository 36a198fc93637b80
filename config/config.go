package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// JIRA API設定
	UpstreamURL        string
	UpstreamCredential string
	UpstreamAuthScheme string

	// サーバー設定
	Port         int
	DevMode      bool
	MockJira     bool
	StaticDir    string
	DevServerURL string

	// フロントエンドへそのまま渡す設定 (GET /config)
	ClientConfig map[string]interface{}

	// ログ設定
	LogLevel  string
	LogFormat string
	LogOutput string
	LogMaxAge int

	// 読み込んだ設定ファイル (存在しなかった場合は空)
	ConfigFile string
}

// fileConfig は YAML 設定ファイルの形式です
type fileConfig struct {
	ClientConfig map[string]interface{} `yaml:"client_config"`
	Jira         struct {
		URL        string `yaml:"url"`
		AuthScheme string `yaml:"auth_scheme"`
	} `yaml:"jira"`
}

// DefaultConfigFile は SZPION_CONFIG が未設定の場合に読む設定ファイルです
const DefaultConfigFile = "szpion.yml"

// LoadConfig は環境変数と設定ファイルから設定を読み込みます
// path が空の場合は SZPION_CONFIG、それも空なら DefaultConfigFile を使います。
// 既定の設定ファイルが存在しないのはエラーではありません
func LoadConfig(path string) (*Config, error) {
	// .envファイルを読み込む
	_ = godotenv.Load()

	explicit := path != "" || os.Getenv("SZPION_CONFIG") != ""
	if path == "" {
		path = getEnvWithDefault("SZPION_CONFIG", DefaultConfigFile)
	}

	config := &Config{
		UpstreamURL:        strings.TrimRight(os.Getenv("JIRA_URL"), "/"),
		UpstreamCredential: os.Getenv("JIRA_AUTH_TOKEN"),
		UpstreamAuthScheme: os.Getenv("JIRA_AUTH_SCHEME"),
		Port:               getEnvAsIntWithDefault("SZPION_PORT", 8080),
		DevMode:            getEnvAsBoolWithDefault("SZPION_DEV_MODE", false),
		MockJira:           getEnvAsBoolWithDefault("SZPION_MOCK_JIRA", false),
		StaticDir:          getEnvWithDefault("SZPION_STATIC_DIR", "client"),
		DevServerURL:       getEnvWithDefault("SZPION_DEV_SERVER_URL", "http://localhost:8081"),
		LogLevel:           getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:          getEnvWithDefault("LOG_FORMAT", "text"),
		LogOutput:          getEnvWithDefault("LOG_OUTPUT", "stdout"),
		LogMaxAge:          getEnvAsIntWithDefault("LOG_MAX_AGE", 0),
	}

	fc, err := readConfigFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// 既定の設定ファイルは任意
	case err != nil:
		return nil, err
	default:
		config.ConfigFile = path
		config.ClientConfig = stringKeys(fc.ClientConfig).(map[string]interface{})
		// 環境変数が優先
		if config.UpstreamURL == "" {
			config.UpstreamURL = strings.TrimRight(fc.Jira.URL, "/")
		}
		if config.UpstreamAuthScheme == "" {
			config.UpstreamAuthScheme = fc.Jira.AuthScheme
		}
	}

	if config.UpstreamAuthScheme == "" {
		config.UpstreamAuthScheme = "Basic"
	}
	if config.ClientConfig == nil {
		config.ClientConfig = map[string]interface{}{}
	}

	return config, nil
}

func readConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイル読み込みエラー: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("設定ファイル解析エラー %s: %w", path, err)
	}
	return &fc, nil
}

// stringKeys は YAML のマップのキーを文字列に揃えます
// yaml.v3 はキーが文字列でないマップを map[interface{}]interface{} として返し、JSONに変換できないためです
func stringKeys(v interface{}) interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[k] = stringKeys(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(m))
		for i, val := range m {
			out[i] = stringKeys(val)
		}
		return out
	default:
		return v
	}
}

// Validate は live モードで必須の設定が揃っているかを確認します
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("ポート番号が不正です: %d", c.Port)
	}
	if c.MockJira {
		return nil
	}
	if c.UpstreamURL == "" {
		return errors.New("JIRA_URL が設定されていません")
	}
	if c.UpstreamCredential == "" {
		return errors.New("JIRA_AUTH_TOKEN が設定されていません")
	}
	return nil
}

// Address はサーバーの待ち受けアドレスを返します
func (c *Config) Address() string {
	return ":" + strconv.Itoa(c.Port)
}

// デフォルト値付きで環境変数を取得
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// デフォルト値付きで環境変数を整数として取得
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// デフォルト値付きで環境変数を真偽値として取得
func getEnvAsBoolWithDefault(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
