package config

import "time"

// MySQLConfig MySQL 连接配置。
type MySQLConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	Charset  string `json:"charset" yaml:"charset"`

	// 连接池配置
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`       // 最大打开连接数
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`       // 最大空闲连接数
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"` // 连接最大存活时间
}

// DefaultMySQLConfig 返回本地开发的默认配置（与 docker-compose.yml 对齐）。
func DefaultMySQLConfig() MySQLConfig {
	return MySQLConfig{
		Host:            envString("MYSQL_HOST", "127.0.0.1"),
		Port:            envInt("MYSQL_PORT", 3306),
		User:            envString("MYSQL_USER", "devconnect"),
		Password:        envString("MYSQL_PASSWORD", "devconnect"),
		Database:        envString("MYSQL_DATABASE", "devconnect"),
		Charset:         "utf8mb4",
		MaxOpenConns:    100,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
	}
}
