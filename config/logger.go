package config

// LoggerConfig 日志配置。
// 默认输出 stdout/stderr，容器场景直接走 docker logs；
// 文件输出不做滚动，滚动由外部系统负责。
type LoggerConfig struct {
	Level            string   `json:"level" yaml:"level"`                       // 日志级别: debug/info/warn/error
	Encoding         string   `json:"encoding" yaml:"encoding"`                 // 编码: json/console
	Development      bool     `json:"development" yaml:"development"`           // 开发模式（error 级别带堆栈）
	EnableColor      bool     `json:"enableColor" yaml:"enableColor"`           // console 编码时是否彩色
	OutputPaths      []string `json:"outputPaths" yaml:"outputPaths"`           // 普通日志输出路径
	ErrorOutputPaths []string `json:"errorOutputPaths" yaml:"errorOutputPaths"` // 错误日志输出路径
}

// DefaultLoggerConfig 返回本地开发的默认配置。
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:            envString("LOG_LEVEL", "info"),
		Encoding:         envString("LOG_ENCODING", "json"),
		Development:      envBool("LOG_DEV", false),
		EnableColor:      false,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
}
