package config

// JWTConfig 令牌校验配置。
// 令牌由外部认证服务签发，本服务只负责验签；
// Secret 必须与签发方一致。
type JWTConfig struct {
	Secret string `json:"secret" yaml:"secret"`
	Issuer string `json:"issuer" yaml:"issuer"`
}

// DefaultJWTConfig 返回本地开发的默认配置。
// 生产环境必须通过 JWT_SECRET 覆盖。
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		Secret: envString("JWT_SECRET", "devconnect-local-secret"),
		Issuer: envString("JWT_ISSUER", "devconnect-auth"),
	}
}
