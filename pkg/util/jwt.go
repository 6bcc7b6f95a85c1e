package util

import (
	"errors"
	"time"

	"DevConnect/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid 表示 token 非法或签名不匹配。
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenExpired 表示 token 已过期。
	ErrTokenExpired = errors.New("token is expired")
)

// Claims 访问令牌声明。
// 令牌由外部认证服务签发，这里只校验签名与有效期，
// UserUUID 是贯穿 REST 与实时通道的唯一身份。
type Claims struct {
	UserUUID string `json:"user_uuid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

var jwtCfg = config.DefaultJWTConfig()

// InitJWT 注入令牌配置（进程启动时调用一次）。
func InitJWT(cfg config.JWTConfig) {
	jwtCfg = cfg
}

// ParseToken 解析并校验访问令牌。
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(jwtCfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid || claims.UserUUID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// GenerateToken 签发访问令牌。
// 正式环境由外部认证服务签发，这里保留签发能力用于本地联调与测试。
func GenerateToken(userUUID, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserUUID: userUUID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtCfg.Secret))
}
