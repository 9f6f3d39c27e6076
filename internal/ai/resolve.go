package ai

import (
	"regexp"

	"sumbot/internal/apperr"
	"sumbot/internal/config"
)

// keyPattern is the accepted credential shape: the "sk-" prefix
// followed by 40 to 50 alphanumeric characters.
var keyPattern = regexp.MustCompile(`^sk-[A-Za-z0-9]{40,50}$`)

// ResolvedConfig is the effective service configuration for one call.
// It is computed fresh per request so a caller-supplied key can never
// leak into other requests through a cached client.
type ResolvedConfig struct {
	ServiceName string
	APIBase     string
	Model       string
	APIKey      string
}

// ValidKeyFormat reports whether key matches the credential pattern.
func ValidKeyFormat(key string) bool {
	return keyPattern.MatchString(key)
}

// ResolveConfig resolves the effective service configuration.
// Credential precedence: explicit override, then the service's stored
// key, then the cross-service default key.
func ResolveConfig(cfg *config.AIConfig, override string) (ResolvedConfig, error) {
	serviceName := cfg.Default
	if serviceName == "" {
		return ResolvedConfig{}, apperr.New(apperr.KindIncompleteServiceConfig, "未配置默认AI服务")
	}

	service, ok := cfg.Services[serviceName]
	if !ok {
		return ResolvedConfig{}, apperr.New(apperr.KindIncompleteServiceConfig, "未找到AI服务配置: %s", serviceName)
	}
	if service.APIBase == "" {
		return ResolvedConfig{}, apperr.New(apperr.KindIncompleteServiceConfig, "服务 %s 未配置 api_base", serviceName)
	}
	if service.Model == "" {
		return ResolvedConfig{}, apperr.New(apperr.KindIncompleteServiceConfig, "服务 %s 未配置 model", serviceName)
	}

	var apiKey string
	switch {
	case override != "":
		if !ValidKeyFormat(override) {
			return ResolvedConfig{}, apperr.New(apperr.KindInvalidCredentialFormat, "API密钥格式无效")
		}
		apiKey = override
	case service.APIKey != "":
		apiKey = service.APIKey
	case cfg.DefaultAPIKey != "":
		apiKey = cfg.DefaultAPIKey
	default:
		return ResolvedConfig{}, apperr.New(apperr.KindNoCredentialAvailable, "未提供API密钥且未配置默认密钥")
	}

	return ResolvedConfig{
		ServiceName: serviceName,
		APIBase:     service.APIBase,
		Model:       service.Model,
		APIKey:      apiKey,
	}, nil
}
