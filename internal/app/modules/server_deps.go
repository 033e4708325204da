package modules

import (
	"strings"

	"promptdeck.io/promptdeck/internal/api/middleware"
	"promptdeck.io/promptdeck/internal/config"
	"promptdeck.io/promptdeck/internal/pkg/apikey"
	"promptdeck.io/promptdeck/internal/service"
	"promptdeck.io/promptdeck/internal/store"
)

// NewServices builds base service deps then lets each module contribute
// explicit wiring.
func NewServices(cfg *config.Config, s store.Store, mods []Module) *service.Services {
	deps := service.Deps{
		Store: s,
		Keys:  apikey.NewGenerator(cfg.Security.APIKeyCost),
	}
	for _, mod := range mods {
		if mod == nil {
			continue
		}
		contributor, ok := mod.(ServiceDepsContributor)
		if !ok {
			continue
		}
		contributor.ContributeServiceDeps(&deps)
	}
	return service.New(deps)
}

// NewJWTConfig derives session token settings from cfg.
func NewJWTConfig(cfg *config.Config) middleware.JWTConfig {
	verificationKeys := make([][]byte, 0, len(cfg.Security.JWTVerificationKeys))
	for _, key := range cfg.Security.JWTVerificationKeys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		verificationKeys = append(verificationKeys, []byte(key))
	}
	return middleware.JWTConfig{
		SigningKey:       []byte(cfg.Security.SessionSecret),
		VerificationKeys: verificationKeys,
		Issuer:           cfg.Session.Issuer,
		ExpiresIn:        cfg.Session.Lifetime,
	}
}
