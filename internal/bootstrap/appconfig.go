package bootstrap

import (
	"fmt"
	"os"
	"strings"
)

// AppConfig holds settings only the demo service uses.
type AppConfig struct {
	// Users seeds the account store, from FHURL_DEMO_USERS
	// ("john:asd,jill:secret").
	Users map[string]string
}

const demoUsersEnv = "FHURL_DEMO_USERS"

func loadAppConfig() (AppConfig, error) {
	cfg := AppConfig{Users: map[string]string{}}
	raw := strings.TrimSpace(os.Getenv(demoUsersEnv))
	if raw == "" {
		cfg.Users["john"] = "asd"
		return cfg, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		name, pass, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" || pass == "" {
			return AppConfig{}, fmt.Errorf("%s: bad entry %q (want user:password)", demoUsersEnv, pair)
		}
		cfg.Users[name] = pass
	}
	return cfg, nil
}
