package cmd

import (
	"strings"

	"github.com/propsheet/propsheet/pkg/groupstate"
	"github.com/propsheet/propsheet/pkg/groupstate/file"
	"github.com/propsheet/propsheet/pkg/groupstate/memory"
	"github.com/propsheet/propsheet/pkg/groupstate/redis"
	"github.com/propsheet/propsheet/pkg/groupstate/sqlite"
)

var supportedGroupStateProviders = []string{"memory", "file", "redis", "sqlite"}

func NewGroupStore(storeURL string) (groupstate.Store, error) {
	provider := parseGroupStateProvider(storeURL)

	switch provider {
	case "memory":
		return memory.NewStore(), nil
	case "redis":
		return redis.NewStore(storeURL)
	case "sqlite":
		return sqlite.NewStore(storeURL)
	default:
		return file.NewStore(storeURL), nil
	}
}

func parseGroupStateProvider(storeURL string) string {
	parts := strings.Split(storeURL, "://")

	provider := parts[0]
	for _, supported := range supportedGroupStateProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
