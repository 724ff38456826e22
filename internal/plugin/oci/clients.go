package oci

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oracle/oci-go-sdk/v65/announcementsservice"
	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/common/auth"
	"github.com/oracle/oci-go-sdk/v65/core"
	"github.com/oracle/oci-go-sdk/v65/database"
	"github.com/oracle/oci-go-sdk/v65/identity"
	"github.com/oracle/oci-go-sdk/v65/limits"

	"github.com/yairfalse/ocitally/internal/config"
)

// ErrAuth is returned when no configuration provider can be built.
var ErrAuth = errors.New("oci authentication failed")

// NewConfigurationProvider builds the SDK credential source for the configured
// auth mode and checks that it resolves a tenancy.
func NewConfigurationProvider(cfg config.OCIConfig) (common.ConfigurationProvider, error) {
	var (
		provider common.ConfigurationProvider
		err      error
	)

	switch cfg.Auth {
	case config.AuthInstancePrincipal:
		provider, err = auth.InstancePrincipalConfigurationProvider()
		if err != nil {
			return nil, fmt.Errorf("%w: instance principal: %w", ErrAuth, err)
		}
	case config.AuthConfigFile, "":
		path, perr := expandHome(cfg.ConfigFile)
		if perr != nil {
			return nil, fmt.Errorf("%w: %w", ErrAuth, perr)
		}
		provider, err = common.ConfigurationProviderFromFileWithProfile(path, cfg.Profile, "")
		if err != nil {
			return nil, fmt.Errorf("%w: config file %s [%s]: %w", ErrAuth, path, cfg.Profile, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown auth mode %q", ErrAuth, cfg.Auth)
	}

	if cfg.Tenancy == "" {
		if _, err := provider.TenancyOCID(); err != nil {
			return nil, fmt.Errorf("%w: resolve tenancy: %w", ErrAuth, err)
		}
	}
	return provider, nil
}

// TenancyID returns override when set, otherwise the provider's tenancy.
func TenancyID(provider common.ConfigurationProvider, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	id, err := provider.TenancyOCID()
	if err != nil {
		return "", fmt.Errorf("%w: resolve tenancy: %w", ErrAuth, err)
	}
	return id, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// SDKClients builds real SDK clients on first use, one per service and region.
type SDKClients struct {
	provider common.ConfigurationProvider

	mu            sync.Mutex
	identity      map[string]IdentityAPI
	compute       map[string]ComputeAPI
	blockstorage  map[string]BlockstorageAPI
	database      map[string]DatabaseAPI
	limits        map[string]LimitsAPI
	announcements map[string]AnnouncementAPI
}

// NewSDKClients creates a client factory over provider.
func NewSDKClients(provider common.ConfigurationProvider) *SDKClients {
	return &SDKClients{
		provider:      provider,
		identity:      make(map[string]IdentityAPI),
		compute:       make(map[string]ComputeAPI),
		blockstorage:  make(map[string]BlockstorageAPI),
		database:      make(map[string]DatabaseAPI),
		limits:        make(map[string]LimitsAPI),
		announcements: make(map[string]AnnouncementAPI),
	}
}

func cached[T any](mu *sync.Mutex, m map[string]T, region string, build func() (T, error)) (T, error) {
	mu.Lock()
	defer mu.Unlock()
	if c, ok := m[region]; ok {
		return c, nil
	}
	c, err := build()
	if err != nil {
		var zero T
		return zero, err
	}
	m[region] = c
	return c, nil
}

// Identity returns an identity client bound to region.
func (s *SDKClients) Identity(region string) (IdentityAPI, error) {
	return cached(&s.mu, s.identity, region, func() (IdentityAPI, error) {
		c, err := identity.NewIdentityClientWithConfigurationProvider(s.provider)
		if err != nil {
			return nil, fmt.Errorf("create identity client: %w", err)
		}
		if region != "" {
			c.SetRegion(region)
		}
		return c, nil
	})
}

// Compute returns a compute client bound to region.
func (s *SDKClients) Compute(region string) (ComputeAPI, error) {
	return cached(&s.mu, s.compute, region, func() (ComputeAPI, error) {
		c, err := core.NewComputeClientWithConfigurationProvider(s.provider)
		if err != nil {
			return nil, fmt.Errorf("create compute client: %w", err)
		}
		if region != "" {
			c.SetRegion(region)
		}
		return c, nil
	})
}

// Blockstorage returns a block storage client bound to region.
func (s *SDKClients) Blockstorage(region string) (BlockstorageAPI, error) {
	return cached(&s.mu, s.blockstorage, region, func() (BlockstorageAPI, error) {
		c, err := core.NewBlockstorageClientWithConfigurationProvider(s.provider)
		if err != nil {
			return nil, fmt.Errorf("create blockstorage client: %w", err)
		}
		if region != "" {
			c.SetRegion(region)
		}
		return c, nil
	})
}

// Database returns a database client bound to region.
func (s *SDKClients) Database(region string) (DatabaseAPI, error) {
	return cached(&s.mu, s.database, region, func() (DatabaseAPI, error) {
		c, err := database.NewDatabaseClientWithConfigurationProvider(s.provider)
		if err != nil {
			return nil, fmt.Errorf("create database client: %w", err)
		}
		if region != "" {
			c.SetRegion(region)
		}
		return c, nil
	})
}

// Limits returns a limits client bound to region.
func (s *SDKClients) Limits(region string) (LimitsAPI, error) {
	return cached(&s.mu, s.limits, region, func() (LimitsAPI, error) {
		c, err := limits.NewLimitsClientWithConfigurationProvider(s.provider)
		if err != nil {
			return nil, fmt.Errorf("create limits client: %w", err)
		}
		if region != "" {
			c.SetRegion(region)
		}
		return c, nil
	})
}

// Announcements returns an announcements client bound to region.
func (s *SDKClients) Announcements(region string) (AnnouncementAPI, error) {
	return cached(&s.mu, s.announcements, region, func() (AnnouncementAPI, error) {
		c, err := announcementsservice.NewAnnouncementClientWithConfigurationProvider(s.provider)
		if err != nil {
			return nil, fmt.Errorf("create announcement client: %w", err)
		}
		if region != "" {
			c.SetRegion(region)
		}
		return c, nil
	})
}
