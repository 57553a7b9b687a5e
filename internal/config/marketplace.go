package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// MarketplaceConfig holds operator-tunable marketplace rules: booking
// reference prefix, default currency and the overdue grace applied by the
// optional sweep.
type MarketplaceConfig struct {
	BookingReferencePrefix string `mapstructure:"bookingReferencePrefix"`
	DefaultCurrency        string `mapstructure:"defaultCurrency"`
	OverdueGraceDays       int    `mapstructure:"overdueGraceDays"`
}

func DefaultMarketplaceConfig() MarketplaceConfig {
	return MarketplaceConfig{
		BookingReferencePrefix: "BK",
		DefaultCurrency:        "XOF",
		OverdueGraceDays:       0,
	}
}

func validateMarketplaceConfig(cfg MarketplaceConfig) error {
	if strings.TrimSpace(cfg.BookingReferencePrefix) == "" {
		return errors.New("bookingReferencePrefix must not be empty")
	}
	if len(cfg.DefaultCurrency) != 3 {
		return errors.New("defaultCurrency must be a 3-letter code")
	}
	if cfg.OverdueGraceDays < 0 {
		return errors.New("overdueGraceDays must not be negative")
	}
	return nil
}

type MarketplaceConfigHolder struct {
	current atomic.Value // holds MarketplaceConfig
}

func NewMarketplaceConfigHolder() (*MarketplaceConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("marketplace")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/immokey/config") // Volume-mounted config
	v.AddConfigPath("/etc/immokey")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("IMMOKEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultMarketplaceConfig()
	v.SetDefault("marketplace.bookingReferencePrefix", defaults.BookingReferencePrefix)
	v.SetDefault("marketplace.defaultCurrency", defaults.DefaultCurrency)
	v.SetDefault("marketplace.overdueGraceDays", defaults.OverdueGraceDays)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg MarketplaceConfig
	if err := v.UnmarshalKey("marketplace", &cfg); err != nil {
		return nil, err
	}
	if err := validateMarketplaceConfig(cfg); err != nil {
		return nil, err
	}

	holder := &MarketplaceConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated MarketplaceConfig
		if err := v.UnmarshalKey("marketplace", &updated); err != nil {
			log.Printf("[marketplace-config] reload failed: %v", err)
			return
		}
		if err := validateMarketplaceConfig(updated); err != nil {
			log.Printf("[marketplace-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[marketplace-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *MarketplaceConfigHolder) Get() MarketplaceConfig {
	return h.current.Load().(MarketplaceConfig)
}

// NewStaticMarketplaceConfigHolder returns a holder with a fixed config,
// bypassing file watching. Used by tests.
func NewStaticMarketplaceConfigHolder(cfg MarketplaceConfig) *MarketplaceConfigHolder {
	holder := &MarketplaceConfigHolder{}
	holder.current.Store(cfg)
	return holder
}
