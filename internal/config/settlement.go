package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SettlementRules are the operator-tunable knobs of the allocation engine.
// ManagementFeeRate is the platform's cut applied on top of each partner
// share (the distributor commission is already netted out upstream).
type SettlementRules struct {
	ManagementFeeRate float64 `mapstructure:"managementFeeRate"`
}

func DefaultSettlementRules() SettlementRules {
	return SettlementRules{
		ManagementFeeRate: 0.10,
	}
}

// SettlementRulesHolder serves the current rules and hot-reloads them when
// the settlement.yml config file changes on disk.
type SettlementRulesHolder struct {
	current atomic.Value // holds SettlementRules
}

func NewSettlementRulesHolder() (*SettlementRulesHolder, error) {
	v := viper.New()

	v.SetConfigName("settlement")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/tunebridge/config")
	v.AddConfigPath("/etc/tunebridge")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TUNEBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSettlementRules()
	v.SetDefault("settlement.managementFeeRate", defaults.ManagementFeeRate)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var rules SettlementRules
	if err := v.UnmarshalKey("settlement", &rules); err != nil {
		return nil, err
	}
	if err := validateSettlementRules(rules); err != nil {
		return nil, err
	}

	holder := &SettlementRulesHolder{}
	holder.current.Store(rules)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SettlementRules
		if err := v.UnmarshalKey("settlement", &updated); err != nil {
			log.Printf("[settlement-config] reload failed: %v", err)
			return
		}
		if err := validateSettlementRules(updated); err != nil {
			log.Printf("[settlement-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
	})

	return holder, nil
}

// StaticSettlementRules builds a holder that never reloads. Intended for tests.
func StaticSettlementRules(rules SettlementRules) *SettlementRulesHolder {
	holder := &SettlementRulesHolder{}
	holder.current.Store(rules)
	return holder
}

func (h *SettlementRulesHolder) Current() SettlementRules {
	return h.current.Load().(SettlementRules)
}

// Store replaces the active rules. Intended for tests.
func (h *SettlementRulesHolder) Store(rules SettlementRules) {
	h.current.Store(rules)
}

func validateSettlementRules(rules SettlementRules) error {
	if rules.ManagementFeeRate < 0 || rules.ManagementFeeRate >= 1 {
		return errors.New("settlement.managementFeeRate must be in [0, 1)")
	}
	return nil
}
