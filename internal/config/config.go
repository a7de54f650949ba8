package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Cards    CardsConfig    `mapstructure:"cards"    validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Review   ReviewConfig   `mapstructure:"review"   validate:"required"`
	Log      LogConfig      `mapstructure:"log"      validate:"required"`
}

// CardsConfig describes where card files live and how dependency
// declarations are policed.
type CardsConfig struct {
	// Dir is the root of the markdown deck; card identities are paths
	// relative to it.
	Dir string `mapstructure:"dir" validate:"required"`

	// StrictDependencies excludes a card entirely when it declares a
	// dependency with no card file, instead of only omitting the bad edge.
	StrictDependencies bool `mapstructure:"strict_dependencies"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// ReviewConfig controls session behavior.
type ReviewConfig struct {
	// DrainPolicy selects what happens when the queue's minimum card is not
	// due today: "stop" ends the session, "skip" discards the card and
	// keeps draining until the queue is empty.
	DrainPolicy string `mapstructure:"drain_policy" validate:"required,oneof=stop skip"`

	// PruneMissing deletes history rows whose card file no longer exists
	// instead of only reporting them.
	PruneMissing bool `mapstructure:"prune_missing"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}
