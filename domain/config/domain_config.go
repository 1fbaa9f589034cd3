package config

import (
	"fmt"
	"time"
)

// DomainConfig holds all configurable canvas rules and layout constants
type DomainConfig struct {
	// Canvas constraints
	MaxNodesPerCanvas       int `yaml:"max_nodes_per_canvas"`
	MaxConnectionsPerCanvas int `yaml:"max_connections_per_canvas"`

	// Sub-block layout. A placed node stacks buyer, info and seller
	// blocks vertically, SubBlockSpacing apart.
	SubBlockSpacing float64 `yaml:"sub_block_spacing"`

	// Antecedent stacking: the i-th antecedent of a node is placed
	// AntecedentBaseOffset + i*BlockGroupHeight below it.
	AntecedentBaseOffset float64 `yaml:"antecedent_base_offset"`
	BlockGroupHeight     float64 `yaml:"block_group_height"`

	// AutoChainDepth is how many antecedent levels are expanded when an act
	// is placed. 1 expands only the immediate antecedents.
	AutoChainDepth int `yaml:"auto_chain_depth"`

	// Zoom
	MinZoom  float64 `yaml:"min_zoom"`
	MaxZoom  float64 `yaml:"max_zoom"`
	ZoomStep float64 `yaml:"zoom_step"`

	// Connection rules
	AllowDuplicateConnections bool `yaml:"allow_duplicate_connections"`

	// Session lifetime
	SessionIdleTTL time.Duration `yaml:"session_idle_ttl"`
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodesPerCanvas:       500,
		MaxConnectionsPerCanvas: 2000,

		SubBlockSpacing: 130,

		AntecedentBaseOffset: 400,
		BlockGroupHeight:     400,
		AutoChainDepth:       1,

		MinZoom:  0.3,
		MaxZoom:  2.0,
		ZoomStep: 0.1,

		AllowDuplicateConnections: false,

		SessionIdleTTL: 2 * time.Hour,
	}
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More permissive for development
	config.MaxNodesPerCanvas = 5000
	config.MaxConnectionsPerCanvas = 20000
	config.SessionIdleTTL = 24 * time.Hour

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Clone returns an independent copy of the configuration
func (c *DomainConfig) Clone() *DomainConfig {
	clone := *c
	return &clone
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MaxNodesPerCanvas <= 0 {
		return fmt.Errorf("max nodes per canvas must be positive, got %d", c.MaxNodesPerCanvas)
	}
	if c.MaxConnectionsPerCanvas <= 0 {
		return fmt.Errorf("max connections per canvas must be positive, got %d", c.MaxConnectionsPerCanvas)
	}
	if c.SubBlockSpacing <= 0 || c.BlockGroupHeight <= 0 {
		return fmt.Errorf("block spacing and group height must be positive")
	}
	if c.AutoChainDepth < 0 {
		return fmt.Errorf("auto chain depth cannot be negative")
	}
	if c.MinZoom <= 0 || c.MaxZoom < c.MinZoom {
		return fmt.Errorf("invalid zoom bounds [%v, %v]", c.MinZoom, c.MaxZoom)
	}
	if c.ZoomStep <= 0 {
		return fmt.Errorf("zoom step must be positive")
	}
	return nil
}
