package encryption

import (
	"fmt"

	"mig-go/internal/config"
	"mig-go/internal/mig"
)

// NewSealerFromConfig creates a Sealer based on the configuration type.
func NewSealerFromConfig(cfg config.SealingConfig) (mig.Sealer, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeSealer(cfg), nil
	case "test":
		return NewTestSealer(), nil
	default:
		return nil, fmt.Errorf("unknown sealing type: %q", cfg.Type)
	}
}
