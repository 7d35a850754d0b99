package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks the configuration using struct tags plus rules that
// tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	// The token TTL bounds the quota window's usefulness, not validity;
	// but a window shorter than a second is always a misconfiguration.
	if cfg.DownloadQuotaWindow.Seconds() < 1 {
		return fmt.Errorf("download_quota_window: must be at least one second")
	}

	return nil
}

// formatValidationError renders validator failures with the field's
// mapstructure key so the message matches the environment variable name.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		return fmt.Errorf("config field %s failed %q validation (value: %v)",
			fe.Field(), fe.Tag(), fe.Value())
	}
	return err
}
