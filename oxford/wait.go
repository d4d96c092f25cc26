package oxford

import (
	"context"
	"fmt"
	"math"
	"time"
)

// WaitConfig parameterizes WaitForTemperature. The zero value selects the
// defaults noted on each field; negative Timeout, ThermalizeInterval, or
// MaxCommErrors disable the corresponding mechanism.
type WaitConfig struct {
	// Tolerance is the half-width of the acceptance band around the
	// set-point in Kelvin. Default 0.01 K.
	Tolerance float64

	// Timeout is the wall-clock budget for the whole wait. Default one
	// hour; negative disables the timeout.
	Timeout time.Duration

	// CheckInterval is the polling period. Default 500 ms.
	CheckInterval time.Duration

	// StabilityInterval is how long the temperature error must stay
	// continuously in band before the wait succeeds. Default 10 s.
	StabilityInterval time.Duration

	// ThermalizeInterval is the extra settle time after stability when the
	// temperature had at least one excursion out of the band. Default
	// 5 min; negative disables thermalization.
	ThermalizeInterval time.Duration

	// MaxCommErrors bounds how many polling reads may fail before the wait
	// aborts. Zero or negative allows any number.
	MaxCommErrors int
}

func (cfg WaitConfig) withDefaults() WaitConfig {
	if cfg.Tolerance == 0 {
		cfg.Tolerance = 0.01
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Hour
	}
	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = 500 * time.Millisecond
	}
	if cfg.StabilityInterval == 0 {
		cfg.StabilityInterval = 10 * time.Second
	}
	if cfg.ThermalizeInterval == 0 {
		cfg.ThermalizeInterval = 5 * time.Minute
	}
	return cfg
}

// WaitForTemperature polls the temperature error until it has stayed
// within cfg.Tolerance of the set-point for cfg.StabilityInterval, then
// waits cfg.ThermalizeInterval longer for the sample to physically
// equilibrate. The thermalization wait is skipped when the temperature
// never left the band during this call.
//
// Failed reads are logged and tolerated up to cfg.MaxCommErrors; a failed
// sample neither breaks nor extends the stable run. The wait fails with
// ErrSetpointTimeout or ErrCommBudget, and cancelling ctx ends it early
// and cleanly with a nil error. Cancellation is observed only between
// polls, so its latency is bounded by cfg.CheckInterval.
func (itc *ITC503) WaitForTemperature(ctx context.Context, cfg WaitConfig) error {
	cfg = cfg.withDefaults()
	if cfg.Tolerance <= 0 {
		return fmt.Errorf("itc503: tolerance must be positive, got %g", cfg.Tolerance)
	}
	if cfg.CheckInterval <= 0 {
		return fmt.Errorf("itc503: check interval must be positive, got %s", cfg.CheckInterval)
	}

	required := int(math.Round(float64(cfg.StabilityInterval) / float64(cfg.CheckInterval)))
	if required < 1 {
		required = 1
	}

	var stable, excursions, commErrors int
	start := time.Now()
	for {
		tempError, err := itc.TemperatureError()
		switch {
		case err != nil:
			// No information this cycle; the stable run stands.
			commErrors++
			itc.log.WithError(err).Errorf("itc503: no temperature error returned, communication error #%d", commErrors)
		case math.Abs(tempError) < cfg.Tolerance:
			stable++
		default:
			stable = 0
			excursions++
		}

		if stable >= required {
			break
		}
		if cfg.Timeout > 0 && time.Since(start) > cfg.Timeout {
			return ErrSetpointTimeout
		}
		if cfg.MaxCommErrors > 0 && commErrors > cfg.MaxCommErrors {
			return fmt.Errorf("%w (%d reads failed)", ErrCommBudget, commErrors)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(cfg.CheckInterval):
		}
	}

	if excursions == 0 {
		// Already at temperature when the wait began; the sample is
		// thermalized.
		return nil
	}

	deadline := time.Now().Add(cfg.ThermalizeInterval)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(cfg.CheckInterval):
		}
	}
	return nil
}
