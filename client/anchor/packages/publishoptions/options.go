package publishoptions

import (
	"time"

	"github.com/cockroachdb/errors"
)

// PublishOption is a function that provides options.
type PublishOption func(options *PublishOptions) error

// WaitForInclusion defines if the call should wait for the Block to be included before it returns.
func WaitForInclusion(wait bool) PublishOption {
	return func(options *PublishOptions) error {
		options.WaitForInclusion = wait
		return nil
	}
}

// RetryInterval sets the fixed delay between inclusion poll ticks.
func RetryInterval(interval time.Duration) PublishOption {
	return func(options *PublishOptions) error {
		if interval <= 0 {
			return errors.Errorf("retry interval must be positive (got %s)", interval)
		}
		options.RetryInterval = interval
		return nil
	}
}

// MaxAttempts sets the retry budget: the number of poll ticks before the publish call gives up waiting.
func MaxAttempts(attempts uint32) PublishOption {
	return func(options *PublishOptions) error {
		if attempts == 0 {
			return errors.Errorf("max attempts must be at least 1")
		}
		options.MaxAttempts = attempts
		return nil
	}
}

// PublishOptions is a struct that is used to aggregate the optional parameters in the PlanAndPublish and
// DeleteAliasOutput calls.
type PublishOptions struct {
	WaitForInclusion bool
	RetryInterval    time.Duration
	MaxAttempts      uint32
}

// Build builds the options.
func Build(options ...PublishOption) (result *PublishOptions, err error) {
	// create options to collect the arguments provided
	result = &PublishOptions{
		WaitForInclusion: true,
		RetryInterval:    5 * time.Second,
		MaxAttempts:      40,
	}

	// apply arguments to our options
	for _, option := range options {
		if err = option(result); err != nil {
			return
		}
	}

	return
}
