package claims

import (
	"github.com/datatrails/go-datatrails-merklicious/store"
)

/**
 * Options for a claim Log.
 */

type LogOptions struct {

	// store, if set, keeps every appended signed claim under its entry id.
	store store.Store
}

type LogOption func(*LogOptions)

// WithStore keeps every appended signed claim in the given store, under its entry id.
func WithStore(s store.Store) LogOption {
	return func(lo *LogOptions) { lo.store = s }
}

// ParseLogOptions parses the given options into a LogOptions struct
func ParseLogOptions(options ...LogOption) LogOptions {
	logOptions := LogOptions{}

	for _, option := range options {
		option(&logOptions)
	}

	return logOptions
}
