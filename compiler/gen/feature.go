package gen

import (
	"os"
	"path/filepath"
)

// ModelsFilename is the file written by FeatureModels inside the target.
const ModelsFilename = "filters_gen.go"

var (
	// FeatureSubscriptions generates the Subscription root type together with
	// the per-type SubscriptionWhere inputs.
	FeatureSubscriptions = Feature{
		Name:        "subscriptions",
		Stage:       Beta,
		Default:     false,
		Description: "Generates created/updated/deleted subscription fields filtered by SubscriptionWhere inputs",
	}

	// FeatureExcludeDeprecated drops the legacy flat operator fields
	// (title_CONTAINS, actors_SOME, ...) from generated inputs, keeping only
	// the generic filter objects.
	FeatureExcludeDeprecated = Feature{
		Name:        "filters/excludedeprecated",
		Stage:       Stable,
		Default:     false,
		Description: "Omits deprecated flat operator fields from generated filter inputs",
	}

	// FeatureModels emits Go structs for the generated filter inputs.
	FeatureModels = Feature{
		Name:        "models",
		Stage:       Experimental,
		Default:     false,
		Description: "Generates Go input models for the filter input types",
		cleanup: func(c *Config) error {
			return remove(c.Target, ModelsFilename)
		},
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureSubscriptions,
		FeatureExcludeDeprecated,
		FeatureModels,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development and may change or disappear.
	Experimental

	// Alpha features are complete, but breaking changes to their output are expected.
	Alpha

	// Beta features are documented and no breaking changes are expected.
	Beta

	// Stable features have been in use for a while.
	Stable
)

// String returns the stage name.
func (s FeatureStage) String() string {
	switch s {
	case Experimental:
		return "experimental"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Stable:
		return "stable"
	default:
		return "unknown"
	}
}

// A Feature of the neogql codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// cleanup removes the artifacts of the feature when it gets disabled,
	// e.g. files written by previous runs.
	cleanup func(*Config) error
}

// FeatureByName returns the public feature-flag with the given name.
func FeatureByName(name string) (Feature, bool) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// Cleanup runs the cleanup of every feature that is not enabled in c.
func (c *Config) Cleanup() error {
	if c.Target == "" {
		return nil
	}
	for _, f := range AllFeatures {
		if f.cleanup == nil || c.FeatureEnabled(f) {
			continue
		}
		if err := f.cleanup(c); err != nil {
			return NewGenerationError("cleanup", f.Name, "feature cleanup failed", err)
		}
	}
	return nil
}

// remove file (if exists) and its dir if it's empty.
func remove(dir, file string) error {
	if err := os.Remove(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	infos, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return os.Remove(dir)
	}
	return nil
}
