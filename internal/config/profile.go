package config

import (
	"fmt"
	"slices"
)

// Profile holds reusable search settings.
// Pointer fields distinguish "not set" from an explicit zero.
type Profile struct {
	// Interests boost candidates related to these topics.
	Interests []string `yaml:"interests,omitempty"`

	// Aliases maps a start or destination, exactly as typed on the command
	// line, to the label used for scoring.
	Aliases map[string]string `yaml:"aliases,omitempty"`

	// MaxCandidates overrides the number of candidates kept per page.
	MaxCandidates *int `yaml:"maxCandidates,omitempty"`

	// MaxExpansions overrides the expansion budget.
	MaxExpansions *int `yaml:"maxExpansions,omitempty"`

	// BaseURL overrides the article prefix, e.g. for another language edition.
	BaseURL string `yaml:"baseURL,omitempty"`

	// Domains, Schemes and FileTypes replace the link filter rules.
	Domains   []string `yaml:"domains,omitempty"`
	Schemes   []string `yaml:"schemes,omitempty"`
	FileTypes []string `yaml:"fileTypes,omitempty"`

	// IgnorePatterns are URL path globs to skip.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are the only URL path globs to follow, if set.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`

	// Headers are custom HTTP headers to include in every request.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .wikid configuration file.
type File struct {
	// Defaults applies to every search.
	Defaults Profile `yaml:"defaults,omitempty"`

	// Profiles are named settings selected with --profile.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// ProfileNames returns the profile names in sorted order.
func (cf *File) ProfileNames() []string {
	names := make([]string, 0, len(cf.Profiles))
	for name := range cf.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetProfile returns the named profile merged over the defaults.
// An empty name returns the defaults.
func (cf *File) GetProfile(name string) (Profile, error) {
	result := cf.Defaults
	if name == "" {
		return result, nil
	}

	p, ok := cf.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return mergeProfile(result, p), nil
}

// mergeProfile overlays the values set in override onto base.
func mergeProfile(base, override Profile) Profile {
	result := base

	if len(override.Interests) > 0 {
		result.Interests = override.Interests
	}
	if len(override.Aliases) > 0 {
		merged := make(map[string]string, len(base.Aliases)+len(override.Aliases))
		for k, v := range base.Aliases {
			merged[k] = v
		}
		for k, v := range override.Aliases {
			merged[k] = v
		}
		result.Aliases = merged
	}
	if override.MaxCandidates != nil {
		result.MaxCandidates = override.MaxCandidates
	}
	if override.MaxExpansions != nil {
		result.MaxExpansions = override.MaxExpansions
	}
	if override.BaseURL != "" {
		result.BaseURL = override.BaseURL
	}
	if override.Domains != nil {
		result.Domains = override.Domains
	}
	if override.Schemes != nil {
		result.Schemes = override.Schemes
	}
	if override.FileTypes != nil {
		result.FileTypes = override.FileTypes
	}
	if len(override.IgnorePatterns) > 0 {
		result.IgnorePatterns = override.IgnorePatterns
	}
	if len(override.FollowPatterns) > 0 {
		result.FollowPatterns = override.FollowPatterns
	}
	if len(override.Headers) > 0 {
		merged := make(map[string]string, len(base.Headers)+len(override.Headers))
		for k, v := range base.Headers {
			merged[k] = v
		}
		for k, v := range override.Headers {
			merged[k] = v
		}
		result.Headers = merged
	}

	return result
}
