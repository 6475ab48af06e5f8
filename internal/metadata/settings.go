package metadata

import "github.com/podhmo/cligen/internal/naming"

// Settings are the naming conventions in effect for a command.
// They are inherited from the nearest ancestor unless overridden.
type Settings struct {
	Casing                naming.Casing `json:"casing" yaml:"casing"`
	Prefix                naming.Prefix `json:"prefix" yaml:"prefix"`
	ShortFormPrefix       naming.Prefix `json:"shortFormPrefix" yaml:"shortFormPrefix"`
	ShortFormAutoGenerate bool          `json:"shortFormAutoGenerate" yaml:"shortFormAutoGenerate"`
}

// DefaultSettings apply to root commands: kebab-case, "--", "-" and
// auto-generated short forms.
func DefaultSettings() Settings {
	return Settings{
		Casing:                naming.CasingKebab,
		Prefix:                naming.PrefixDoubleHyphen,
		ShortFormPrefix:       naming.PrefixSingleHyphen,
		ShortFormAutoGenerate: true,
	}
}

// SettingsOverride holds the settings a command declares explicitly.
type SettingsOverride struct {
	Casing                *naming.Casing
	Prefix                *naming.Prefix
	ShortFormPrefix       *naming.Prefix
	ShortFormAutoGenerate *bool
}

// Apply returns s with the explicitly declared values of o.
func (s Settings) Apply(o SettingsOverride) Settings {
	if o.Casing != nil {
		s.Casing = *o.Casing
	}
	if o.Prefix != nil {
		s.Prefix = *o.Prefix
	}
	if o.ShortFormPrefix != nil {
		s.ShortFormPrefix = *o.ShortFormPrefix
	}
	if o.ShortFormAutoGenerate != nil {
		s.ShortFormAutoGenerate = *o.ShortFormAutoGenerate
	}
	return s
}
