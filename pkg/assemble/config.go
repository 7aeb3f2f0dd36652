package assemble

// DefaultSourceLabel names the invoker in the generated ATR when none is given
const DefaultSourceLabel = "CLI"

// RunConfig is the per-conversion configuration. It is read-only while a
// table is assembled.
type RunConfig struct {
	HeadNumber uint8 `json:"head_number" yaml:"head_number"`
	SiteNumber uint8 `json:"site_number" yaml:"site_number"`

	// MIROverrides assigns MIR fields by STDF name after the table has been
	// mapped. Keys the MIR layout does not define are reported in
	// Lot.UnmappedOverrides.
	MIROverrides map[string]any `json:"mir_overrides" yaml:"mir_overrides"`

	// ExtraLogEntries become one ATR each, after the generated one
	ExtraLogEntries []string `json:"atr_entries" yaml:"atr_entries"`

	// GeneratedAt is the conversion timestamp in unix seconds. It is used for
	// ATR MOD_TIM and for devices without a parsable DATE.
	GeneratedAt uint32 `json:"-" yaml:"-"`

	SourceLabel string `json:"-" yaml:"-"`
	InputName   string `json:"-" yaml:"-"`
}

// DefaultRunConfig returns head 1, site 1 and the CLI source label
func DefaultRunConfig() RunConfig {
	return RunConfig{
		HeadNumber:  1,
		SiteNumber:  1,
		SourceLabel: DefaultSourceLabel,
	}
}

func (c RunConfig) sourceLabel() string {
	if c.SourceLabel == "" {
		return DefaultSourceLabel
	}
	return c.SourceLabel
}

func (c RunConfig) inputName() string {
	if c.InputName == "" {
		return "-"
	}
	return c.InputName
}
