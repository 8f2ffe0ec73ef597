package llm

// ModelPreferences expresses caller priorities (0..1) + optional name hints.
type ModelPreferences struct {
	IntelligencePriority float64
	SpeedPriority        float64
	CostPriority         float64
	Hints                []string
}

// ModelPreferencesOption is a functional option for ModelPreferences.
type ModelPreferencesOption func(*ModelPreferences)

func NewModelPreferences(options ...ModelPreferencesOption) *ModelPreferences {
	ret := &ModelPreferences{
		IntelligencePriority: 0.5,
		SpeedPriority:        0.5,
		CostPriority:         0.5,
		Hints:                make([]string, 0),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// WithHints sets the model name hints considered during selection.
func WithHints(hints ...string) ModelPreferencesOption {
	return func(p *ModelPreferences) {
		p.Hints = hints
	}
}
