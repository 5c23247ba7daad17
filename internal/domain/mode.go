package domain

const (
	ModeExam     = "exam"
	ModeExpress  = "express"
	ModeMarathon = "marathon"
)

// Mode is a named test configuration fixing how many questions a run has.
type Mode struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Questions   int    `json:"questions"`
	// Random modes sample their questions from the whole bank; otherwise the
	// active ticket is walked in order.
	Random bool `json:"random"`
}

// ModeCatalog holds the modes known to the engine in menu order.
type ModeCatalog struct {
	modes []Mode
}

// DefaultModes returns the exam, express and marathon modes.
func DefaultModes() ModeCatalog {
	return ModeCatalog{modes: []Mode{
		{Key: ModeExam, Name: "Экзамен", Description: "Режим как на реальном экзамене (20 вопросов)", Questions: 20},
		{Key: ModeExpress, Name: "Экспресс", Description: "Быстрая проверка знаний (10 случайных вопросов)", Questions: 10, Random: true},
		{Key: ModeMarathon, Name: "Марафон", Description: "Все билеты подряд (100 вопросов)", Questions: 100, Random: true},
	}}
}

// WithTargets returns a copy of the catalog with question counts overridden per mode key.
// Non-positive overrides are ignored.
func (c ModeCatalog) WithTargets(targets map[string]int) ModeCatalog {
	modes := make([]Mode, len(c.modes))
	copy(modes, c.modes)
	for i := range modes {
		if n, ok := targets[modes[i].Key]; ok && n > 0 {
			modes[i].Questions = n
		}
	}
	return ModeCatalog{modes: modes}
}

// Lookup finds a mode by key.
func (c ModeCatalog) Lookup(key string) (Mode, error) {
	for _, m := range c.modes {
		if m.Key == key {
			return m, nil
		}
	}
	return Mode{}, ErrUnknownMode
}

// Default is the mode new sessions start in.
func (c ModeCatalog) Default() Mode {
	if m, err := c.Lookup(ModeExam); err == nil {
		return m
	}
	return c.modes[0]
}

// All lists the modes in menu order.
func (c ModeCatalog) All() []Mode {
	out := make([]Mode, len(c.modes))
	copy(out, c.modes)
	return out
}
