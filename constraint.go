package zskema

// Constraint is the static, declarative view of one object field, suitable
// for generating form attributes ahead of any input. Unset bounds are nil.
type Constraint struct {
	Required  bool     `json:"required,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Step      *float64 `json:"step,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Multiple  bool     `json:"multiple,omitempty"`
}
