package entities

// RulesCode is the compiled form of a flow's rules. It is produced by the
// rules step and attached to the session for the steps that follow.
type RulesCode struct {
	Rules   []CompiledRule
	Outputs []RuleOutput
}

// CompiledRule is a rule whose condition compiled successfully.
type CompiledRule struct {
	ID        string
	Condition string
	IsAlert   bool
}

// RuleOutput associates one output declaration with the comma-separated
// group names a rule writes it under.
type RuleOutput struct {
	Groups   string
	OutputID string
}
