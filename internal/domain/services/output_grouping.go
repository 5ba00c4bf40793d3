package services

import (
	"strings"

	"github.com/Microsoft/data-accelerator/internal/domain/entities"
)

// OutputGroup is one logical output slot and the ids of the output
// declarations feeding it, in the order rules referenced them.
type OutputGroup struct {
	Name    string
	Members []string
}

// GroupRuleOutputs flattens rule-output pairs into groups.
//
// Each pair's group field is split on commas and trimmed; every resulting
// name receives the pair's output id, including a blank name left by a
// trailing comma. Pairs referencing an output id not in declared are dropped.
// Groups are returned in the order their names first appear. Duplicate members are kept: a group listing
// the same declaration twice is caught by the resolver's uniqueness check.
func GroupRuleOutputs(pairs []entities.RuleOutput, declared map[string]bool) []OutputGroup {
	index := make(map[string]int)
	var groups []OutputGroup

	for _, pair := range pairs {
		if !declared[pair.OutputID] {
			continue
		}
		for _, raw := range strings.Split(pair.Groups, ",") {
			name := strings.TrimSpace(raw)
			i, ok := index[name]
			if !ok {
				i = len(groups)
				index[name] = i
				groups = append(groups, OutputGroup{Name: name})
			}
			groups[i].Members = append(groups[i].Members, pair.OutputID)
		}
	}

	return groups
}

// ReferencedOutputs returns the declarations referenced by at least one
// rule-output pair, keyed by id.
func ReferencedOutputs(outputs []entities.FlowGuiOutput, pairs []entities.RuleOutput) map[string]entities.FlowGuiOutput {
	wanted := make(map[string]bool, len(pairs))
	for _, pair := range pairs {
		wanted[pair.OutputID] = true
	}

	referenced := make(map[string]entities.FlowGuiOutput)
	for _, out := range outputs {
		if wanted[out.ID] {
			referenced[out.ID] = out
		}
	}
	return referenced
}
