package corefn

import "github.com/CognitoIQ/xslt-runtime/xpath/registry"

// Core merges every fixed table this package contributes into the single
// Table the registry resolves fn:/empty-namespace calls against.
func Core() registry.Table {
	merged := make(registry.Table)
	for _, t := range []registry.Table{NodeTable, StringTable, BoolTable, NumberTable, SequenceTable, DateTimeTable} {
		for k, v := range t {
			merged[k] = v
		}
	}
	return merged
}
