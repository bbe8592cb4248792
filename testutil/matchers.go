package testutil

import (
	"fmt"

	"github.com/cs-au-dk/monotone/analysis/constprop"
	"github.com/cs-au-dk/monotone/analysis/dataflow"
)

// ConstProp is the analysis factory for constant propagation tests.
func ConstProp(lr LoadResult) dataflow.Analysis[constprop.Element] {
	return constprop.New(lr.Info)
}

// Matchers for constant propagation states.

// HasConstantVal accepts states recording that the tracked variable holds
// the given value.
func HasConstantVal(v int64) Matcher[constprop.Element] {
	return Is(fmt.Sprintf("constant %d", v), func(e constprop.Element) bool {
		return !e.IsBot() && !e.IsTop() && e.Value().Value == v
	})
}

// IsUnknown accepts the ⊥ state: no declaration or assignment seen yet.
func IsUnknown() Matcher[constprop.Element] {
	return Is("unknown (⊥)", constprop.Element.IsBot)
}

// Varies accepts the ⊤ state: the tracked variable may hold more than one
// value, or its value could not be evaluated.
func Varies() Matcher[constprop.Element] {
	return Is("varies (⊤)", constprop.Element.IsTop)
}
