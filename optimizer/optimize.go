package optimizer

import (
	"fmt"

	"github.com/prismql/prism/plan"
)

// Pass is a single plan rewrite. Passes rewrite arena slots in place; the
// root handle stays valid across passes.
type Pass interface {
	Name() string
	Optimize(root plan.Node, plans *plan.Arena, exprs *plan.ExprArena) error
}

var defaultPasses = []Pass{
	&ProjectionPushdown{},
}

// Optimize runs the default passes over the plan rooted at root. A pass
// failure is fatal for the query: the partially rewritten plan must not be
// executed.
func Optimize(root plan.Node, plans *plan.Arena, exprs *plan.ExprArena) error {
	for _, pass := range defaultPasses {
		if err := pass.Optimize(root, plans, exprs); err != nil {
			return fmt.Errorf("%s: %w", pass.Name(), err)
		}
	}
	return nil
}
