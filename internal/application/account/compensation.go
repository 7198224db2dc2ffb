package account

import "context"

type undoAction struct {
	step string
	fn   func(ctx context.Context) error
}

// compensation acumula acciones de deshacer a medida que cada paso tiene éxito.
// unwind las ejecuta en orden inverso al de registro, así agregar un paso nuevo
// no altera el orden de deshacer de los anteriores.
type compensation struct {
	actions []undoAction
}

func (c *compensation) push(step string, fn func(ctx context.Context) error) {
	c.actions = append(c.actions, undoAction{step: step, fn: fn})
}

func (c *compensation) len() int { return len(c.actions) }

// unwind ejecuta todas las acciones (LIFO) aunque alguna falle; report recibe el
// resultado de cada una. Después de unwind la pila queda vacía.
func (c *compensation) unwind(ctx context.Context, report func(step string, err error)) {
	for i := len(c.actions) - 1; i >= 0; i-- {
		a := c.actions[i]
		err := a.fn(ctx)
		if report != nil {
			report(a.step, err)
		}
	}
	c.actions = nil
}
