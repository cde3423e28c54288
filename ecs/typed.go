package ecs

import (
	"iter"

	"github.com/rotisserie/eris"
)

// Evaluator evaluates queries. Both *Store and *Context implement it.
type Evaluator interface {
	Evaluate(q *Query) (iter.Seq2[Entity, []any], error)
}

// Each1 iterates q, downcasting the first component to A.
func Each1[A any](ev Evaluator, q *Query, fn func(Entity, A) error) error {
	return eachTyped(ev, q, 1, func(e Entity, data []any) error {
		a, err := As[A](data[0])
		if err != nil {
			return eris.Wrapf(err, "%s of %s", q.schemas[0].name, e)
		}
		return fn(e, a)
	})
}

// Each2 iterates q, downcasting the first two components to A and B.
func Each2[A, B any](ev Evaluator, q *Query, fn func(Entity, A, B) error) error {
	return eachTyped(ev, q, 2, func(e Entity, data []any) error {
		a, err := As[A](data[0])
		if err != nil {
			return eris.Wrapf(err, "%s of %s", q.schemas[0].name, e)
		}
		b, err := As[B](data[1])
		if err != nil {
			return eris.Wrapf(err, "%s of %s", q.schemas[1].name, e)
		}
		return fn(e, a, b)
	})
}

// Each3 iterates q, downcasting the first three components to A, B and C.
func Each3[A, B, C any](ev Evaluator, q *Query, fn func(Entity, A, B, C) error) error {
	return eachTyped(ev, q, 3, func(e Entity, data []any) error {
		a, err := As[A](data[0])
		if err != nil {
			return eris.Wrapf(err, "%s of %s", q.schemas[0].name, e)
		}
		b, err := As[B](data[1])
		if err != nil {
			return eris.Wrapf(err, "%s of %s", q.schemas[1].name, e)
		}
		c, err := As[C](data[2])
		if err != nil {
			return eris.Wrapf(err, "%s of %s", q.schemas[2].name, e)
		}
		return fn(e, a, b, c)
	})
}

func eachTyped(ev Evaluator, q *Query, arity int, fn func(Entity, []any) error) error {
	if len(q.schemas) > 0 && len(q.schemas) < arity {
		panic("query has fewer schemas than the typed iterator expects")
	}

	seq, err := ev.Evaluate(q)
	if err != nil {
		return err
	}
	for e, data := range seq {
		if err := fn(e, data); err != nil {
			return err
		}
	}
	return nil
}
