package scope

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/odvcencio/solls/pkg/model"
)

// linearizer computes C3 linearizations over resolved base lists.
type linearizer struct {
	bases  map[*Scope][]*Scope
	done   map[*Scope][]*Scope
	failed map[*Scope]error
	active map[*Scope]bool
}

// linearizeAll resolves every contract's bases and stores its
// linearization. Contracts whose hierarchy is cyclic or inconsistent keep
// only their own scope.
func (b *builder) linearizeAll(r *resolver) {
	l := &linearizer{
		bases:  make(map[*Scope][]*Scope, len(b.contracts)),
		done:   make(map[*Scope][]*Scope, len(b.contracts)),
		failed: make(map[*Scope]error),
		active: make(map[*Scope]bool),
	}
	for _, cs := range b.contracts {
		var list []*Scope
		for _, spec := range cs.Node.Bases {
			base, ok := lo.Find(r.resolvePath(spec.Path, cs.Parent, -1), func(s *Symbol) bool {
				return s.Kind.IsContractLike() && s.Scope != nil
			})
			if ok {
				list = append(list, base.Scope)
			}
		}
		l.bases[cs] = list
	}
	for _, cs := range b.contracts {
		order, err := l.linearize(cs)
		if err != nil {
			b.p.Problems = append(b.p.Problems, err)
		}
		cs.Linearized = order
	}
}

// linearize returns c followed by its bases, most derived first. Bases are
// listed from most base-like to most derived in source, so the right-most
// base comes first after c.
func (l *linearizer) linearize(c *Scope) ([]*Scope, error) {
	if order, ok := l.done[c]; ok {
		return order, l.failed[c]
	}
	if l.active[c] {
		return nil, errors.Wrapf(model.ErrMalformedProgram, "inheritance cycle through %s", c.Node.Name)
	}
	l.active[c] = true
	defer delete(l.active, c)

	bases := lo.Reverse(append([]*Scope{}, l.bases[c]...))
	seqs := make([][]*Scope, 0, len(bases)+1)
	for _, base := range bases {
		order, err := l.linearize(base)
		if err != nil {
			return l.fail(c, errors.Wrapf(err, "linearizing %s", c.Node.Name))
		}
		seqs = append(seqs, order)
	}
	seqs = append(seqs, bases)

	merged, ok := mergeC3(seqs)
	if !ok {
		return l.fail(c, errors.Wrapf(model.ErrMalformedProgram, "linearization of %s is impossible", c.Node.Name))
	}
	order := append([]*Scope{c}, merged...)
	l.done[c] = order
	return order, nil
}

func (l *linearizer) fail(c *Scope, err error) ([]*Scope, error) {
	order := []*Scope{c}
	l.done[c] = order
	l.failed[c] = err
	return order, err
}

// mergeC3 merges sequences by repeatedly taking the first head that does
// not appear in the tail of any sequence.
func mergeC3(seqs [][]*Scope) ([]*Scope, bool) {
	var out []*Scope
	for {
		seqs = lo.Filter(seqs, func(s []*Scope, _ int) bool { return len(s) > 0 })
		if len(seqs) == 0 {
			return out, true
		}
		var head *Scope
		for _, s := range seqs {
			cand := s[0]
			inTail := lo.SomeBy(seqs, func(other []*Scope) bool {
				return lo.Contains(other[1:], cand)
			})
			if !inTail {
				head = cand
				break
			}
		}
		if head == nil {
			return nil, false
		}
		out = append(out, head)
		for i, s := range seqs {
			if s[0] == head {
				seqs[i] = s[1:]
			}
		}
	}
}
