package spadestest

import (
	"context"
	"fmt"

	"github.com/iov-one/spades"
)

// Auth authenticates a fixed set of conditions in every context. Signer,
// when set, is reported ahead of Signers.
type Auth struct {
	Signer  spades.Condition
	Signers []spades.Condition
}

func (a *Auth) GetConditions(spades.Context) []spades.Condition {
	conds := make([]spades.Condition, 0, len(a.Signers)+1)
	if a.Signer != nil {
		conds = append(conds, a.Signer)
	}
	return append(conds, a.Signers...)
}

func (a *Auth) HasAddress(ctx spades.Context, addr spades.Address) bool {
	return containsAddress(a.GetConditions(ctx), addr)
}

// CtxAuth authenticates the conditions stored in the context under Key.
// Tests use distinct keys to emulate independent authenticators, such as
// the signatures of a transaction and the wallets it spends from.
type CtxAuth struct {
	Key string
}

// SetConditions returns a child of ctx in which the given conditions are
// authenticated. It replaces conditions set earlier under the same key.
func (a *CtxAuth) SetConditions(ctx spades.Context, conds ...spades.Condition) spades.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx spades.Context) []spades.Condition {
	switch v := ctx.Value(a.Key).(type) {
	case nil:
		return nil
	case []spades.Condition:
		return v
	default:
		panic(fmt.Sprintf("context key %q holds %T", a.Key, v))
	}
}

func (a *CtxAuth) HasAddress(ctx spades.Context, addr spades.Address) bool {
	return containsAddress(a.GetConditions(ctx), addr)
}

func containsAddress(conds []spades.Condition, addr spades.Address) bool {
	for _, c := range conds {
		if c.Address().Equals(addr) {
			return true
		}
	}
	return false
}
