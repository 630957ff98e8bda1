package x

import (
	"github.com/iov-one/spades"
)

// Authenticator reports which conditions the current transaction
// fulfills. Handlers take one in their constructor so that any scheme,
// not only x/sigs, can authorize wallet operations.
type Authenticator interface {
	// GetConditions returns all fulfilled conditions. The first one
	// belongs to the main signer.
	GetConditions(spades.Context) []spades.Condition
	// HasAddress tells if a fulfilled condition has the given address.
	HasAddress(spades.Context, spades.Address) bool
}

// MultiAuth merges the conditions of several authenticators.
type MultiAuth []Authenticator

var _ Authenticator = MultiAuth(nil)

// ChainAuth returns an authenticator asking each of impls in order.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth(impls)
}

// GetConditions returns the conditions of all authenticators in the order
// they were chained. A condition reported twice is returned once.
func (m MultiAuth) GetConditions(ctx spades.Context) []spades.Condition {
	var res []spades.Condition
	for _, auth := range m {
		for _, c := range auth.GetConditions(ctx) {
			if !containsCondition(res, c) {
				res = append(res, c)
			}
		}
	}
	return res
}

func (m MultiAuth) HasAddress(ctx spades.Context, addr spades.Address) bool {
	for _, auth := range m {
		if auth.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the caller of a wallet or cash operation. It is nil
// for a transaction that carries no authentication.
func MainSigner(ctx spades.Context, auth Authenticator) spades.Condition {
	if conds := auth.GetConditions(ctx); len(conds) > 0 {
		return conds[0]
	}
	return nil
}

func containsCondition(set []spades.Condition, c spades.Condition) bool {
	for _, s := range set {
		if s.Equals(c) {
			return true
		}
	}
	return false
}
