package algebra

import "math/big"

// PedersenGens holds a pair of generators with an unknown discrete-log
// relation, for commitments of the form Com(m, r) = mG + rH.
type PedersenGens struct {
	G Element
	H Element

	grp Group
}

// NewPedersenGens builds a commitment instance over the given generators.
func NewPedersenGens(grp Group, G, H Element) *PedersenGens {
	return &PedersenGens{G: G, H: H, grp: grp}
}

// DefaultRistrettoGens returns the Pedersen commitment instance used by the
// conversion proof: G is the Ristretto basepoint and H is derived by hashing
// the compressed basepoint, so that log_G(H) is not known.
func DefaultRistrettoGens() *PedersenGens {
	grp := Ristretto255()
	G := grp.Generator()
	H := grp.HashToGroup(G.Bytes(), []byte("bar2abar-pedersen-blinding"))
	return NewPedersenGens(grp, G, H)
}

// Commit computes mG + rH.
func (pc *PedersenGens) Commit(m, r *big.Int) Element {
	bind := pc.grp.Element().Scale(pc.G, m)
	blind := pc.grp.Element().Scale(pc.H, r)
	return pc.grp.Element().Add(bind, blind)
}

// Group returns the group the generators live in.
func (pc *PedersenGens) Group() Group {
	return pc.grp
}
