// Package dispatch resolves lifecycle phases to handlers. For each
// phase it synthesizes an ordered list of candidate handler names from
// the host identity and install mode, most specific first, and probes
// an explicit static registry for the first name bound to a handler.
//
// The candidate tiers are strictly nested views of the identity: full
// identity with mode, then the mode dropped, then the minor version
// dropped, and so on down to the bare distribution name and, for the
// phases that have one, a distro-agnostic default. Ties between
// handlers are broken by specificity alone, never by registration
// order.
package dispatch
