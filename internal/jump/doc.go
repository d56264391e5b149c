// Package jump provides the discrete half of a stochastic hybrid system.
//
// A [Trigger] is one of exactly two variants:
//
//   - [Condition]: a deterministic predicate on (state, time) paired with a
//     jump map that replaces the state. Used by hybrid equations.
//   - [Intensity]: a constant arrival rate lambda paired with a jump size
//     function whose result is added to the state. Used by jump diffusions.
//
// # Intensity discretization
//
// Arrivals are approximated per step by a single Bernoulli trial with success
// probability lambda*dt. This is first order: it is only accurate when
// lambda*dt is much smaller than one, it never produces two arrivals in the
// same step, and for lambda*dt >= 1 every step jumps. Exact Poisson sampling
// would change the output statistics and is deliberately not offered.
package jump
