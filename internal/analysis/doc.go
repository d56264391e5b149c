// Package analysis inspects recorded trajectories.
//
//   - [NewPortrait]: 2D phase space view of two state components, with jump
//     points marked
//   - [Crossings] and [FirstPassage]: level crossings of one component,
//     with the crossing time interpolated between recorded points
//
// Nothing here re-runs a simulation; every function works on a finished
// [dynamo.Trajectory].
package analysis
