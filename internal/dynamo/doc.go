// Package dynamo provides core primitives for stochastic hybrid simulation.
//
// The package defines the shared vocabulary of the simulator:
//
//   - [State]: vector representing system state
//   - [DriftFn], [DiffusionFn]: the continuous part dY = f(Y)dt + g(Y)dW
//   - [JumpCondition], [JumpMap], [JumpSizeFn]: the discrete part
//   - [Config]: immutable time grid and noise intensity
//   - [Trajectory]: the recorded (time, state) sequence of a run
//
// # Example
//
//	cfg, err := dynamo.NewConfig(0, 10, 0.01, 0.1)
//	if err != nil {
//	    return err
//	}
//	s, _ := sim.NewHybrid(sys, trig, dynamo.State{1, 0}, cfg)
//	res, _ := s.Run()
//
// # Errors
//
// Failures are reported through the sentinels [ErrInvalidParameter],
// [ErrShape] and [ErrNumericalOverflow]; use errors.Is to classify them.
package dynamo
