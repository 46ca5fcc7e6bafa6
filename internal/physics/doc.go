// Package physics provides the entities of the spring-mass sandbox.
//
//   - [Vec2] and [Force]: vector algebra and the action/reaction [Pair]
//   - [Anchor]: a point mass that is [Free], [Static] or [Pinned]
//   - [Spring]: a connector whose tension follows one of the [Law] variants
//
// Entities carry no references to each other. A simulation owns anchors and
// springs and resolves spring endpoints to positions before asking a spring
// for its force:
//
//	s, _ := physics.NewSpring(physics.Linear, 8, nil, physics.Bound(20))
//	fStart, fEnd := s.Force(a.Position(), b.Position())
//	a.ApplyForce(fStart, dt)
//	b.ApplyForce(fEnd, dt)
package physics
