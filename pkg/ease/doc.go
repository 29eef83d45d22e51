// Package ease provides the easing registry used by the motion engine.
//
// Every easing is a pure function of a progress ratio. A base formula is
// registered once as its "in" form; the "out" and "inOut" forms are derived
// from it:
//
//	out(t)   = 1 - in(1-t)
//	inOut(t) = in(2t)/2            for t < 0.5
//	         = 1 - in(2(1-t))/2    otherwise
//
// All registered functions return exactly 0 at t=0 and exactly 1 at t=1,
// even when the interior overshoots (back, elastic, spring).
//
// # Names
//
// Eases are looked up with [Parse] using the dotted form "base.variant",
// optionally followed by parameters:
//
//	ease.Parse("power2.inOut")
//	ease.Parse("back.out(2.5)")
//	ease.Parse("elastic.out(1, 0.3)")
//	ease.Parse("steps(6)")
//
// A bare base name selects the "out" variant; "none" and "linear" select
// the identity.
package ease
