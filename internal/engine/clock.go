package engine

// Clock tracks simulated time. Frame counts within a second, Time counts
// seconds, Anim flips once per half second for blinking markers. Ticks is
// monotonic and never wraps.
type Clock struct {
	Ticks uint64 `json:"ticks"`
	Time  int    `json:"time"`  // seconds: [0, 65536)
	Frame int    `json:"frame"` // frames: [0, framesPerSecond)
	Anim  int    `json:"anim"`  // 0 or 1
}

// timeWrap is the period of the seconds clock.
const timeWrap = 65536

// Next advances the clock by one frame.
func (c Clock) Next(framesPerSecond int) Clock {
	if framesPerSecond <= 0 {
		framesPerSecond = 1
	}
	half := framesPerSecond / 2
	if half == 0 {
		half = 1
	}
	next := Clock{
		Ticks: c.Ticks + 1,
		Time:  c.Time,
		Frame: (c.Frame + 1) % framesPerSecond,
		Anim:  c.Frame / half,
	}
	if next.Frame == 0 {
		next.Time = (c.Time + 1) % timeWrap
	}
	return next
}
