package vehicle

// Integrator owns one vehicle's parameters and state. Construction and Reset
// put it in its only state, "initialized"; Step loops on that state.
type Integrator struct {
	params   Params
	initial  State
	state    State
	forces   Forces
	steps    int
	sink     Sink
	hardened bool
}

type Option func(*Integrator)

// WithParams replaces the default parameters.
func WithParams(p Params) Option {
	return func(i *Integrator) { i.params = p }
}

// WithState sets the state restored by construction and Reset.
func WithState(s State) Option {
	return func(i *Integrator) { i.initial = s }
}

// WithDiagnostics reports domain warnings to sink. Output is unchanged.
func WithDiagnostics(sink Sink) Option {
	return func(i *Integrator) { i.sink = sink }
}

// WithHardened switches Step to AdvanceHardened.
func WithHardened(on bool) Option {
	return func(i *Integrator) { i.hardened = on }
}

func New(opts ...Option) *Integrator {
	i := &Integrator{
		params:  DefaultParams(),
		initial: DefaultState(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.state = i.initial
	return i
}

// Reset restores the initial state. Parameters are untouched.
func (i *Integrator) Reset() {
	i.state = i.initial
	i.forces = Forces{}
	i.steps = 0
}

// Step advances the state by one Dt. throttle and incline (radians) are not
// validated; numerical faults propagate into the state.
func (i *Integrator) Step(throttle, incline float64) {
	prev := i.state

	var next State
	var f Forces
	if i.hardened {
		next, f = AdvanceHardened(i.params, prev, throttle, incline)
	} else {
		next, f = Advance(i.params, prev, throttle, incline)
	}

	if i.sink != nil {
		inspect(i.sink, i.steps, prev, next, f, throttle)
	}

	i.state = next
	i.forces = f
	i.steps++
}

func (i *Integrator) State() State { return i.state }

func (i *Integrator) Params() Params { return i.params }

// LastForces returns the forces computed by the most recent Step.
func (i *Integrator) LastForces() Forces { return i.forces }

// Steps returns the number of steps since construction or Reset.
func (i *Integrator) Steps() int { return i.steps }

func (i *Integrator) Hardened() bool { return i.hardened }
