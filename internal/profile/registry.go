package profile

import (
	"fmt"
	"sort"
)

// Hill is the reference road: a 3-in-60 climb, a 9-in-90 climb, then flat.
var Hill = []Slope{{Rise: 3, Run: 60}, {Rise: 9, Run: 90}}

// RampSchedule is the reference throttle: 0.2 to 0.5 over 5 s, hold for
// 10 s, back to 0 over the last 5 s.
var RampSchedule = []Breakpoint{
	{T: 0, Value: 0.2},
	{T: 5, Value: 0.5},
	{T: 15, Value: 0.5},
	{T: 20, Value: 0},
}

type Registry struct {
	profiles map[string]func() Profile
	info     map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{
		profiles: make(map[string]func() Profile),
		info:     make(map[string]string),
	}

	r.Register("cruise", "constant 0.2 throttle on a flat road", func() Profile {
		return Constant{Throttle: 0.2}
	})
	r.Register("coast", "no throttle on a flat road", func() Profile {
		return Constant{}
	})
	r.Register("ramp", "0.2→0.5→0 throttle ramp over a two-section hill", func() Profile {
		return Compose(MustRamp(RampSchedule...), MustGrade(Hill...))
	})

	return r
}

func (r *Registry) Register(name, description string, fn func() Profile) {
	r.profiles[name] = fn
	r.info[name] = description
}

func (r *Registry) Get(name string) (Profile, error) {
	fn, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}
	return fn(), nil
}

func (r *Registry) Describe(name string) string { return r.info[name] }

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
