package main

import "github.com/charmbracelet/harmonica"

// RotationAxis tracks position and velocity for one rotation axis with spring decay
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // spring velocity used to animate Velocity toward 0
}

// NewRotationAxis creates an axis with harmonica spring for smooth velocity decay
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0 using spring
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// Turntable holds the pitch and yaw of the mesh in the viewer.
type Turntable struct {
	Pitch, Yaw RotationAxis
	fps        int
}

func NewTurntable(fps int) *Turntable {
	return &Turntable{
		Pitch: NewRotationAxis(fps),
		Yaw:   NewRotationAxis(fps),
		fps:   fps,
	}
}

func (t *Turntable) Update() {
	t.Pitch.Update()
	t.Yaw.Update()
}

func (t *Turntable) ApplyImpulse(pitch, yaw float64) {
	t.Pitch.Velocity += pitch
	t.Yaw.Velocity += yaw
}

func (t *Turntable) Reset() {
	t.Pitch = NewRotationAxis(t.fps)
	t.Yaw = NewRotationAxis(t.fps)
}
