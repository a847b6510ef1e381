package server

import "sync"

// RobotSnapshot is the wire form of the simulated robot state.
type RobotSnapshot struct {
	Status      string  `json:"status"`
	Battery     float64 `json:"battery"`
	LastCommand string  `json:"last_command"`
}

// RobotState is the simulated cart bookkeeping exposed over the API. It
// is not connected to any actuator; it exists so the dashboard has
// something to show.
type RobotState struct {
	mu          sync.Mutex
	status      string
	battery     float64
	lastCommand string
}

// batteryDrainPerPoll is subtracted from the battery estimate on every
// status poll while the cart is following.
const batteryDrainPerPoll = 0.01

// NewRobotState starts the simulated robot idle with a nearly full
// battery.
func NewRobotState() *RobotState {
	return &RobotState{
		status:      "Idle",
		battery:     98.0,
		lastCommand: "None",
	}
}

// Command applies a control action and returns the resulting state. Known
// actions change the status; anything else is only recorded as the last
// command.
func (r *RobotState) Command(action string) RobotSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch action {
	case "follow":
		r.status = "Following"
	case "stop":
		r.status = "Stopped"
	case "return":
		r.status = "Returning"
	}
	r.lastCommand = action
	return r.snapshot()
}

// Status returns the state for a status poll, draining the simulated
// battery while following.
func (r *RobotState) Status() RobotSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == "Following" {
		r.battery -= batteryDrainPerPoll
		if r.battery < 0 {
			r.battery = 0
		}
	}
	return r.snapshot()
}

// Peek returns the state without side effects.
func (r *RobotState) Peek() RobotSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *RobotState) snapshot() RobotSnapshot {
	return RobotSnapshot{
		Status:      r.status,
		Battery:     r.battery,
		LastCommand: r.lastCommand,
	}
}
