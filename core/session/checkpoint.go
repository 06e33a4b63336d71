package session

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
)

// Checkpoint is a single point in session time, measured from session start.
type Checkpoint struct {
	// Offset is the time since session start, in seconds, at which the
	// checkpoint fires. Offsets are absolute rather than deltas between
	// checkpoints so that processing delay cannot compound.
	Offset int `yaml:"offset" json:"offset"`
	// Notify marks checkpoints that emit an observer notification.
	Notify bool `yaml:"notify" json:"notify"`
	// Instruction is an optional payload delivered to the session when a
	// non-terminal checkpoint fires. Empty means nothing is delivered.
	Instruction string `yaml:"instruction,omitempty" json:"instruction,omitempty"`
	// Terminal marks the checkpoint that triggers graceful shutdown instead
	// of a regular callback. Processing stops there.
	Terminal bool `yaml:"terminal" json:"terminal"`
}

// TimingConfig is the ordered checkpoint schedule for one session plus the
// declared total budget.
type TimingConfig struct {
	// MaxDuration is the declared session budget in seconds. It is
	// informational; the actual cutoff is driven by the terminal
	// checkpoint's offset.
	MaxDuration int `yaml:"max_duration" json:"max_duration"`
	// Checkpoints fire in slice order, which must be ascending by offset.
	Checkpoints []Checkpoint `yaml:"checkpoints" json:"checkpoints"`
}

var (
	ErrNoTerminalCheckpoint        = errors.New("timing config has no terminal checkpoint")
	ErrMultipleTerminalCheckpoints = errors.New("timing config has multiple terminal checkpoints")
)

// Validate rejects configurations the scheduler could only honor by accident
// of iteration order: zero or multiple terminal checkpoints, negative or
// non-ascending offsets.
func (c TimingConfig) Validate() error {
	if c.MaxDuration <= 0 {
		return fmt.Errorf("max duration must be positive, got %d", c.MaxDuration)
	}

	terminals := 0
	previousOffset := -1
	for i, checkpoint := range c.Checkpoints {
		if checkpoint.Offset < 0 {
			return fmt.Errorf("checkpoint %d has negative offset %d", i, checkpoint.Offset)
		}
		if checkpoint.Offset <= previousOffset {
			return fmt.Errorf("checkpoint %d offset %d is not after the previous checkpoint", i, checkpoint.Offset)
		}
		previousOffset = checkpoint.Offset

		if checkpoint.Terminal {
			terminals++
		}
	}

	switch {
	case terminals == 0:
		return ErrNoTerminalCheckpoint
	case terminals > 1:
		return ErrMultipleTerminalCheckpoints
	}

	return nil
}

// Terminal returns the terminal checkpoint and its index, if one exists.
func (c TimingConfig) Terminal() (Checkpoint, int, bool) {
	for i, checkpoint := range c.Checkpoints {
		if checkpoint.Terminal {
			return checkpoint, i, true
		}
	}
	return Checkpoint{}, 0, false
}

// Remaining returns the seconds left in the declared budget once the given
// checkpoint fires. Computed rather than stored so it cannot drift from
// MaxDuration.
func (c TimingConfig) Remaining(checkpoint Checkpoint) int {
	return c.MaxDuration - checkpoint.Offset
}

// Clone returns a deep copy that shares no checkpoint storage with the
// receiver.
func (c TimingConfig) Clone() TimingConfig {
	clone := TimingConfig{}
	if err := copier.CopyWithOption(&clone, &c, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on invalid to/from kinds, which cannot happen
		// for two values of the same struct type.
		return c
	}
	return clone
}
