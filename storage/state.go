package storage

import (
	"context"
	"maps"
)

// StateMap maps a feed identifier to the ID of the last entry that was
// successfully notified for that feed.
type StateMap map[string]string

// Memory is a StateMap-backed store. It is the unit-test double for the
// durable stores and the value form the file store loads into and saves from.
type Memory struct {
	state StateMap
}

func NewMemory(initial StateMap) *Memory {
	m := &Memory{state: make(StateMap)}
	maps.Copy(m.state, initial)
	return m
}

func (m *Memory) LastNotified(_ context.Context, feed string) (string, error) {
	id, has := m.state[feed]
	if !has {
		return "", ErrFeedNotFound
	}
	return id, nil
}

func (m *Memory) SetLastNotified(_ context.Context, feed string, id string) error {
	m.state[feed] = id
	return nil
}

func (m *Memory) State() StateMap {
	out := make(StateMap, len(m.state))
	maps.Copy(out, m.state)
	return out
}
