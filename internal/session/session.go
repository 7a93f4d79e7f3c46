// Package session guards the process-wide resources a command needs
// exclusively: the "one command at a time" busy flag and the process
// working directory.
package session

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrBusy is returned by Acquire while another command holds the session.
var ErrBusy = errors.New("another command is already running")

// Session is a scoped lock over the busy flag and the working directory. A
// single Session is shared by reference between every command of a process.
type Session struct {
	mu      sync.Mutex
	running bool
	command string
	stage   string
}

// New returns an idle Session.
func New() *Session {
	return &Session{}
}

// Acquire marks the session busy on behalf of command and, when dir is not
// empty, changes the working directory to dir. The returned release func
// restores the previous working directory and clears the busy flag; it must
// be called on every exit path and is safe to call more than once.
func (s *Session) Acquire(command, dir string) (release func() error, err error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.running = true
	s.command = command
	s.stage = ""
	s.mu.Unlock()

	var prev string
	if dir != "" {
		if prev, err = os.Getwd(); err == nil {
			err = os.Chdir(dir)
		}
		if err != nil {
			s.clear()
			return nil, fmt.Errorf("failed to enter project directory '%s': %w", dir, err)
		}
	}

	var once sync.Once
	return func() error {
		var restoreErr error
		once.Do(func() {
			if prev != "" {
				restoreErr = os.Chdir(prev)
			}
			s.clear()
		})
		return restoreErr
	}, nil
}

func (s *Session) clear() {
	s.mu.Lock()
	s.running = false
	s.command = ""
	s.stage = ""
	s.mu.Unlock()
}

// SetStage records the stage currently running, for status reporting.
func (s *Session) SetStage(stage string) {
	s.mu.Lock()
	s.stage = stage
	s.mu.Unlock()
}

// Status is a snapshot of the session state.
type Status struct {
	Busy    bool   `json:"busy"`
	Command string `json:"command,omitempty"`
	Stage   string `json:"stage,omitempty"`
}

// Status returns a snapshot of the session state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Busy: s.running, Command: s.command, Stage: s.stage}
}
