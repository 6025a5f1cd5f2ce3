package controller

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"
)

// errControllerAlreadyRunning is returned when another controller process
// owns the actuator link.
var errControllerAlreadyRunning = errors.New("another traffic controller is already running")

// ensureSingleInstance scans the process table for another process with this
// executable's name. The actuator link is exclusive: two controllers writing
// tokens would interleave on the wire.
func ensureSingleInstance() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	name := filepath.Base(executable)

	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == name {
			return fmt.Errorf("%w: pid %d", errControllerAlreadyRunning, process.Pid())
		}
	}

	return nil
}
