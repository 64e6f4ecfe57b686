// Package simulation wires the pieces of a simulation together: the event
// engine, the result recorder, and the monitoring server.
package simulation

import (
	"github.com/sarchlab/reramsim/datarecording"
	"github.com/sarchlab/reramsim/mem/tiering"
	"github.com/sarchlab/reramsim/monitoring"
	"github.com/sarchlab/reramsim/sim"
)

// A Simulation provides the services required to define a simulation.
type Simulation struct {
	id string

	engine       sim.Engine
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor

	components    []sim.Component
	compNameIndex map[string]int
	controllers   []*tiering.Comp
}

// ID returns the unique identifier of this simulation run.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c sim.Component) {
	compName := c.Name()
	if _, ok := s.compNameIndex[compName]; ok {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

// RegisterController registers a bank controller with the simulation. The
// controller's swaps and epochs are recorded into the result database.
func (s *Simulation) RegisterController(c *tiering.Comp) {
	compName := c.Name()
	if _, ok := s.compNameIndex[compName]; ok {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1
	s.controllers = append(s.controllers, c)

	c.AcceptHook(tiering.NewMigrationRecorder(s.dataRecorder))

	if s.monitor != nil {
		s.monitor.RegisterController(c)
	}
}

// GetComponentByName returns the component with the given name.
func (s *Simulation) GetComponentByName(name string) sim.Component {
	index, ok := s.compNameIndex[name]
	if !ok {
		panic("component " + name + " not found")
	}

	return s.components[index]
}

// Components returns all registered components.
func (s *Simulation) Components() []sim.Component {
	return s.components
}

// Controllers returns the registered bank controllers.
func (s *Simulation) Controllers() []*tiering.Comp {
	return s.controllers
}

// Terminate flushes the recorded results and ends the simulation.
func (s *Simulation) Terminate() {
	s.engine.Finished()
	s.dataRecorder.Flush()
}
