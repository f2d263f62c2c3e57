// Package workload loads simulation inputs from YAML files.
package workload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/me/rrsim/internal/config"
	"github.com/me/rrsim/pkg/model"
	"gopkg.in/yaml.v3"
)

// ProcessSpec is one process as written in a workload file.
type ProcessSpec struct {
	Arrival int `yaml:"arrival" json:"arrival"`
	Burst   int `yaml:"burst" json:"burst"`
}

// file mirrors the on-disk YAML layout.
type file struct {
	Name      string        `yaml:"name"`
	Quantum   int           `yaml:"quantum"`
	Cores     int           `yaml:"cores"`
	Processes []ProcessSpec `yaml:"processes"`
	Generate  *Generator    `yaml:"generate"`
}

// Workload is a validated set of processes plus scheduling parameters.
type Workload struct {
	Name      string
	Config    config.SimConfig
	Processes []ProcessSpec
}

// Registrar is the part of the engine a workload is applied to.
type Registrar interface {
	Configure(quantum, cores int) error
	Register(arrival, burst int) (int, error)
}

// Load reads and validates a workload file. The workload name defaults to
// the file name without extension.
func Load(path string) (*Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workload %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	w, err := Parse(data, name)
	if err != nil {
		return nil, fmt.Errorf("workload %s: %w", path, err)
	}
	return w, nil
}

// Parse decodes YAML workload data. Missing quantum or cores fall back to
// config.DefaultSimConfig. Generated processes follow the explicit ones.
func Parse(data []byte, defaultName string) (*Workload, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	w := &Workload{Name: f.Name, Config: config.DefaultSimConfig()}
	if w.Name == "" {
		w.Name = defaultName
	}
	if f.Quantum != 0 {
		w.Config.Quantum = f.Quantum
	}
	if f.Cores != 0 {
		w.Config.Cores = f.Cores
	}
	if err := w.Config.Validate(); err != nil {
		return nil, err
	}

	var details []model.FieldError
	for i, p := range f.Processes {
		details = append(details, checkProcess(fmt.Sprintf("processes[%d]", i), p)...)
	}
	if len(details) > 0 {
		return nil, model.NewValidationError("invalid processes", details...)
	}
	w.Processes = append(w.Processes, f.Processes...)

	if f.Generate != nil {
		generated, err := f.Generate.Generate()
		if err != nil {
			return nil, err
		}
		w.Processes = append(w.Processes, generated...)
	}

	if len(w.Processes) == 0 {
		return nil, model.NewValidationError("workload has no processes",
			model.FieldError{Field: "processes", Message: "at least one process or a generate block is required"})
	}
	return w, nil
}

// Apply configures r and registers every process in order.
func (w *Workload) Apply(r Registrar) error {
	if err := r.Configure(w.Config.Quantum, w.Config.Cores); err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	for i, p := range w.Processes {
		if _, err := r.Register(p.Arrival, p.Burst); err != nil {
			return fmt.Errorf("register process %d: %w", i, err)
		}
	}
	return nil
}

func checkProcess(path string, p ProcessSpec) []model.FieldError {
	var details []model.FieldError
	if p.Arrival < 0 {
		details = append(details, model.FieldError{Field: path + ".arrival", Message: fmt.Sprintf("must be >= 0, got %d", p.Arrival)})
	}
	if p.Burst <= 0 {
		details = append(details, model.FieldError{Field: path + ".burst", Message: fmt.Sprintf("must be > 0, got %d", p.Burst)})
	}
	return details
}
