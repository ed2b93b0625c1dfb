package assemble

import (
	"errors"
	"fmt"
	"os"

	"github.com/tunedrive/tunedrive/internal/config"
)

// ErrNotPrepared reports a Run Configuration that references a prepared
// dataset which the dataset preparer has not produced yet.
var ErrNotPrepared = errors.New("prepared dataset missing")

// Param is one named parameter of a Run Configuration. An empty Value marks
// a boolean switch rendered without an argument.
type Param struct {
	Name  string
	Value string
}

// RunConfig is the complete, immutable parameter set for one training
// invocation. Create it through Build; never mutate it afterwards.
type RunConfig struct {
	workflow string
	kind     config.Kind
	script   string
	dataDir  string
	params   []Param
}

// Workflow returns the name of the workflow this configuration belongs to.
func (c *RunConfig) Workflow() string {
	return c.workflow
}

// Kind returns the workflow kind.
func (c *RunConfig) Kind() config.Kind {
	return c.kind
}

// Script returns the external training script this configuration targets.
func (c *RunConfig) Script() string {
	return c.script
}

// DataDir returns the prepared-dataset path this configuration references.
func (c *RunConfig) DataDir() string {
	return c.dataDir
}

// Params returns a copy of the ordered parameter list.
func (c *RunConfig) Params() []Param {
	out := make([]Param, len(c.params))
	copy(out, c.params)
	return out
}

// Args renders the parameter list as the stable flag sequence passed to the
// training script.
func (c *RunConfig) Args() []string {
	args := make([]string, 0, len(c.params)*2)
	for _, p := range c.params {
		args = append(args, "--"+p.Name)
		if p.Value != "" {
			args = append(args, p.Value)
		}
	}
	return args
}

// Lookup returns the value of a named parameter, or false when the
// configuration does not carry it.
func (c *RunConfig) Lookup(name string) (string, bool) {
	for _, p := range c.params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// EnsurePrepared verifies that the prepared dataset this configuration
// references exists and is non-empty. It is the only filesystem touch in
// this package, kept out of Build so construction stays pure.
func (c *RunConfig) EnsurePrepared() error {
	entries, err := os.ReadDir(c.dataDir)
	if err != nil {
		return fmt.Errorf("%w: %s (run data preparation first)", ErrNotPrepared, c.dataDir)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: %s is empty (run data preparation first)", ErrNotPrepared, c.dataDir)
	}
	return nil
}
