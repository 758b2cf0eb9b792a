package control

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Defaults applied after decoding.
const (
	DefaultRadiusOfInfluence = 1e6 // meters
	DefaultWorkers           = 1
)

// Load reads, decodes and validates the control file at path.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open control file %s", path)
	}
	defer file.Close()

	cfg, err := Parse(file)
	if err != nil {
		return nil, errors.Wrapf(err, "control file %s", path)
	}

	return cfg, nil
}

// Parse decodes and validates a control file. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	cfg := &Config{}
	err := dec.Decode(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode control file")
	}

	cfg.applyDefaults()

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = DefaultWorkers
	}
	for _, mod := range c.Models {
		if mod == nil {
			continue
		}
		if mod.RadiusOfInfluence == 0 {
			mod.RadiusOfInfluence = DefaultRadiusOfInfluence
		}
		normaliseVars(mod.Variables)
	}
	for _, obs := range c.Obs {
		if obs == nil {
			continue
		}
		normaliseVars(obs.Variables)
	}
	for _, grp := range c.Plots {
		if grp == nil {
			continue
		}
		if grp.DataProc.TsSelectTime == "" {
			grp.DataProc.TsSelectTime = "time"
		}
	}
}

func normaliseVars(vars map[string]*VarSpec) {
	for _, spec := range vars {
		if spec == nil {
			continue
		}
		// A conversion method without a factor means the identity factor.
		if spec.UnitScaleMethod != "" && spec.UnitScale == 0 {
			spec.UnitScale = 1
		}
	}
}

// PairLabels returns every "<obs>_<model>" label declared through the model
// mappings, sorted.
func (c *Config) PairLabels() []string {
	labels := make([]string, 0, len(c.Models))
	for modLabel, mod := range c.Models {
		if mod == nil {
			continue
		}
		for obsLabel := range mod.Mapping {
			labels = append(labels, obsLabel+"_"+modLabel)
		}
	}
	sort.Strings(labels)

	return labels
}
