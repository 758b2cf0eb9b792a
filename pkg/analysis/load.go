package analysis

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/verimod/verimod/pkg/control"
	"github.com/verimod/verimod/pkg/dataset"
	"github.com/verimod/verimod/pkg/pipeline"
)

const (
	kindModel = "model"
	kindObs   = "obs"
)

// loadTask asks for one dataset to be opened.
type loadTask struct {
	kind    string
	label   string
	obsType string
	pattern string
	rules   map[string]dataset.Rule
}

// loadResult carries one opened dataset back to the registration sink.
type loadResult struct {
	task  loadTask
	frame *dataset.Frame
}

// OpenData opens every declared model and obs dataset. The two task streams
// run as pipeline branches merged into one registration sink; datasets are
// opened with analysis.workers concurrency.
func (a *Analysis) OpenData(ctx context.Context) error {
	pipe, err := pipeline.New(ctx, a.pipelineOptions("load")...)
	if err != nil {
		return errors.Wrap(err, "unable to create load pipeline")
	}

	modelRoot, err := pipeline.AddRootStep(pipe, "model tasks", func(_ context.Context, out chan<- loadTask) error {
		for _, task := range a.modelTasks() {
			out <- task
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "unable to add model task step")
	}
	obsRoot, err := pipeline.AddRootStep(pipe, "obs tasks", func(_ context.Context, out chan<- loadTask) error {
		for _, task := range a.obsTasks() {
			out <- task
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "unable to add obs task step")
	}

	openModels, err := pipeline.AddStepOneToOne(pipe, "open models", modelRoot, a.openDataset,
		pipeline.StepConcurrency[loadResult](a.Control.Analysis.Workers))
	if err != nil {
		return errors.Wrap(err, "unable to add model open step")
	}
	openObs, err := pipeline.AddStepOneToOne(pipe, "open obs", obsRoot, a.openDataset,
		pipeline.StepConcurrency[loadResult](a.Control.Analysis.Workers))
	if err != nil {
		return errors.Wrap(err, "unable to add obs open step")
	}

	merged, err := pipeline.AddMerger(pipe, "loaded datasets", openModels, openObs)
	if err != nil {
		return errors.Wrap(err, "unable to add dataset merger")
	}

	err = pipeline.AddSink(pipe, "register datasets", merged, func(_ context.Context, res loadResult) error {
		// Single sink goroutine, no locking needed.
		switch res.task.kind {
		case kindModel:
			a.Models[res.task.label] = res.frame
		case kindObs:
			a.Obs[res.task.label] = res.frame
		}
		a.logger.Info().
			Str(res.task.kind, res.task.label).
			Int("rows", res.frame.Len()).
			Msg("dataset opened")

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "unable to add dataset sink")
	}

	return errors.Wrap(pipe.Run(), "unable to open datasets")
}

func (a *Analysis) modelTasks() []loadTask {
	labels := make([]string, 0, len(a.Control.Models))
	for label := range a.Control.Models {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	tasks := make([]loadTask, 0, len(labels))
	for _, label := range labels {
		mod := a.Control.Models[label]
		tasks = append(tasks, loadTask{
			kind:    kindModel,
			label:   label,
			pattern: mod.Files,
			rules:   scaleRules(mod.Variables, false),
		})
	}

	return tasks
}

func (a *Analysis) obsTasks() []loadTask {
	labels := make([]string, 0, len(a.Control.Obs))
	for label := range a.Control.Obs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	tasks := make([]loadTask, 0, len(labels))
	for _, label := range labels {
		obs := a.Control.Obs[label]
		tasks = append(tasks, loadTask{
			kind:    kindObs,
			label:   label,
			obsType: obs.ObsType,
			pattern: obs.Filename,
			rules:   scaleRules(obs.Variables, true),
		})
	}

	return tasks
}

// scaleRules converts variable specs to dataset rules. Range masking only
// applies to observations; model variables only get the unit conversion.
func scaleRules(vars map[string]*control.VarSpec, mask bool) map[string]dataset.Rule {
	rules := make(map[string]dataset.Rule, len(vars))
	for name, spec := range vars {
		if spec == nil {
			continue
		}
		rule := dataset.Rule{
			Scale:  spec.UnitScale,
			Method: spec.UnitScaleMethod,
		}
		if mask {
			rule.ObsMin = spec.ObsMin
			rule.ObsMax = spec.ObsMax
			rule.NaNValue = spec.NaNValue
		}
		rules[name] = rule
	}

	return rules
}

// openDataset reads one dataset, restricts it to the analysis window and
// applies the variable rules.
func (a *Analysis) openDataset(_ context.Context, task loadTask) (loadResult, error) {
	if task.kind == kindObs && task.obsType != "pt_sfc" {
		return loadResult{}, errors.Errorf("obs %s: file reader not implemented for obs_type %s", task.label, task.obsType)
	}

	files, err := dataset.ExpandFiles(task.pattern)
	if err != nil {
		return loadResult{}, errors.Wrapf(err, "%s %s", task.kind, task.label)
	}

	frame, err := dataset.ReadFiles(files)
	if err != nil {
		return loadResult{}, errors.Wrapf(err, "%s %s", task.kind, task.label)
	}

	frame = frame.Window(a.Control.Analysis.StartTime.Time, a.Control.Analysis.EndTime.Time)
	if frame.Len() == 0 {
		return loadResult{}, errors.Errorf("%s %s has no data in the analysis window", task.kind, task.label)
	}

	err = dataset.MaskAndScale(frame, task.rules)
	if err != nil {
		return loadResult{}, errors.Wrapf(err, "%s %s", task.kind, task.label)
	}

	return loadResult{task: task, frame: frame}, nil
}
