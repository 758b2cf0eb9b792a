package analysis

import (
	"context"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/verimod/verimod/pkg/pairing"
	"github.com/verimod/verimod/pkg/pipeline"
)

// savedStampFormat is the timestamp layout in saved paired file names.
const savedStampFormat = "2006010215"

// pairTask asks for one obs network to be paired with one model.
type pairTask struct {
	modLabel string
	obsLabel string
	mapping  map[string]string
	radius   float64
}

// PairData pairs every model with every obs network named in its mapping.
// When save_paired is set the pair stream is split between the registration
// sink and a CSV writer sink.
func (a *Analysis) PairData(ctx context.Context) error {
	pipe, err := pipeline.New(ctx, a.pipelineOptions("pair")...)
	if err != nil {
		return errors.Wrap(err, "unable to create pair pipeline")
	}

	root, err := pipeline.AddRootStep(pipe, "pair tasks", func(_ context.Context, out chan<- pairTask) error {
		for _, task := range a.pairTasks() {
			out <- task
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "unable to add pair task step")
	}

	paired, err := pipeline.AddStepOneToOne(pipe, "pair datasets", root, a.pairOne,
		pipeline.StepConcurrency[*pairing.Paired](a.Control.Analysis.Workers))
	if err != nil {
		return errors.Wrap(err, "unable to add pair step")
	}

	collect := func(_ context.Context, p *pairing.Paired) error {
		a.Paired[p.Label()] = p
		a.logger.Info().
			Str("pair", p.Label()).
			Int("rows", p.Frame.Len()).
			Msg("datasets paired")

		return nil
	}

	if !a.Control.Analysis.SavePaired {
		err = pipeline.AddSink(pipe, "collect pairs", paired, collect)
		if err != nil {
			return errors.Wrap(err, "unable to add collect sink")
		}

		return errors.Wrap(pipe.Run(), "unable to pair datasets")
	}

	splitter, err := pipeline.AddSplitter(pipe, "fan out pairs", paired, 2)
	if err != nil {
		return errors.Wrap(err, "unable to add pair splitter")
	}
	collectIn, ok := splitter.Get()
	if !ok {
		return errors.New("pair splitter has no collect output")
	}
	saveIn, ok := splitter.Get()
	if !ok {
		return errors.New("pair splitter has no save output")
	}

	err = pipeline.AddSink(pipe, "collect pairs", collectIn, collect)
	if err != nil {
		return errors.Wrap(err, "unable to add collect sink")
	}
	err = pipeline.AddSink(pipe, "save pairs", saveIn, a.savePaired)
	if err != nil {
		return errors.Wrap(err, "unable to add save sink")
	}

	return errors.Wrap(pipe.Run(), "unable to pair datasets")
}

func (a *Analysis) pairTasks() []pairTask {
	labels := make([]string, 0, len(a.Control.Models))
	for label := range a.Control.Models {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	tasks := make([]pairTask, 0, len(labels))
	for _, modLabel := range labels {
		mod := a.Control.Models[modLabel]
		obsLabels := make([]string, 0, len(mod.Mapping))
		for obsLabel := range mod.Mapping {
			obsLabels = append(obsLabels, obsLabel)
		}
		sort.Strings(obsLabels)
		for _, obsLabel := range obsLabels {
			tasks = append(tasks, pairTask{
				modLabel: modLabel,
				obsLabel: obsLabel,
				mapping:  mod.Mapping[obsLabel],
				radius:   mod.RadiusOfInfluence,
			})
		}
	}

	return tasks
}

func (a *Analysis) pairOne(_ context.Context, task pairTask) (*pairing.Paired, error) {
	modelFrame, ok := a.Models[task.modLabel]
	if !ok {
		return nil, errors.Errorf("model %s was not opened", task.modLabel)
	}
	obsFrame, ok := a.Obs[task.obsLabel]
	if !ok {
		return nil, errors.Errorf("obs %s was not opened", task.obsLabel)
	}

	paired, err := pairing.PairPointSurface(modelFrame, obsFrame, task.mapping, task.obsLabel, task.modLabel, task.radius)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to pair %s with %s", task.obsLabel, task.modLabel)
	}

	return paired, nil
}

func (a *Analysis) savePaired(_ context.Context, p *pairing.Paired) error {
	name := p.Label() +
		"_" + a.Control.Analysis.StartTime.Format(savedStampFormat) +
		"_" + a.Control.Analysis.EndTime.Format(savedStampFormat) + ".csv"
	path, err := a.outputPath(name)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}
	defer file.Close()

	err = p.Frame.WriteCSV(file)
	if err != nil {
		return errors.Wrapf(err, "unable to save pair %s", p.Label())
	}
	a.logger.Info().Str("pair", p.Label()).Str("file", path).Msg("paired dataset saved")

	return nil
}
