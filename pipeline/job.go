package pipeline

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/xXAI-botXx/3xM/convert"
	apperrors "github.com/xXAI-botXx/3xM/errors"
	"github.com/xXAI-botXx/3xM/imaging"
)

// Stage maps one modality's source directory to its output directory.
type Stage struct {
	Modality  convert.Modality
	SourceDir string
	OutputDir string
}

// Job describes one batch run.
type Job struct {
	// Name labels the run in logs and reports.
	Name string
	// ListDir is the directory item names are enumerated from.
	ListDir    string
	Stages     []Stage
	Size       imaging.Size
	Extensions []string
}

// Validate rejects a job whose output directory is, or contains, one of the
// directories it reads from. Output directories are reset before a run.
func (j Job) Validate() error {
	var inputs []string
	if j.ListDir != "" {
		inputs = append(inputs, j.ListDir)
	}
	for _, s := range j.Stages {
		inputs = append(inputs, s.SourceDir)
	}

	for _, s := range j.Stages {
		out, err := filepath.Abs(s.OutputDir)
		if err != nil {
			return apperrors.NewInvalid("output", s.OutputDir, err.Error())
		}
		for _, in := range inputs {
			abs, err := filepath.Abs(in)
			if err != nil {
				return apperrors.NewInvalid("source", in, err.Error())
			}
			if within(out, abs) {
				return apperrors.NewInvalid("output", s.OutputDir, "contains source directory "+in)
			}
		}
	}
	return nil
}

// within reports whether path is dir or lies below it. Both must be absolute.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// DatasetJob prepares the given modalities of a dataset root. Names are taken
// from rgb/ when it is part of the job, otherwise from the first modality.
func DatasetJob(root string, modalities []convert.Modality, size imaging.Size) Job {
	job := Job{Name: "prepare", Size: size}
	for _, m := range modalities {
		job.Stages = append(job.Stages, Stage{
			Modality:  m,
			SourceDir: filepath.Join(root, m.SourceDir()),
			OutputDir: filepath.Join(root, m.OutputDir()),
		})
	}
	if len(job.Stages) > 0 {
		job.ListDir = job.Stages[0].SourceDir
	}
	for _, s := range job.Stages {
		if s.Modality == convert.ModalityRGB {
			job.ListDir = s.SourceDir
		}
	}
	return job
}

// DirJob processes every image of one directory with a single modality.
func DirJob(modality convert.Modality, src, out string, size imaging.Size) Job {
	return Job{
		Name:    string(modality),
		ListDir: src,
		Stages:  []Stage{{Modality: modality, SourceDir: src, OutputDir: out}},
		Size:    size,
	}
}

// WorkItem is one name to process through every stage of a job. It is not
// modified once built.
type WorkItem struct {
	Name   string
	Stages []Stage
	Size   imaging.Size
}

// Items returns the per-stage conversion inputs.
func (w WorkItem) Items() []convert.Item {
	items := make([]convert.Item, len(w.Stages))
	for i, s := range w.Stages {
		items[i] = convert.Item{
			Name:   w.Name,
			Source: filepath.Join(s.SourceDir, w.Name),
			Output: filepath.Join(s.OutputDir, w.Name),
			Size:   w.Size,
		}
	}
	return items
}

// splitLabelCollisions removes the names whose mask label output would
// overwrite another name's. A name that already ends in .png keeps the label
// file, otherwise the first name in sorted order does. The removed names are
// returned mapped to the name that keeps the output. Jobs without a mask stage
// never collide.
func splitLabelCollisions(job Job, names []string) ([]string, map[string]string) {
	if !slices.ContainsFunc(job.Stages, func(s Stage) bool { return s.Modality == convert.ModalityMask }) {
		return names, nil
	}

	sorted := slices.Clone(names)
	slices.Sort(sorted)
	owner := make(map[string]string, len(sorted))
	for _, name := range sorted {
		label := convert.LabelOutputPath(name)
		if label == name {
			owner[label] = name
		} else if _, ok := owner[label]; !ok {
			owner[label] = name
		}
	}

	kept := make([]string, 0, len(names))
	var dropped map[string]string
	for _, name := range names {
		keeper := owner[convert.LabelOutputPath(name)]
		if keeper == name {
			kept = append(kept, name)
			continue
		}
		if dropped == nil {
			dropped = make(map[string]string)
		}
		dropped[name] = keeper
	}
	return kept, dropped
}
