package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/lsim/internal/sim"
)

type ExportData struct {
	RunMetadata
	Times   []float64   `json:"times"`
	Inputs  [][]float64 `json:"inputs"`
	Outputs [][]float64 `json:"outputs"`
	States  [][]float64 `json:"states"`
}

func ExportJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	meta.Steps = result.StepsTaken
	meta.Metrics = finite(result.Metrics)
	if meta.Solver == "" {
		meta.Solver = result.Solver
	}
	data := ExportData{
		RunMetadata: meta,
		Times:       result.Times,
		Inputs:      result.Inputs,
		Outputs:     result.Outputs,
		States:      result.States,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, meta RunMetadata, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ExportJSON(file, meta, result)
}
