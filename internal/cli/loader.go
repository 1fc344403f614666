package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/sepset/internal/engine"
	"github.com/roach88/sepset/internal/generator"
	"github.com/roach88/sepset/internal/pipeline"
	"github.com/roach88/sepset/internal/registry"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // generic/unknown error
	ErrCodeScanError   = "E002" // directory scan error
	ErrCodeNoFiles     = "E003" // no CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	// Pipeline validation errors
	ErrCodeUnknownStep      = "E101" // step id not registered
	ErrCodeUnknownGenerator = "E102" // generator id not registered
	ErrCodeUnknownExit      = "E103" // exit condition id not registered
	ErrCodeInvalidStep      = "E104" // malformed step entry
)

// LoadError represents an error that occurred during pipeline loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// PipelineDef is the decoded form of one CUE pipeline declaration.
type PipelineDef struct {
	Name  string
	Steps []StepDef `json:"steps"`
}

// StepDef is one entry of a pipeline's step list: either a leaf step from
// the registry, a loop, or an apply-together batch. Exactly one of Step,
// Loop and ApplyTogether must be set.
type StepDef struct {
	Step      string         `json:"step,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
	Generator *GeneratorDef  `json:"generator,omitempty"`

	Loop          *LoopDef  `json:"loop,omitempty"`
	ApplyTogether *BatchDef `json:"applyTogether,omitempty"`
}

// LoopDef declares a loop construct.
type LoopDef struct {
	Name  string    `json:"name,omitempty"`
	Exit  string    `json:"exit"`
	Steps []StepDef `json:"steps"`
}

// BatchDef declares an apply-together construct.
type BatchDef struct {
	Name  string    `json:"name,omitempty"`
	Steps []StepDef `json:"steps"`
}

// GeneratorDef declares a candidate generator, possibly wrapping another.
type GeneratorDef struct {
	ID     string         `json:"id"`
	Params map[string]any `json:"params,omitempty"`
	Inner  *GeneratorDef  `json:"inner,omitempty"`
}

// LoadPipelines loads every pipeline declared under the top-level
// `pipeline` struct of the CUE files in dir. Declarations are decoded but
// not yet resolved against a registry.
func LoadPipelines(dir string) ([]PipelineDef, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("pipeline directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing pipeline directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	pipelines := value.LookupPath(cue.ParsePath("pipeline"))
	if !pipelines.Exists() {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "no pipelines declared (want a top-level `pipeline` struct)"}
	}
	fields, err := pipelines.Fields()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("iterating pipelines: %v", err)}
	}

	var defs []PipelineDef
	for fields.Next() {
		var def PipelineDef
		if err := fields.Value().Decode(&def); err != nil {
			return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("pipeline %q: %v", fields.Label(), err)}
		}
		def.Name = fields.Label()
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "no pipelines declared"}
	}
	return defs, nil
}

// Assemble resolves a pipeline definition against the registry into
// executable steps. Every referenced id is validated here, before any data
// is touched.
func Assemble(reg *registry.Registry, def PipelineDef) ([]pipeline.Step, error) {
	return assembleSteps(reg, def.Name, def.Steps)
}

func assembleSteps(reg *registry.Registry, scope string, defs []StepDef) ([]pipeline.Step, error) {
	if len(defs) == 0 {
		return nil, &LoadError{Code: ErrCodeInvalidStep, Message: fmt.Sprintf("%s: empty step list", scope)}
	}
	steps := make([]pipeline.Step, 0, len(defs))
	for i, def := range defs {
		step, err := assembleStep(reg, fmt.Sprintf("%s.steps[%d]", scope, i), def)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func assembleStep(reg *registry.Registry, scope string, def StepDef) (pipeline.Step, error) {
	set := 0
	for _, on := range []bool{def.Step != "", def.Loop != nil, def.ApplyTogether != nil} {
		if on {
			set++
		}
	}
	if set != 1 {
		return nil, &LoadError{Code: ErrCodeInvalidStep, Message: fmt.Sprintf("%s: want exactly one of step, loop, applyTogether", scope)}
	}

	switch {
	case def.Loop != nil:
		return assembleLoop(reg, scope, def.Loop)
	case def.ApplyTogether != nil:
		return assembleBatch(reg, scope, def.ApplyTogether)
	default:
		return assembleLeaf(reg, scope, def)
	}
}

func assembleLeaf(reg *registry.Registry, scope string, def StepDef) (pipeline.Step, error) {
	if !reg.HasStep(def.Step) {
		return nil, &LoadError{Code: ErrCodeUnknownStep, Message: fmt.Sprintf("%s: unknown step %q", scope, def.Step)}
	}
	step, err := reg.BuildStep(def.Step, def.Params)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidStep, Message: fmt.Sprintf("%s: %v", scope, err)}
	}
	if def.Generator != nil {
		gen, err := assembleGenerator(reg, scope, def.Generator)
		if err != nil {
			return nil, err
		}
		setter, ok := step.(interface{ SetGenerator(generator.Generator) })
		if !ok {
			return nil, &LoadError{Code: ErrCodeInvalidStep, Message: fmt.Sprintf("%s: step %q does not take a generator", scope, def.Step)}
		}
		setter.SetGenerator(gen)
	}
	return step, nil
}

func assembleGenerator(reg *registry.Registry, scope string, def *GeneratorDef) (generator.Generator, error) {
	if !reg.HasGenerator(def.ID) {
		return nil, &LoadError{Code: ErrCodeUnknownGenerator, Message: fmt.Sprintf("%s: unknown generator %q", scope, def.ID)}
	}
	params := registry.Params{}
	for k, v := range def.Params {
		params[k] = v
	}
	if def.Inner != nil {
		inner, err := assembleGenerator(reg, scope, def.Inner)
		if err != nil {
			return nil, err
		}
		params["inner"] = inner
	}
	gen, err := reg.BuildGenerator(def.ID, params)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeUnknownGenerator, Message: fmt.Sprintf("%s: generator %q: %v", scope, def.ID, err)}
	}
	return gen, nil
}

func assembleLoop(reg *registry.Registry, scope string, def *LoopDef) (pipeline.Step, error) {
	if !reg.HasExit(def.Exit) {
		return nil, &LoadError{Code: ErrCodeUnknownExit, Message: fmt.Sprintf("%s: unknown exit condition %q", scope, def.Exit)}
	}
	exit, err := reg.BuildExit(def.Exit, nil)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeUnknownExit, Message: fmt.Sprintf("%s: %v", scope, err)}
	}
	children, err := assembleSteps(reg, scope+".loop", def.Steps)
	if err != nil {
		return nil, err
	}
	loop, err := engine.NewLoop(def.Name, exit, children...)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidStep, Message: fmt.Sprintf("%s: %v", scope, err)}
	}
	return loop, nil
}

func assembleBatch(reg *registry.Registry, scope string, def *BatchDef) (pipeline.Step, error) {
	children, err := assembleSteps(reg, scope+".applyTogether", def.Steps)
	if err != nil {
		return nil, err
	}
	tests := make([]pipeline.TestStep, 0, len(children))
	for _, child := range children {
		test, ok := child.(pipeline.TestStep)
		if !ok {
			return nil, &LoadError{Code: ErrCodeInvalidStep, Message: fmt.Sprintf("%s: applyTogether children must be test steps, got %q", scope, child.Name())}
		}
		tests = append(tests, test)
	}
	batch, err := engine.NewApplyActionsTogether(def.Name, tests...)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidStep, Message: fmt.Sprintf("%s: %v", scope, err)}
	}
	return batch, nil
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
