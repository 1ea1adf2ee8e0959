package pipeline

import (
	"errors"
	"fmt"
)

// Stage names a step of the run.
type Stage string

const (
	StageSearch       Stage = "search"
	StageCategory     Stage = "category"
	StageTitle        Stage = "title"
	StageSubheadings  Stage = "subheadings"
	StageSection      Stage = "section"
	StageIllustration Stage = "illustration"
	StageImagePrompt  Stage = "image_prompt"
	StageLinks        Stage = "links"
	StageRender       Stage = "render"
)

// StageError is a failure that aborted the run at Stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf reports the stage recorded in err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

func fail(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
