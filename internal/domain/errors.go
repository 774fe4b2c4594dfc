package domain

import (
	"errors"
	"fmt"
)

type Stage string

const (
	StageFetch     Stage = "fetch"
	StageRasterize Stage = "rasterize"
	StageUpload    Stage = "upload"
)

// StageError — ошибка конкретного шага конвейера.
type StageError struct {
	Stage Stage
	Page  int // только для upload, с 1
	Err   error
}

func (e *StageError) Error() string {
	switch {
	case e.Stage == StageUpload && e.Page > 0:
		return fmt.Sprintf("upload failed on page %d: %v", e.Page, e.Err)
	case e.Stage == StageFetch:
		return fmt.Sprintf("failed to download pdf: %v", e.Err)
	case e.Stage == StageRasterize:
		return fmt.Sprintf("failed to convert pdf to images: %v", e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func NewFetchError(err error) error {
	return &StageError{Stage: StageFetch, Err: err}
}

func NewRasterizationError(err error) error {
	return &StageError{Stage: StageRasterize, Err: err}
}

func NewUploadError(page int, err error) error {
	return &StageError{Stage: StageUpload, Page: page, Err: err}
}

// StageOf возвращает шаг, на котором упал запрос, или "".
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

func IsFetchError(err error) bool         { return StageOf(err) == StageFetch }
func IsRasterizationError(err error) bool { return StageOf(err) == StageRasterize }
func IsUploadError(err error) bool        { return StageOf(err) == StageUpload }
