package models

import (
	"errors"
	"fmt"
)

// ErrNoVideoStream is returned when a source file contains no video track.
var ErrNoVideoStream = errors.New("no video stream found")

// ErrMasterUploadFailed is returned when the master playlist could not be
// stored. Every other upload failure is tolerable; without the master the
// whole rendition is unplayable.
var ErrMasterUploadFailed = errors.New("master playlist upload failed")

// ProbeError means the source file itself is unusable. It is terminal
// input error: a corrupt upload does not get retried.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// TranscodeError names the rung whose encode failed. One failed rung fails
// the whole job: a master playlist referencing a missing rendition breaks
// adaptive playback.
type TranscodeError struct {
	Rung string
	Err  error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode %s: %v", e.Rung, e.Err)
}

func (e *TranscodeError) Unwrap() error {
	return e.Err
}
