//go:build headless

// audio_backend_headless.go - no-op audio output for headless builds
// and tests.

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

type OtoPlayer struct {
	started bool
	mixer   *AudioMixer
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return &OtoPlayer{}, nil
}

func (op *OtoPlayer) SetupPlayer(mixer *AudioMixer) {
	op.mixer = mixer
}

func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	return len(p), nil
}

func (op *OtoPlayer) Start() {
	op.started = true
}

func (op *OtoPlayer) Stop() {
	op.started = false
}

func (op *OtoPlayer) Close() {
	op.started = false
}

func (op *OtoPlayer) IsStarted() bool {
	return op.started
}
