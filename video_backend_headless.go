//go:build headless

// video_backend_headless.go - no-op video output for headless builds
// and tests.

package main

import "sync/atomic"

type HeadlessVideoOutput struct {
	started     bool
	config      DisplayConfig
	frameCount  uint64
	refreshRate int
	keyHandler  func(byte)
}

func NewEbitenOutput() (VideoOutput, error) {
	return &HeadlessVideoOutput{refreshRate: 60}, nil
}

func NewEbitenScreenOutput() (ScreenOutput, error) {
	return &headlessScreenOutput{}, nil
}

func (h *HeadlessVideoOutput) Start() error {
	h.started = true
	return nil
}

func (h *HeadlessVideoOutput) Stop() error {
	h.started = false
	return nil
}

func (h *HeadlessVideoOutput) Close() error {
	h.started = false
	return nil
}

func (h *HeadlessVideoOutput) IsStarted() bool {
	return h.started
}

func (h *HeadlessVideoOutput) SetDisplayConfig(config DisplayConfig) error {
	h.config = config
	return nil
}

func (h *HeadlessVideoOutput) GetDisplayConfig() DisplayConfig {
	return h.config
}

func (h *HeadlessVideoOutput) UpdateFrame(buffer []byte) error {
	atomic.AddUint64(&h.frameCount, 1)
	return nil
}

func (h *HeadlessVideoOutput) WaitForVSync() error {
	return nil
}

func (h *HeadlessVideoOutput) GetFrameCount() uint64 {
	return atomic.LoadUint64(&h.frameCount)
}

func (h *HeadlessVideoOutput) GetRefreshRate() int {
	if h.refreshRate == 0 {
		return 60
	}
	return h.refreshRate
}

func (h *HeadlessVideoOutput) SetKeyHandler(fn func(byte)) {
	h.keyHandler = fn
}

// headlessScreenOutput discards every frame; NewEbitenScreenOutput
// returns it in headless builds.
type headlessScreenOutput struct{}

func (headlessScreenOutput) Resize(w, h int)                 {}
func (headlessScreenOutput) Present(pixels []byte, w, h int) {}
func (headlessScreenOutput) SetKeyHandler(fn func(byte))     {}
func (headlessScreenOutput) SetTickHandler(fn func())        {}
func (headlessScreenOutput) SetMouseHandler(fn func(x, y int, wheelX, wheelY float64)) {}
