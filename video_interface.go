// video_interface.go - video backend interface

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"time"
)

// VideoError provides detailed error context for video operations
type VideoError struct {
	Operation string
	Details   string
	Err       error
}

func (e *VideoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("video %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("video %s failed: %s", e.Operation, e.Details)
}

// FrameSnapshot encapsulates the data needed to represent a complete frame
type FrameSnapshot struct {
	Buffer    []byte
	Width     int
	Height    int
	Format    PixelFormat
	Timestamp time.Time
}

// DisplayConfig contains hardware-independent configuration
type DisplayConfig struct {
	Width       int
	Height      int
	Scale       int
	RefreshRate int
	PixelFormat PixelFormat
	VSync       bool
	Fullscreen  bool
}

func ClampScale(s int) int {
	if s < 1 {
		return 1
	}
	if s > 4 {
		return 4
	}
	return s
}

// VideoOutput defines the minimal interface that backends must implement
type VideoOutput interface {
	Start() error
	Stop() error
	Close() error
	IsStarted() bool

	SetDisplayConfig(config DisplayConfig) error
	GetDisplayConfig() DisplayConfig
	UpdateFrame(buffer []byte) error // Takes raw RGBA pixels only

	WaitForVSync() error
	GetFrameCount() uint64
	GetRefreshRate() int
}

type PixelFormat int

const (
	PixelFormatRGBA PixelFormat = iota
	PixelFormatRGB565
	PixelFormatPaletted
)

// KeyboardInput is implemented by video outputs that can forward keyboard bytes.
type KeyboardInput interface {
	SetKeyHandler(func(byte))
}

// Predefined video backend types
const (
	VIDEO_BACKEND_EBITEN = iota
)

// NewVideoOutput creates a new video output instance using the specified backend
func NewVideoOutput(backend int) (VideoOutput, error) {
	switch backend {
	case VIDEO_BACKEND_EBITEN:
		return NewEbitenOutput()
	}
	return nil, &VideoError{
		Operation: "backend creation",
		Details:   fmt.Sprintf("unknown backend type: %d", backend),
	}
}
