//go:build !headless

// video_backend_ebiten.go - Ebiten video backend for the host loop

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
)

// EbitenOutput is the window backend: an ebiten.Game driving a single
// RGBA framebuffer behind a RWMutex, a vsync channel signalled from
// Draw, an F11 fullscreen toggle, and clipboard paste on
// Ctrl+Shift+V. ebitenScreenOutput adapts it to the screen device's
// narrower ScreenOutput contract so device_screen.go never imports
// ebiten directly.
type EbitenOutput struct {
	running     bool
	window      *ebiten.Image
	width       int
	height      int
	format      PixelFormat
	fullscreen  bool
	scale       int
	windowedW   int
	windowedH   int
	frameBuffer []byte
	bufferMutex sync.RWMutex
	frameCount  uint64
	refreshRate int
	vsyncChan   chan struct{}
	keyHandler  func(byte)
	onTick      func()
	onMouse     func(x, y int, wheelX, wheelY float64)
	onButton    func(bit byte, down bool)
	onMouseBtn  func(bit byte, down bool)
	onCtrlKey   func(byte)

	clipboardOnce sync.Once
	clipboardOK   bool
}

// controllerKeyBits maps the arrow/modifier keys Varvara's controller
// device treats as buttons (device_controller.go's Button* bits),
// mirroring the fixed key set uxn11.c's get_button() watches.
var controllerKeyBits = []struct {
	key ebiten.Key
	bit byte
}{
	{ebiten.KeyArrowUp, ButtonUp},
	{ebiten.KeyArrowDown, ButtonDown},
	{ebiten.KeyArrowLeft, ButtonLeft},
	{ebiten.KeyArrowRight, ButtonRight},
	{ebiten.KeyControlLeft, ButtonCtrl},
	{ebiten.KeyControlRight, ButtonCtrl},
	{ebiten.KeyAltLeft, ButtonAlt},
	{ebiten.KeyAltRight, ButtonAlt},
	{ebiten.KeyShiftLeft, ButtonShift},
	{ebiten.KeyShiftRight, ButtonShift},
	{ebiten.KeyHome, ButtonHome},
}

var mouseButtonBits = []struct {
	key ebiten.MouseButton
	bit byte
}{
	{ebiten.MouseButtonLeft, MouseButtonLeft},
	{ebiten.MouseButtonMiddle, MouseButtonMiddle},
	{ebiten.MouseButtonRight, MouseButtonRight},
}

func NewEbitenOutput() (VideoOutput, error) {
	return &EbitenOutput{
		width:       640,
		height:      480,
		format:      PixelFormatRGBA,
		scale:       1,
		windowedW:   640,
		windowedH:   480,
		frameBuffer: make([]byte, 640*480*4),
		refreshRate: 60,
		vsyncChan:   make(chan struct{}, 1),
	}, nil
}

func (eo *EbitenOutput) Start() error {
	if eo.running {
		return nil
	}
	eo.running = true
	ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	ebiten.SetWindowTitle("uxnvm")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	if eo.fullscreen {
		ebiten.SetFullscreen(true)
	}

	go func() {
		if err := ebiten.RunGame(eo); err != nil {
			fmt.Printf("ebiten error: %v\n", err)
		}
	}()

	<-eo.vsyncChan
	return nil
}

func (eo *EbitenOutput) Stop() error {
	eo.running = false
	return nil
}

func (eo *EbitenOutput) Close() error {
	return eo.Stop()
}

func (eo *EbitenOutput) UpdateFrame(data []byte) error {
	eo.bufferMutex.Lock()
	copy(eo.frameBuffer, data)
	eo.bufferMutex.Unlock()
	return nil
}

func (eo *EbitenOutput) SetDisplayConfig(config DisplayConfig) error {
	eo.bufferMutex.Lock()
	defer eo.bufferMutex.Unlock()

	width := config.Width
	height := config.Height
	if width <= 0 {
		width = eo.width
	}
	if height <= 0 {
		height = eo.height
	}
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 480
	}
	eo.width = width
	eo.height = height
	eo.format = config.PixelFormat
	eo.scale = ClampScale(config.Scale)
	newSize := eo.width * eo.height * 4

	if len(eo.frameBuffer) != newSize {
		eo.frameBuffer = make([]byte, newSize)
	}

	eo.windowedW = eo.width * eo.scale
	eo.windowedH = eo.height * eo.scale
	eo.fullscreen = config.Fullscreen
	ebiten.SetFullscreen(eo.fullscreen)
	if !eo.fullscreen {
		ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	}
	if eo.window != nil {
		eo.window.Dispose()
		eo.window = nil
	}
	return nil
}

func (eo *EbitenOutput) GetDisplayConfig() DisplayConfig {
	return DisplayConfig{
		Width:       eo.width,
		Height:      eo.height,
		Scale:       eo.scale,
		PixelFormat: eo.format,
		RefreshRate: eo.refreshRate,
		VSync:       true,
		Fullscreen:  eo.fullscreen,
	}
}

func (eo *EbitenOutput) WaitForVSync() error {
	<-eo.vsyncChan
	return nil
}

func (eo *EbitenOutput) GetFrameCount() uint64 {
	return eo.frameCount
}

func (eo *EbitenOutput) GetRefreshRate() int {
	return eo.refreshRate
}

func (eo *EbitenOutput) GetSnapshot() (FrameSnapshot, error) {
	eo.bufferMutex.RLock()
	defer eo.bufferMutex.RUnlock()

	snapshot := FrameSnapshot{
		Buffer:    make([]byte, len(eo.frameBuffer)),
		Width:     eo.width,
		Height:    eo.height,
		Format:    eo.format,
		Timestamp: time.Now(),
	}
	copy(snapshot.Buffer, eo.frameBuffer)
	return snapshot, nil
}

func (eo *EbitenOutput) IsStarted() bool {
	return eo.running
}

func (eo *EbitenOutput) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if !eo.running {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		eo.bufferMutex.Lock()
		eo.fullscreen = !eo.fullscreen
		ebiten.SetFullscreen(eo.fullscreen)
		if !eo.fullscreen {
			ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
		}
		eo.bufferMutex.Unlock()
	}
	eo.handleKeyboardInput()
	eo.handleControllerButtons()
	eo.handleMouseButtons()
	eo.bufferMutex.RLock()
	tick := eo.onTick
	mouse := eo.onMouse
	eo.bufferMutex.RUnlock()
	if tick != nil {
		tick()
	}
	if mouse != nil {
		x, y := ebiten.CursorPosition()
		wx, wy := ebiten.Wheel()
		mouse(x, y, wx, wy)
	}
	return nil
}

// handleControllerButtons polls the fixed arrow/modifier key set and
// reports each down/up transition to the controller device, alongside
// (not instead of) the ANSI escape sequences the same arrow keys still
// emit on the console stream.
func (eo *EbitenOutput) handleControllerButtons() {
	eo.bufferMutex.RLock()
	fn := eo.onButton
	eo.bufferMutex.RUnlock()
	if fn == nil {
		return
	}
	for _, kb := range controllerKeyBits {
		if inpututil.IsKeyJustPressed(kb.key) {
			fn(kb.bit, true)
		}
		if inpututil.IsKeyJustReleased(kb.key) {
			fn(kb.bit, false)
		}
	}
}

// handleMouseButtons reports left/middle/right click transitions to
// the mouse device.
func (eo *EbitenOutput) handleMouseButtons() {
	eo.bufferMutex.RLock()
	fn := eo.onMouseBtn
	eo.bufferMutex.RUnlock()
	if fn == nil {
		return
	}
	for _, mb := range mouseButtonBits {
		if inpututil.IsMouseButtonJustPressed(mb.key) {
			fn(mb.bit, true)
		}
		if inpututil.IsMouseButtonJustReleased(mb.key) {
			fn(mb.bit, false)
		}
	}
}

// SetKeyHandler implements KeyboardInput (video_interface.go); the
// host loop wires this to the machine's console stdin port.
func (eo *EbitenOutput) SetKeyHandler(fn func(byte)) {
	eo.bufferMutex.Lock()
	eo.keyHandler = fn
	eo.bufferMutex.Unlock()
}

// SetTickHandler registers a callback invoked once per Update, used by
// the host loop to drive the screen device's refresh vector in step
// with the display instead of on a separate, unsynchronised ticker.
func (eo *EbitenOutput) SetTickHandler(fn func()) {
	eo.bufferMutex.Lock()
	eo.onTick = fn
	eo.bufferMutex.Unlock()
}

// SetMouseHandler registers a callback invoked once per Update with
// the current cursor position and the accumulated wheel delta.
func (eo *EbitenOutput) SetMouseHandler(fn func(x, y int, wheelX, wheelY float64)) {
	eo.bufferMutex.Lock()
	eo.onMouse = fn
	eo.bufferMutex.Unlock()
}

// SetButtonHandler registers a callback invoked on every down/up
// transition of the arrow/modifier keys the controller device treats
// as buttons.
func (eo *EbitenOutput) SetButtonHandler(fn func(bit byte, down bool)) {
	eo.bufferMutex.Lock()
	eo.onButton = fn
	eo.bufferMutex.Unlock()
}

// SetMouseButtonHandler registers a callback invoked on every
// down/up transition of the left/middle/right mouse buttons.
func (eo *EbitenOutput) SetMouseButtonHandler(fn func(bit byte, down bool)) {
	eo.bufferMutex.Lock()
	eo.onMouseBtn = fn
	eo.bufferMutex.Unlock()
}

// SetControllerKeyHandler registers a callback invoked with every
// printable character typed, alongside (not instead of) the console
// byte stream SetKeyHandler feeds.
func (eo *EbitenOutput) SetControllerKeyHandler(fn func(byte)) {
	eo.bufferMutex.Lock()
	eo.onCtrlKey = fn
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) emitByte(b byte) {
	eo.bufferMutex.RLock()
	handler := eo.keyHandler
	eo.bufferMutex.RUnlock()
	if handler != nil {
		handler(b)
	}
}

func (eo *EbitenOutput) emitControllerKey(b byte) {
	eo.bufferMutex.RLock()
	fn := eo.onCtrlKey
	eo.bufferMutex.RUnlock()
	if fn != nil {
		fn(b)
	}
}

func (eo *EbitenOutput) emitSeq(seq []byte) {
	for _, b := range seq {
		eo.emitByte(b)
	}
}

func (eo *EbitenOutput) handleKeyboardInput() {
	eo.bufferMutex.RLock()
	hasHandler := eo.keyHandler != nil
	eo.bufferMutex.RUnlock()
	if !hasHandler {
		return
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		eo.handleClipboardPaste()
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		if b, ok := runeToInputByte(r); ok {
			eo.emitByte(b)
			eo.emitControllerKey(b)
		}
	}

	specialKeys := []ebiten.Key{
		ebiten.KeyEnter,
		ebiten.KeyNumpadEnter,
		ebiten.KeyBackspace,
		ebiten.KeyTab,
		ebiten.KeyEscape,
		ebiten.KeyArrowUp,
		ebiten.KeyArrowDown,
		ebiten.KeyArrowRight,
		ebiten.KeyArrowLeft,
		ebiten.KeyHome,
		ebiten.KeyEnd,
		ebiten.KeyDelete,
	}
	for _, key := range specialKeys {
		if inpututil.IsKeyJustPressed(key) {
			if seq, ok := translateSpecialKey(key); ok {
				eo.emitSeq(seq)
			}
		}
	}
}

func runeToInputByte(r rune) (byte, bool) {
	if r <= 0 || r > 0xFF {
		return 0, false
	}
	return byte(r), true
}

func translateSpecialKey(key ebiten.Key) ([]byte, bool) {
	switch key {
	case ebiten.KeyEnter, ebiten.KeyNumpadEnter:
		return []byte{'\n'}, true
	case ebiten.KeyBackspace:
		return []byte{'\b'}, true
	case ebiten.KeyTab:
		return []byte{'\t'}, true
	case ebiten.KeyEscape:
		return []byte{0x1B}, true
	case ebiten.KeyArrowUp:
		return []byte{0x1B, '[', 'A'}, true
	case ebiten.KeyArrowDown:
		return []byte{0x1B, '[', 'B'}, true
	case ebiten.KeyArrowRight:
		return []byte{0x1B, '[', 'C'}, true
	case ebiten.KeyArrowLeft:
		return []byte{0x1B, '[', 'D'}, true
	case ebiten.KeyHome:
		return []byte{0x1B, '[', 'H'}, true
	case ebiten.KeyEnd:
		return []byte{0x1B, '[', 'F'}, true
	case ebiten.KeyDelete:
		return []byte{0x1B, '[', '3', '~'}, true
	default:
		return nil, false
	}
}

func normalizePasteText(raw []byte) []byte {
	norm := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\r' {
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			norm = append(norm, '\n')
			continue
		}
		norm = append(norm, raw[i])
	}
	return norm
}

func capPasteText(raw []byte, max int) []byte {
	if len(raw) <= max {
		return raw
	}
	return raw[:max]
}

func (eo *EbitenOutput) handleClipboardPaste() {
	eo.clipboardOnce.Do(func() {
		eo.clipboardOK = clipboard.Init() == nil
	})
	if !eo.clipboardOK {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	data = normalizePasteText(data)
	data = capPasteText(data, 4096)
	for _, b := range data {
		eo.emitByte(b)
	}
}

func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	if eo.window == nil {
		eo.window = ebiten.NewImage(eo.width, eo.height)
	}

	eo.bufferMutex.RLock()
	eo.window.WritePixels(eo.frameBuffer)
	eo.bufferMutex.RUnlock()
	screen.DrawImage(eo.window, nil)

	eo.frameCount++
	select {
	case eo.vsyncChan <- struct{}{}:
	default:
	}
}

func (eo *EbitenOutput) Layout(_, _ int) (int, int) {
	return eo.width, eo.height
}

// ebitenScreenOutput adapts the engine's richer VideoOutput to the
// screen device's narrow ScreenOutput contract (device_screen.go).
type ebitenScreenOutput struct {
	vo VideoOutput
}

// NewEbitenScreenOutput starts an ebiten window and returns a
// ScreenOutput backed by it, ready to attach to a ScreenDevice.
func NewEbitenScreenOutput() (ScreenOutput, error) {
	vo, err := NewEbitenOutput()
	if err != nil {
		return nil, err
	}
	if err := vo.Start(); err != nil {
		return nil, err
	}
	return &ebitenScreenOutput{vo: vo}, nil
}

func (e *ebitenScreenOutput) Resize(w, h int) {
	_ = e.vo.SetDisplayConfig(DisplayConfig{Width: w, Height: h, Scale: 1, PixelFormat: PixelFormatRGBA})
}

func (e *ebitenScreenOutput) Present(pixels []byte, w, h int) {
	_ = e.vo.UpdateFrame(pixels)
}

// SetKeyHandler forwards to the underlying VideoOutput when it
// implements KeyboardInput, letting the host loop wire console stdin
// without depending on ebiten directly.
func (e *ebitenScreenOutput) SetKeyHandler(fn func(byte)) {
	if kb, ok := e.vo.(KeyboardInput); ok {
		kb.SetKeyHandler(fn)
	}
}

// tickSettable and mouseSettable are satisfied by *EbitenOutput; the
// host loop uses them through ScreenOutput without depending on
// ebiten, the same boundary SetKeyHandler/KeyboardInput establishes.
type tickSettable interface{ SetTickHandler(func()) }
type mouseSettable interface {
	SetMouseHandler(func(x, y int, wheelX, wheelY float64))
}
type buttonSettable interface{ SetButtonHandler(func(bit byte, down bool)) }
type mouseButtonSettable interface {
	SetMouseButtonHandler(func(bit byte, down bool))
}
type controllerKeySettable interface{ SetControllerKeyHandler(func(byte)) }

func (e *ebitenScreenOutput) SetTickHandler(fn func()) {
	if ts, ok := e.vo.(tickSettable); ok {
		ts.SetTickHandler(fn)
	}
}

func (e *ebitenScreenOutput) SetMouseHandler(fn func(x, y int, wheelX, wheelY float64)) {
	if ms, ok := e.vo.(mouseSettable); ok {
		ms.SetMouseHandler(fn)
	}
}

func (e *ebitenScreenOutput) SetButtonHandler(fn func(bit byte, down bool)) {
	if bs, ok := e.vo.(buttonSettable); ok {
		bs.SetButtonHandler(fn)
	}
}

func (e *ebitenScreenOutput) SetMouseButtonHandler(fn func(bit byte, down bool)) {
	if mb, ok := e.vo.(mouseButtonSettable); ok {
		mb.SetMouseButtonHandler(fn)
	}
}

func (e *ebitenScreenOutput) SetControllerKeyHandler(fn func(byte)) {
	if ck, ok := e.vo.(controllerKeySettable); ok {
		ck.SetControllerKeyHandler(fn)
	}
}
