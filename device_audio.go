// device_audio.go - the audio device: four Varvara-style voices

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

/*
Real Varvara ships four audio devices, one per voice, at slots 0x3-0x6
(16 ports each): four independent voices, each with volume/pan, pitch,
an ADSR envelope, and a RAM-resident sample region that loops or plays
once. ReadSample mixes all four voices down to one float32, the value
the oto backend's Read callback asks for on every output sample
(audio_backend_oto.go); the headless stub (audio_backend_headless.go)
holds the mixer but never reads it.
*/

package main

import (
	"math"
	"sync"
)

const audioSampleRate = 44100

// Port offsets within one voice's 16-byte device page.
const (
	voicePitch  = 0x00 // 16-bit, semitone*256 fixed point
	voiceLength = 0x02 // 16-bit sample length
	voiceAddr   = 0x04 // 16-bit sample start address
	voiceVolume = 0x06 // low nibble left, high nibble right
	voiceADSR   = 0x08 // 16-bit packed attack/decay/sustain/release (4 nibbles)
	voicePos    = 0x0a // 16-bit; a read of the low byte (voicePos+1) is live: current sample index
	voiceCtrl   = 0x0f // write: bit 7 loop, any write (re)triggers the voice
)

type envStage byte

const (
	envIdle envStage = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

type voice struct {
	mu sync.Mutex

	pitch  uint16
	length uint16
	addr   uint16
	volL   byte
	volR   byte
	adsr   [4]byte // attack, decay, sustain, release, in envelope ticks/level

	pos      float64 // fractional sample position
	step     float64 // samples advanced per output sample
	loop     bool
	stage    envStage
	level    float64
	stageLen int
	stageAge int
}

// AudioDevice implements a single voice's device page (slot 0x3, 0x4,
// 0x5, or 0x6).
type AudioDevice struct {
	m    *Machine
	base uint16
	v    voice
}

// NewAudioDevice attaches a voice at the given slot (0x3-0x6).
func NewAudioDevice(m *Machine, slot byte) *AudioDevice {
	ad := &AudioDevice{m: m, base: uint16(slot) << 4}
	m.AttachDevice(slot, ad)
	m.MarkWritable(byte(ad.base) + voiceCtrl)
	m.MarkReadable(byte(ad.base) + voicePos + 1)
	return ad
}

func (ad *AudioDevice) DEI(m *Machine, port byte) byte {
	if port-byte(ad.base) == voicePos+1 {
		ad.v.mu.Lock()
		defer ad.v.mu.Unlock()
		return byte(uint16(ad.v.pos))
	}
	return m.dev[port]
}

func (ad *AudioDevice) DEO(m *Machine, port byte, v byte) {
	if port-byte(ad.base) == voiceCtrl {
		ad.trigger(v)
	}
}

// trigger (re)starts the voice by reading its ports fresh and resetting
// the envelope to the attack stage, matching Varvara's "any write to
// the control port retriggers" convention.
func (ad *AudioDevice) trigger(ctrl byte) {
	m := ad.m
	base := ad.base
	ad.v.mu.Lock()
	defer ad.v.mu.Unlock()
	vo := &ad.v
	vo.pitch = uint16(m.dev[base+voicePitch])<<8 | uint16(m.dev[base+voicePitch+1])
	vo.length = uint16(m.dev[base+voiceLength])<<8 | uint16(m.dev[base+voiceLength+1])
	vo.addr = uint16(m.dev[base+voiceAddr])<<8 | uint16(m.dev[base+voiceAddr+1])
	vol := m.dev[base+voiceVolume]
	vo.volL, vo.volR = vol&0x0f, vol>>4
	adsr := uint16(m.dev[base+voiceADSR])<<8 | uint16(m.dev[base+voiceADSR+1])
	vo.adsr = [4]byte{byte(adsr >> 12 & 0xf), byte(adsr >> 8 & 0xf), byte(adsr >> 4 & 0xf), byte(adsr & 0xf)}
	vo.loop = ctrl&0x80 != 0
	vo.pos = 0
	vo.step = pitchToStep(vo.pitch)
	vo.stage = envAttack
	vo.level = 0
	vo.stageAge = 0
	vo.stageLen = int(vo.adsr[0]) * (audioSampleRate / 16)
}

// pitchToStep converts a semitone*256 fixed-point pitch into a
// playback-rate multiplier against the sample's stored rate, using the
// standard 12-tone-equal-temperament formula.
func pitchToStep(pitch uint16) float64 {
	semitone := float64(pitch) / 256.0
	return math.Pow(2, semitone/12.0)
}

// readSample advances this voice by one sample tick and returns its
// contribution to the mix in [-1, 1].
func (ad *AudioDevice) readSample(ram *[RAMPageSize]byte) float64 {
	ad.v.mu.Lock()
	defer ad.v.mu.Unlock()
	vo := &ad.v
	if vo.stage == envIdle || vo.length == 0 {
		vo.stage = envIdle
		return 0
	}
	sampleIdx := int(vo.pos)
	if sampleIdx >= int(vo.length) {
		if vo.loop {
			vo.pos -= float64(vo.length)
			sampleIdx = int(vo.pos)
		} else {
			vo.stage = envIdle
			return 0
		}
	}
	raw := ram[vo.addr+uint16(sampleIdx)]
	s := (float64(raw) - 128) / 128.0
	env := vo.stepEnvelope()
	vo.pos += vo.step
	return s * env * (float64(vo.volL) + float64(vo.volR)) / 2 / 15.0
}

// stepEnvelope advances one ADSR stage by one sample tick and returns
// the current envelope level. Caller holds vo.mu.
func (vo *voice) stepEnvelope() float64 {
	switch vo.stage {
	case envAttack:
		if vo.stageLen <= 0 {
			vo.level = 1
			vo.stage = envDecay
			vo.stageAge = 0
			vo.stageLen = int(vo.adsr[1]) * (audioSampleRate / 16)
			break
		}
		vo.level = float64(vo.stageAge) / float64(vo.stageLen)
		vo.stageAge++
		if vo.stageAge >= vo.stageLen {
			vo.stage = envDecay
			vo.stageAge = 0
			vo.stageLen = int(vo.adsr[1]) * (audioSampleRate / 16)
		}
	case envDecay:
		sustain := float64(vo.adsr[2]) / 15.0
		if vo.stageLen <= 0 {
			vo.level = sustain
			vo.stage = envSustain
			break
		}
		vo.level = 1 - (1-sustain)*float64(vo.stageAge)/float64(vo.stageLen)
		vo.stageAge++
		if vo.stageAge >= vo.stageLen {
			vo.stage = envSustain
			vo.level = sustain
		}
	case envSustain:
		vo.level = float64(vo.adsr[2]) / 15.0
	case envRelease:
		if vo.stageLen <= 0 {
			vo.level = 0
			vo.stage = envIdle
			break
		}
		vo.level -= vo.level / float64(vo.stageLen)
		vo.stageAge++
		if vo.stageAge >= vo.stageLen {
			vo.stage = envIdle
			vo.level = 0
		}
	}
	return vo.level
}

// AudioMixer combines the four voice devices into the single PCM
// stream the host loop's oto backend consumes (audio_backend_oto.go).
type AudioMixer struct {
	m      *Machine
	voices [4]*AudioDevice
}

// NewAudioMixer attaches all four voices (slots 0x3-0x6) and returns
// the mixer that reads them down to one stream.
func NewAudioMixer(m *Machine) *AudioMixer {
	mx := &AudioMixer{m: m}
	for i := 0; i < 4; i++ {
		mx.voices[i] = NewAudioDevice(m, byte(0x3+i))
	}
	return mx
}

// ReadSample mixes all four voices down to one float32 in [-1, 1] and
// advances each voice's envelope and position by one sample tick.
// Called once per output sample by the attached PCM backend.
func (mx *AudioMixer) ReadSample() float32 {
	ram := mx.m.Ram()
	var mix float64
	for _, v := range mx.voices {
		mix += v.readSample(ram)
	}
	if mix > 1 {
		mix = 1
	} else if mix < -1 {
		mix = -1
	}
	return float32(mix)
}
