package alarm

import (
	"encoding/binary"
	"math"
	"time"
)

// Tone parameters. Sample rate and depth match the speech player's
// audio context so both can share one output device.
const (
	toneSampleRate = 24000
	toneFreq       = 880.0 // A5, cuts through kitchen noise

	pulseOn  = 350 * time.Millisecond
	pulseOff = 150 * time.Millisecond
	pulseGap = 900 * time.Millisecond // silence between double-beeps
)

// alarmTone synthesizes the alarm as WAV bytes: a double-beep pulse
// pattern repeated for the ringer's ceiling duration. Playback is cut
// short by dismissal; the fixed length is the upper bound.
func alarmTone() []byte {
	return tonePattern(30 * time.Second)
}

// tonePattern renders beep-beep-pause cycles until total is filled.
func tonePattern(total time.Duration) []byte {
	samples := func(d time.Duration) int {
		return int(float64(toneSampleRate) * d.Seconds())
	}

	cycle := 2*(pulseOn+pulseOff) + pulseGap
	pcm := make([]int16, 0, samples(total))

	for time.Duration(len(pcm))*time.Second/toneSampleRate < total-cycle {
		for i := 0; i < 2; i++ {
			pcm = appendBeep(pcm, samples(pulseOn))
			pcm = append(pcm, make([]int16, samples(pulseOff))...)
		}
		pcm = append(pcm, make([]int16, samples(pulseGap))...)
	}

	return wrapWAV(pcm)
}

// appendBeep writes one sine burst with short attack/release ramps so
// the pulses don't click.
func appendBeep(pcm []int16, n int) []int16 {
	ramp := toneSampleRate / 100 // 10ms
	for i := 0; i < n; i++ {
		amp := 0.6
		if i < ramp {
			amp *= float64(i) / float64(ramp)
		} else if n-i < ramp {
			amp *= float64(n-i) / float64(ramp)
		}
		v := amp * math.Sin(2*math.Pi*toneFreq*float64(i)/toneSampleRate)
		pcm = append(pcm, int16(v*math.MaxInt16))
	}
	return pcm
}

// wrapWAV wraps 16-bit mono PCM in a minimal RIFF/WAVE header, the
// format the audio player expects.
func wrapWAV(pcm []int16) []byte {
	dataLen := len(pcm) * 2
	buf := make([]byte, 0, 44+dataLen)

	le := binary.LittleEndian
	u32 := func(v uint32) []byte { b := make([]byte, 4); le.PutUint32(b, v); return b }
	u16 := func(v uint16) []byte { b := make([]byte, 2); le.PutUint16(b, v); return b }

	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, u32(uint32(36+dataLen))...)
	buf = append(buf, []byte("WAVE")...)

	buf = append(buf, []byte("fmt ")...)
	buf = append(buf, u32(16)...)                     // PCM chunk size
	buf = append(buf, u16(1)...)                      // PCM format
	buf = append(buf, u16(1)...)                      // mono
	buf = append(buf, u32(toneSampleRate)...)         // sample rate
	buf = append(buf, u32(toneSampleRate*2)...)       // byte rate
	buf = append(buf, u16(2)...)                      // block align
	buf = append(buf, u16(16)...)                     // bits per sample

	buf = append(buf, []byte("data")...)
	buf = append(buf, u32(uint32(dataLen))...)
	for _, s := range pcm {
		buf = append(buf, byte(s), byte(s>>8))
	}
	return buf
}
