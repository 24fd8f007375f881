package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// Extensions lists the audio files a song directory may hold.
var Extensions = []string{".mp3", ".ogg", ".wav"}

// IsAudio reports whether path has a playable extension.
func IsAudio(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Decode opens an mp3, ogg or wav file. The caller closes the streamer.
func Decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if nil != err {
		return nil, beep.Format{}, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unsupported audio file %v", path)
	}
	if nil != err {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unable to decode %v: %w", path, err)
	}
	return streamer, format, nil
}

// Song resamples s to the output rate when needed and delays it by delay.
func Song(out beep.SampleRate, format beep.Format, s beep.Streamer, delay time.Duration) beep.Streamer {
	if format.SampleRate != out {
		s = beep.Resample(4, format.SampleRate, out, s)
	}
	return Delay(out, delay, s)
}

// Delay prefixes s with silence.
func Delay(rate beep.SampleRate, d time.Duration, s beep.Streamer) beep.Streamer {
	if d <= 0 {
		return s
	}
	return beep.Seq(beep.Silence(rate.N(d)), s)
}

// Click is the length of one metronome tick.
const Click = 30 * time.Millisecond

// Metronome ticks every beat, the first tick on sample zero. The downbeat of
// every four is pitched higher. It never drains.
func Metronome(rate beep.SampleRate, bpm float64) beep.Streamer {
	period := int(math.Round(float64(rate) * 60 / bpm))
	click := rate.N(Click)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			beat, off := pos/period, pos%period
			v := 0.0
			if off < click {
				freq := 880.0
				if beat%4 == 0 {
					freq = 1760
				}
				t := float64(off) / float64(rate)
				env := 1 - float64(off)/float64(click)
				v = 0.4 * env * math.Sin(2*math.Pi*freq*t)
			}
			samples[i] = [2]float64{v, v}
			pos++
		}
		return len(samples), true
	})
}
