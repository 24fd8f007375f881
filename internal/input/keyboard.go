package input

import (
	"fmt"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
)

// DefaultFirstRepeat covers the delay before a terminal's first key
// repeat, which is 250ms to 660ms on common systems.
const DefaultFirstRepeat = 700 * time.Millisecond

// Keyboard reads runes from the terminal. Terminals only report key presses,
// so a lane is considered released once no repeat for it has arrived in
// time: FirstRepeat after the press, then ReleaseAfter between repeats.
// Holds therefore rely on the terminal's key repeat.
type Keyboard struct {
	Keys         []rune
	FirstRepeat  time.Duration
	ReleaseAfter time.Duration

	mu     sync.Mutex
	down   []bool
	timers []*time.Timer
}

// KeyLane returns the lane bound to r, or -1.
func KeyLane(keys []rune, r rune) int {
	for i, c := range keys {
		if r == c {
			return i
		}
	}
	return -1
}

// Run opens the keyboard and forwards events to s until Escape or Ctrl-C is
// pressed, which calls quit. The returned function closes the keyboard.
func (k *Keyboard) Run(s *Sampler, quit func()) (func() error, error) {
	keys, err := keyboard.GetKeys(128)
	if nil != err {
		return nil, fmt.Errorf("unable to open keyboard: %w", err)
	}
	go func() {
		for ev := range keys {
			if nil != ev.Err {
				continue
			}
			if ev.Key == keyboard.KeyEsc || ev.Key == keyboard.KeyCtrlC {
				quit()
				return
			}
			k.key(s, ev.Rune)
		}
	}()
	return keyboard.Close, nil
}

func (k *Keyboard) key(s *Sampler, r rune) {
	lane := KeyLane(k.Keys, r)
	if lane < 0 {
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.down) != len(k.Keys) {
		k.down = make([]bool, len(k.Keys))
		k.timers = make([]*time.Timer, len(k.Keys))
	}

	wait := k.ReleaseAfter
	if !k.down[lane] {
		k.down[lane] = true
		s.Push(Event{Lane: lane, Down: true})
		wait = k.FirstRepeat
		if wait < k.ReleaseAfter {
			wait = k.ReleaseAfter
		}
	}

	if t := k.timers[lane]; nil != t {
		t.Reset(wait)
		return
	}
	k.timers[lane] = time.AfterFunc(wait, func() {
		k.mu.Lock()
		defer k.mu.Unlock()
		if k.down[lane] {
			k.down[lane] = false
			s.Push(Event{Lane: lane, Down: false})
		}
	})
}
