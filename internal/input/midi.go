package input

import (
	"fmt"
	"log"

	"gitlab.com/gomidi/midi/v2"
)

// ListenMIDI binds consecutive MIDI keys starting at base to lanes, so pads
// or a keyboard controller can play. The returned function stops listening.
func ListenMIDI(port string, base uint8, s *Sampler) (func(), error) {
	in, err := midi.FindInPort(port)
	if nil != err {
		return nil, fmt.Errorf("unable to find midi port %q: %w", port, err)
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		if ev, ok := midiEvent(msg, base, s.Lanes()); ok {
			s.Push(ev)
		}
	}, midi.HandleError(func(err error) {
		log.Println("midi listener error", err)
	}))
	if nil != err {
		return nil, fmt.Errorf("unable to listen to midi port %q: %w", port, err)
	}
	return stop, nil
}

func midiEvent(msg midi.Message, base uint8, lanes int) (Event, bool) {
	var ch, key, vel uint8
	down := false
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		down = true
	case msg.GetNoteEnd(&ch, &key):
	default:
		return Event{}, false
	}
	if key < base || int(key-base) >= lanes {
		return Event{}, false
	}
	return Event{Lane: int(key - base), Down: down}, true
}
