package input

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"syscall"
	"unicode"
)

// From linux/input-event-codes.h
const (
	evKey = 0x01

	keyReleased = 0
	keyPressed  = 1
)

type keyEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// ReadEvdev reads raw key events from a Linux input device such as
// /dev/input/event3 and forwards the ones bound to a lane. Unlike the
// terminal it reports real releases. codes[i] is the key code of lane i.
func ReadEvdev(kbd string, codes []uint16, s *Sampler) (*os.File, error) {
	file, err := os.Open(kbd)
	if err != nil {
		return nil, err
	}
	go func() {
		var ev keyEvent
		for {
			err := binary.Read(file, binary.LittleEndian, &ev)
			if nil != err {
				log.Println(err, "unable to read keyboard input")
				return
			}
			if lane, down, ok := evdevEvent(ev, codes); ok {
				s.Push(Event{Lane: lane, Down: down})
			}
		}
	}()
	return file, nil
}

// evdevEvent maps a raw event onto a lane. Auto-repeat (value 2) is dropped.
func evdevEvent(ev keyEvent, codes []uint16) (int, bool, bool) {
	if ev.Type != evKey {
		return 0, false, false
	}
	if ev.Value != keyPressed && ev.Value != keyReleased {
		return 0, false, false
	}
	for i, c := range codes {
		if c == ev.Code {
			return i, ev.Value == keyPressed, true
		}
	}
	return 0, false, false
}

// From linux/input-event-codes.h, US layout.
var evdevCodes = map[rune]uint16{
	'1': 2, '2': 3, '3': 4, '4': 5, '5': 6, '6': 7, '7': 8, '8': 9, '9': 10, '0': 11,
	'q': 16, 'w': 17, 'e': 18, 'r': 19, 't': 20, 'y': 21, 'u': 22, 'i': 23, 'o': 24, 'p': 25,
	'a': 30, 's': 31, 'd': 32, 'f': 33, 'g': 34, 'h': 35, 'j': 36, 'k': 37, 'l': 38, ';': 39,
	'z': 44, 'x': 45, 'c': 46, 'v': 47, 'b': 48, 'n': 49, 'm': 50, ',': 51, '.': 52, '/': 53,
	' ': 57,
}

// EvdevCodes maps lane keys onto key codes.
func EvdevCodes(keys []rune) ([]uint16, error) {
	codes := make([]uint16, len(keys))
	for i, r := range keys {
		c, ok := evdevCodes[unicode.ToLower(r)]
		if !ok {
			return nil, fmt.Errorf("no key code for %q", r)
		}
		codes[i] = c
	}
	return codes, nil
}
