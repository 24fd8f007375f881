package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"

	"go.bug.st/serial"
)

// A lane controller streams its full key state as fixed frames:
//
//	[SOF0][SOF1][mask lo][mask hi][CKS]
//
// bit N of the mask is set while lane N is held, CKS is the XOR of the two
// mask bytes.
const (
	SOF0 = 0xAA
	SOF1 = 0x55
)

// EncodeFrame builds the on-wire frame for a lane mask.
func EncodeFrame(mask uint16) []byte {
	lo, hi := byte(mask), byte(mask>>8)
	return []byte{SOF0, SOF1, lo, hi, lo ^ hi}
}

// frameReader decodes frames and turns mask changes into events.
type frameReader struct {
	r     *bufio.Reader
	lanes int
	mask  uint16
}

func newFrameReader(r io.Reader, lanes int) *frameReader {
	return &frameReader{r: bufio.NewReader(r), lanes: lanes}
}

// next blocks until a valid frame arrives and returns the transitions it
// carries. Corrupt frames are skipped.
func (f *frameReader) next() ([]Event, error) {
	for {
		b, err := f.r.ReadByte()
		if nil != err {
			return nil, err
		}
		if b != SOF0 {
			continue
		}
		if b, err = f.r.ReadByte(); nil != err {
			return nil, err
		} else if b != SOF1 {
			if b == SOF0 {
				_ = f.r.UnreadByte()
			}
			continue
		}
		var payload [3]byte
		if _, err := io.ReadFull(f.r, payload[:]); nil != err {
			return nil, err
		}
		if payload[0]^payload[1] != payload[2] {
			continue
		}
		return f.diff(uint16(payload[0]) | uint16(payload[1])<<8), nil
	}
}

func (f *frameReader) diff(mask uint16) []Event {
	var events []Event
	changed := mask ^ f.mask
	for lane := 0; lane < f.lanes && lane < 16; lane++ {
		bit := uint16(1) << lane
		if changed&bit != 0 {
			events = append(events, Event{Lane: lane, Down: mask&bit != 0})
		}
	}
	f.mask = mask
	return events
}

// ReadSerial opens a lane controller on a serial port and forwards its key
// transitions to s.
func ReadSerial(name string, baud int, s *Sampler) (io.Closer, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if nil != err {
		return nil, fmt.Errorf("unable to open serial port %s: %w", name, err)
	}
	log.Println("serial controller opened", name, baud)

	go func() {
		fr := newFrameReader(port, s.Lanes())
		for {
			events, err := fr.next()
			if nil != err {
				if !errors.Is(err, io.EOF) {
					log.Println("serial read error", err)
				}
				return
			}
			for _, ev := range events {
				s.Push(ev)
			}
		}
	}()
	return port, nil
}
