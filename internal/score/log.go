package score

import (
	"log"

	"git.lost.host/meutraa/rail/internal/judge"
)

// Log prints one line per judgement.
type Log struct {
	Logger *log.Logger // nil uses the standard logger
}

func (l Log) Judged(ev judge.Event) {
	if nil == l.Logger {
		log.Println(ev)
		return
	}
	l.Logger.Println(ev)
}
