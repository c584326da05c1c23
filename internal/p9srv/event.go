package p9srv

import "9fans.net/go/plan9"

// MaxQueuedEvents bounds the backlog of one /event reader. The oldest
// events are dropped first.
const MaxQueuedEvents = 256

// eventQueue holds the events an open /event fid has not read yet.
type eventQueue struct {
	items []string
}

func (q *eventQueue) push(text string) {
	q.items = append(q.items, text)
	if n := len(q.items) - MaxQueuedEvents; n > 0 {
		q.items = q.items[n:]
	}
}

func (q *eventQueue) empty() bool { return len(q.items) == 0 }

// take removes whole events fitting in count bytes. An event longer than
// count is cut and consumed.
func (q *eventQueue) take(count uint32) []byte {
	var out []byte
	for len(q.items) > 0 {
		text := q.items[0]
		if uint32(len(out)+len(text)) > count {
			if len(out) == 0 {
				out = append(out, text[:count]...)
				q.items = q.items[1:]
			}
			break
		}
		out = append(out, text...)
		q.items = q.items[1:]
	}
	return out
}

// parkedRead is a Tread of /event waiting for an event.
type parkedRead struct {
	conn  *Conn
	tag   uint16
	fid   *fid
	count uint32
}

// WriteEvent broadcasts text to every open /event fid and completes the
// reads parked on them.
func (s *Server) WriteEvent(text string) {
	for _, q := range s.readers {
		q.push(text)
	}
	kept := s.parked[:0]
	for _, p := range s.parked {
		if p.fid.events.empty() {
			kept = append(kept, p)
			continue
		}
		p.conn.send(&plan9.Fcall{Type: plan9.Rread, Tag: p.tag, Data: p.fid.events.take(p.count)})
	}
	clear(s.parked[len(kept):])
	s.parked = kept
}

func (s *Server) openEvents(f *fid) {
	f.events = &eventQueue{}
	s.readers = append(s.readers, f.events)
}

// dropParked forgets the parked reads matching pred without answering them.
func (s *Server) dropParked(pred func(*parkedRead) bool) {
	kept := s.parked[:0]
	for _, p := range s.parked {
		if !pred(p) {
			kept = append(kept, p)
		}
	}
	clear(s.parked[len(kept):])
	s.parked = kept
}

func (s *Server) closeEvents(f *fid) {
	if f.events == nil {
		return
	}
	for i, q := range s.readers {
		if q == f.events {
			s.readers = append(s.readers[:i], s.readers[i+1:]...)
			break
		}
	}
	s.dropParked(func(p *parkedRead) bool { return p.fid == f })
	f.events = nil
}
