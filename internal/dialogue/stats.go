package dialogue

// Stats counts messages per speaker. System notices are not counted.
type Stats struct {
	Speaker1 int
	Speaker2 int
}

func (s *Stats) Record(m Message) {
	switch m.Speaker {
	case Speaker1:
		s.Speaker1++
	case Speaker2:
		s.Speaker2++
	}
}

func (s Stats) Total() int {
	return s.Speaker1 + s.Speaker2
}

func (s *Stats) Reset() {
	*s = Stats{}
}
