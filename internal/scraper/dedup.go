package scraper

// SeenIDSet хранит library ID, уже попавшие в результат текущего запуска.
// Порядок вставки сохраняется.
type SeenIDSet struct {
	seen  map[string]struct{}
	order []string
}

func NewSeenIDSet() *SeenIDSet {
	return &SeenIDSet{seen: make(map[string]struct{})}
}

// Admit возвращает true и запоминает id при первой встрече, false при повторе
func (s *SeenIDSet) Admit(id string) bool {
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *SeenIDSet) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *SeenIDSet) Len() int {
	return len(s.order)
}

func (s *SeenIDSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
