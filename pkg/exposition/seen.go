package exposition

// seenNames tracks metric names whose HELP/TYPE block was already written
// during one document generation.
type seenNames struct {
	names []string
}

func (s *seenNames) contains(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

func (s *seenNames) add(name string) {
	s.names = append(s.names, name)
}
