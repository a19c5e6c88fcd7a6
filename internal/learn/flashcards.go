package learn

// CardView is what the learner sees of the current flashcard.
type CardView struct {
	// Empty is set when the capsule has no flashcards; no other field is
	// meaningful then.
	Empty bool `json:"empty"`

	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Front    string `json:"front"`
	Back     string `json:"back,omitempty"`
	Revealed bool   `json:"revealed"`
	Known    bool   `json:"known"`

	KnownCount int `json:"known_count"`
}

// Card returns the current flashcard. Back is only filled once the card
// has been flipped.
func (s *Session) Card() (CardView, error) {
	if err := s.requireMode(ModeFlashcards); err != nil {
		return CardView{}, err
	}

	cards := s.capsule.Flashcards
	if len(cards) == 0 {
		return CardView{Empty: true, KnownCount: s.known.Len()}, nil
	}

	fc := cards[s.cursor]
	v := CardView{
		Index:      s.cursor,
		Total:      len(cards),
		Front:      fc.Front,
		Revealed:   s.revealed,
		Known:      s.known.Has(s.cursor),
		KnownCount: s.known.Len(),
	}
	if s.revealed {
		v.Back = fc.Back
	}
	return v, nil
}

// Next moves to the following card, wrapping to the first.
func (s *Session) Next() (CardView, error) {
	return s.step(1)
}

// Prev moves to the preceding card, wrapping to the last.
func (s *Session) Prev() (CardView, error) {
	return s.step(-1)
}

func (s *Session) step(delta int) (CardView, error) {
	if err := s.requireMode(ModeFlashcards); err != nil {
		return CardView{}, err
	}
	if n := len(s.capsule.Flashcards); n > 0 {
		s.cursor = (s.cursor + delta + n) % n
		s.revealed = false
	}
	return s.Card()
}

// Flip toggles whether the back of the current card is shown.
func (s *Session) Flip() (CardView, error) {
	if err := s.requireMode(ModeFlashcards); err != nil {
		return CardView{}, err
	}
	if len(s.capsule.Flashcards) > 0 {
		s.revealed = !s.revealed
	}
	return s.Card()
}

// MarkKnown adds the current card to the known set and saves progress.
func (s *Session) MarkKnown() (CardView, error) {
	return s.mark(true)
}

// MarkUnknown removes the current card from the known set and saves progress.
func (s *Session) MarkUnknown() (CardView, error) {
	return s.mark(false)
}

func (s *Session) mark(known bool) (CardView, error) {
	if err := s.requireMode(ModeFlashcards); err != nil {
		return CardView{}, err
	}
	if len(s.capsule.Flashcards) == 0 {
		return s.Card()
	}

	before := s.known.Clone()
	if known {
		s.known.Add(s.cursor)
	} else {
		s.known.Remove(s.cursor)
	}
	if err := s.saveProgress(); err != nil {
		s.known = before
		return CardView{}, err
	}
	return s.Card()
}
