package interaction

// AutoPort answers without a human: confirmations follow AssumeYes, text and
// choices are never given, so callers fall back to their defaults.
type AutoPort struct {
	AssumeYes bool
}

func (p AutoPort) Confirm(string) (bool, error) { return p.AssumeYes, nil }

func (AutoPort) AskText(string) (string, error) { return "", nil }

func (AutoPort) ChooseOne(string, []Option) (string, error) { return "", nil }

// Scripted replays queued answers and records every prompt it was shown.
// When a queue runs dry it declines, answers "" or makes no choice.
type Scripted struct {
	Confirms []bool
	Texts    []string
	Choices  []string

	Prompts []string
}

// Confirm pops the next queued confirmation.
func (s *Scripted) Confirm(question string) (bool, error) {
	s.Prompts = append(s.Prompts, question)
	if len(s.Confirms) == 0 {
		return false, nil
	}
	answer := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return answer, nil
}

// AskText pops the next queued text answer.
func (s *Scripted) AskText(prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Texts) == 0 {
		return "", nil
	}
	answer := s.Texts[0]
	s.Texts = s.Texts[1:]
	return answer, nil
}

// ChooseOne pops the next queued choice.
func (s *Scripted) ChooseOne(prompt string, _ []Option) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Choices) == 0 {
		return "", nil
	}
	answer := s.Choices[0]
	s.Choices = s.Choices[1:]
	return answer, nil
}

var (
	_ Port = HuhPort{}
	_ Port = (*LinePort)(nil)
	_ Port = AutoPort{}
	_ Port = (*Scripted)(nil)
)
