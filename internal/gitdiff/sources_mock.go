package gitdiff

import "context"

// StaticSources is a canned Sources implementation for tests and for
// callers that already hold fetched diff text.
type StaticSources struct {
	// Diffs maps Source -> filePath -> unified diff text.
	Diffs map[Source]map[string]string
	// BlameText and HistoryText are returned verbatim for any file.
	BlameText   string
	HistoryText string
}

var _ Sources = (*StaticSources)(nil)

func (s *StaticSources) Diff(_ context.Context, filePath string, source Source, _ int) (string, error) {
	return s.Diffs[source][filePath], nil
}

func (s *StaticSources) Blame(context.Context, string, int, int) (string, error) {
	return s.BlameText, nil
}

func (s *StaticSources) History(context.Context, string, int, int) (string, error) {
	return s.HistoryText, nil
}
