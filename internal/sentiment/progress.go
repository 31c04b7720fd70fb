package sentiment

// Progress reports batch prediction progress.
type Progress interface {
	Add(n int) error
	Finish() error
}

// ProgressFunc creates a Progress for a batch of total items.
type ProgressFunc func(total int, description string) Progress

type noopProgress struct{}

func (noopProgress) Add(int) error { return nil }
func (noopProgress) Finish() error { return nil }

// NoProgress discards progress updates.
func NoProgress(int, string) Progress {
	return noopProgress{}
}
