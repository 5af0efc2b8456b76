package engine

// Progress receives stage notifications while a run executes.
type Progress interface {
	// Stage is called before stage index (1-based) of total starts.
	Stage(name string, index, total int)
	// Done is called once the run ends, successfully or not.
	Done()
}

type nopProgress struct{}

func (nopProgress) Stage(string, int, int) {}
func (nopProgress) Done()                  {}

// NopProgress returns a Progress that ignores notifications.
func NopProgress() Progress {
	return nopProgress{}
}
