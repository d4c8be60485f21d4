package schema

import "fmt"

// Unit is the smallest block of recorded data: one session of one subject.
type Unit struct {
	Subject string `json:"subject"`
	Session string `json:"session"`
}

func (u Unit) String() string {
	return fmt.Sprintf("%s/%s", u.Subject, u.Session)
}

// FoldPlan describes one fold of a paradigm: where its artifacts live and
// which units feed training, validation and testing.
type FoldPlan struct {
	Paradigm Paradigm `json:"paradigm"`
	TailPath string   `json:"tail_path"` // relative to the paradigm directory
	HeldOut  string   `json:"held_out"`
	Index    int      `json:"index"` // fold or repeat index for trial-level splits
	Train    []Unit   `json:"train"`
	Valid    []Unit   `json:"valid"`
	Test     []Unit   `json:"test"`
}
