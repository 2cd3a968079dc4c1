package ui

import (
	"github.com/cms-PdmV/PdmVPages/internal/model"
)

// DatasetLoadedMsg carries the result of loading one dashboard.
type DatasetLoadedMsg struct {
	Dashboard string
	Data      *model.Dataset
	Reload    bool
	Err       error
}

// SourceChangedMsg reports that a watched data file was rewritten.
type SourceChangedMsg struct {
	Dashboard string
}

// ActionResultMsg reports the outcome of a side effect such as copying or
// opening the share link.
type ActionResultMsg struct {
	Action  string
	Success bool
	Err     error
}

// ViewChangedMsg is emitted by a table view after its filters or sort change.
type ViewChangedMsg struct {
	Dashboard string
}

type StatusMsg struct {
	Text string
}
