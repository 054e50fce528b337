package render

import "github.com/thiagokokada/git-paused/internal/git"

type referenceView struct {
	Type    string `json:"type"`
	Name    string `json:"name,omitempty"`
	SHA     string `json:"sha"`
	Remote  bool   `json:"remote,omitempty"`
	Message string `json:"message,omitempty"`
}

type stepView struct {
	Number int            `json:"number"`
	Total  int            `json:"total"`
	Commit *referenceView `json:"commit,omitempty"`
}

// statusView is the JSON shape of a status. Type carries the operation so
// consumers can switch on it.
type statusView struct {
	Type          git.Operation  `json:"type"`
	RepoPath      string         `json:"repoPath"`
	HEAD          referenceView  `json:"head"`
	Current       *referenceView `json:"current"`
	Incoming      referenceView  `json:"incoming"`
	MergeBase     *referenceView `json:"mergeBase,omitempty"`
	Onto          *referenceView `json:"onto,omitempty"`
	Source        *referenceView `json:"source,omitempty"`
	Step          *stepView      `json:"step,omitempty"`
	HasStarted    *bool          `json:"hasStarted,omitempty"`
	IsPaused      *bool          `json:"isPaused,omitempty"`
	IsInteractive *bool          `json:"isInteractive,omitempty"`
}

func newReferenceView(ref git.Reference) referenceView {
	return referenceView{
		Type:    ref.Type.String(),
		Name:    ref.Name,
		SHA:     ref.SHA,
		Remote:  ref.Remote,
		Message: ref.Message,
	}
}

func optionalReferenceView(ref *git.Reference) *referenceView {
	if ref == nil {
		return nil
	}
	v := newReferenceView(*ref)
	return &v
}

func newStatusView(status git.Status) *statusView {
	if status == nil {
		return nil
	}
	base := status.Base()
	v := &statusView{
		Type:     status.Operation(),
		RepoPath: base.RepoPath,
		HEAD:     newReferenceView(base.HEAD),
		Current:  optionalReferenceView(base.Current),
		Incoming: newReferenceView(base.Incoming),
	}
	switch s := status.(type) {
	case *git.MergeStatus:
		v.MergeBase = optionalReferenceView(s.MergeBase)
	case *git.RebaseStatus:
		v.MergeBase = optionalReferenceView(s.MergeBase)
		v.Onto = optionalReferenceView(&s.Onto)
		v.Source = optionalReferenceView(&s.Source)
		v.Step = &stepView{
			Number: s.Steps.Current.Number,
			Total:  s.Steps.Total,
			Commit: optionalReferenceView(s.Steps.Current.Commit),
		}
		v.HasStarted = &s.HasStarted
		v.IsPaused = &s.IsPaused
		v.IsInteractive = &s.IsInteractive
	}
	return v
}
