package client

import "codesync/wire"

// View is what the UI renders: the own editable code for a Student, or the
// read-only mapping of participant to code for a Mentor.
type View struct {
	Role     wire.Role
	Editable bool
	Code     string
	Codes    map[string]string
}

// Projection folds received events into the current View. It is
// deterministic in the latest snapshot plus the deltas applied since;
// deltas for participants no longer present are ignored, not errored.
type Projection struct {
	view    View
	present map[string]bool
}

func NewProjection() *Projection {
	return &Projection{
		view:    View{Codes: make(map[string]string)},
		present: make(map[string]bool),
	}
}

func (p *Projection) ApplyRole(event wire.RoleAssignedEvent) {
	p.view.Role = event.Role
	p.view.Editable = event.Role == wire.RoleStudent
	p.view.Code = event.Code
}

// ApplySnapshot replaces the Mentor view wholesale.
func (p *Projection) ApplySnapshot(event wire.AllCodesEvent) {
	codes := make(map[string]string, len(event.Codes))
	for name, code := range event.Codes {
		codes[name] = code
	}
	p.view.Codes = codes
	p.present = make(map[string]bool, len(event.Participants))
	for _, name := range event.Participants {
		p.present[name] = true
	}
}

// ApplyUpdate upserts one participant's code. A stale delta, naming someone
// absent from the latest snapshot's roster, is dropped.
func (p *Projection) ApplyUpdate(event wire.CodeUpdatedEvent) {
	if !p.present[event.StudentName] {
		return
	}
	p.view.Codes[event.StudentName] = event.Code
}

// View returns a copy; mutating it does not disturb the projection.
func (p *Projection) View() View {
	view := p.view
	view.Codes = make(map[string]string, len(p.view.Codes))
	for name, code := range p.view.Codes {
		view.Codes[name] = code
	}
	return view
}
