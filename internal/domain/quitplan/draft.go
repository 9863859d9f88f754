package quitplan

import "strings"

// Draft is a stage as submitted for create or update. It is either a
// Persisted stage carrying the id of an existing row, or a New one.
type Draft interface {
	Fields() StageFields
	isDraft()
}

// Persisted 已存在的阶段（携带 id，供后端比对）
type Persisted struct {
	ID int64
	StageFields
}

// New 新增阶段
type New struct {
	StageFields
}

func (p Persisted) Fields() StageFields { return p.StageFields }
func (n New) Fields() StageFields       { return n.StageFields }

func (Persisted) isDraft() {}
func (New) isDraft()       {}

// DraftFields flattens drafts to their editable fields.
func DraftFields(drafts []Draft) []StageFields {
	fields := make([]StageFields, len(drafts))
	for i, d := range drafts {
		fields[i] = d.Fields()
	}
	return fields
}

// NewDrafts wraps plain fields as New drafts.
func NewDrafts(fields []StageFields) []Draft {
	drafts := make([]Draft, len(fields))
	for i, f := range fields {
		drafts[i] = New{StageFields: f}
	}
	return drafts
}

// DraftsFromPlan returns the plan's stages as Persisted drafts, in order.
func DraftsFromPlan(plan Plan) []Draft {
	ordered := plan.Ordered()
	drafts := make([]Draft, len(ordered))
	for i, s := range ordered {
		drafts[i] = Persisted{ID: s.ID, StageFields: s.StageFields}
	}
	return drafts
}

// Normalize trims the text fields.
func (f StageFields) Normalize() StageFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	return f
}

// HasChanges reports whether reason or any stage differs from the persisted
// plan. Callers skip the write entirely when it returns false.
func HasChanges(plan Plan, reason string, drafts []Draft) bool {
	if strings.TrimSpace(reason) != strings.TrimSpace(plan.Reason) {
		return true
	}

	ordered := plan.Ordered()
	if len(ordered) != len(drafts) {
		return true
	}

	for i, d := range drafts {
		p, ok := d.(Persisted)
		if !ok {
			return true
		}
		if p.ID != ordered[i].ID {
			return true
		}
		if p.StageFields.Normalize() != ordered[i].StageFields.Normalize() {
			return true
		}
	}
	return false
}
