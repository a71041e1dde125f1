package Editor

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"RiderBross/AbstractFunctions"
)

const (
	GroupUncategorized = "Sin categoría"
	GroupUntyped       = "Sin tipo"
)

var ErrDraftNotFound = errors.New("Detalle inexistente")

// Draft is a line item while it is being edited. NextDueKm keeps the
// formatted display value ("15.000").
type Draft struct {
	Key            string `json:"key"`
	ServiceTypeID  *uint  `json:"service_type_id"`
	NextDueKm      string `json:"next_due_km"`
	Comment        string `json:"comment"`
	StateID        *uint  `json:"state_id"`
	Recommendation string `json:"recommendation"`
}

// DraftPatch changes only the fields that are set.
type DraftPatch struct {
	ServiceTypeID  *uint   `json:"service_type_id"`
	NextDueKm      *string `json:"next_due_km"`
	Comment        *string `json:"comment"`
	StateID        *uint   `json:"state_id"`
	Recommendation *string `json:"recommendation"`
	// ClearServiceType / ClearState unset the reference, a nil pointer means "unchanged"
	ClearServiceType bool `json:"clear_service_type"`
	ClearState       bool `json:"clear_state"`
}

type DraftGroup struct {
	Name  string  `json:"name"`
	Items []Draft `json:"items"`
}

func newDraftKey() string {
	return uuid.NewString()
}

func (p DraftPatch) apply(d *Draft) {
	if p.ClearServiceType {
		d.ServiceTypeID = nil
	} else if p.ServiceTypeID != nil {
		id := *p.ServiceTypeID
		d.ServiceTypeID = &id
	}
	if p.NextDueKm != nil {
		d.NextDueKm = AbstractFunctions.FormatKm(*p.NextDueKm)
	}
	if p.Comment != nil {
		d.Comment = *p.Comment
	}
	if p.ClearState {
		d.StateID = nil
	} else if p.StateID != nil {
		id := *p.StateID
		d.StateID = &id
	}
	if p.Recommendation != nil {
		d.Recommendation = *p.Recommendation
	}
}

func (s *Session) hasServiceType(id uint) bool {
	for _, d := range s.Drafts {
		if d.ServiceTypeID != nil && *d.ServiceTypeID == id {
			return true
		}
	}
	return false
}

func (s *Session) draftIndex(key string) int {
	for i, d := range s.Drafts {
		if d.Key == key {
			return i
		}
	}
	return -1
}

// AddLineItem appends a draft, optionally prefilled from partial.
func (s *Session) AddLineItem(partial *DraftPatch) (Draft, error) {
	if !s.HeaderReady() {
		return Draft{}, ErrHeaderNotReady
	}
	d := Draft{Key: newDraftKey()}
	if partial != nil {
		if partial.ServiceTypeID != nil && s.hasServiceType(*partial.ServiceTypeID) {
			return Draft{}, ErrDuplicateServiceType
		}
		partial.apply(&d)
	}
	s.Drafts = append(s.Drafts, d)
	return d, nil
}

// BulkAdd appends one draft per type not already present and returns how many
// were added. Nothing happens while the header is not ready.
func (s *Session) BulkAdd(typeIDs []uint) int {
	if !s.HeaderReady() {
		return 0
	}
	added := 0
	for _, id := range typeIDs {
		if s.hasServiceType(id) {
			continue
		}
		typeID := id
		s.Drafts = append(s.Drafts, Draft{Key: newDraftKey(), ServiceTypeID: &typeID})
		added++
	}
	return added
}

// Duplicate inserts a copy of the draft right after it.
func (s *Session) Duplicate(key string) (Draft, error) {
	idx := s.draftIndex(key)
	if idx < 0 {
		return Draft{}, ErrDraftNotFound
	}
	clone := s.Drafts[idx]
	clone.Key = newDraftKey()

	s.Drafts = append(s.Drafts, Draft{})
	copy(s.Drafts[idx+2:], s.Drafts[idx+1:])
	s.Drafts[idx+1] = clone
	return clone, nil
}

func (s *Session) Remove(key string) error {
	idx := s.draftIndex(key)
	if idx < 0 {
		return ErrDraftNotFound
	}
	s.Drafts = append(s.Drafts[:idx], s.Drafts[idx+1:]...)
	return nil
}

func (s *Session) Patch(key string, patch DraftPatch) (Draft, error) {
	idx := s.draftIndex(key)
	if idx < 0 {
		return Draft{}, ErrDraftNotFound
	}
	patch.apply(&s.Drafts[idx])
	return s.Drafts[idx], nil
}

// Groups partitions the drafts by category for display. Named categories come
// first, then "Sin categoría", then "Sin tipo". Items keep their relative order.
func (s *Session) Groups() []DraftGroup {
	index := map[string]int{}
	var groups []DraftGroup

	for _, d := range s.Drafts {
		name := GroupUntyped
		if d.ServiceTypeID != nil {
			name = GroupUncategorized
			if t := s.Refs.ServiceType(*d.ServiceTypeID); t != nil && t.CategoryName != nil && *t.CategoryName != "" {
				name = *t.CategoryName
			}
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, DraftGroup{Name: name})
		}
		groups[i].Items = append(groups[i].Items, d)
	}

	col := collate.New(language.Spanish)
	sort.SliceStable(groups, func(i, j int) bool {
		ti, tj := groupTier(groups[i].Name), groupTier(groups[j].Name)
		if ti != tj {
			return ti < tj
		}
		return col.CompareString(groups[i].Name, groups[j].Name) < 0
	})
	return groups
}

func groupTier(name string) int {
	switch name {
	case GroupUntyped:
		return 2
	case GroupUncategorized:
		return 1
	}
	return 0
}
