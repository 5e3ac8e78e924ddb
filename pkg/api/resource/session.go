package resource

import (
	"sort"

	"github.com/Procodx/familyGuardian/pkg/model"
)

type SessionListResource struct {
	Members []model.Session `json:"members"`
}

func NewSessionList(m []model.Session) (out *SessionListResource) {
	out = &SessionListResource{
		Members: make([]model.Session, 0),
	}

	out.Members = append(out.Members, m...)

	sort.Slice(out.Members, func(i, j int) bool {
		return out.Members[i].ID < out.Members[j].ID
	})

	return // out
}
