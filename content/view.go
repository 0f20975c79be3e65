package content

import (
	"time"
)

// ModelView json representation of a model. The absolute source path is left
// out on purpose, it would expose the server's directory layout.
type ModelView struct {
	Kind         Kind              `json:"kind"`
	Language     string            `json:"language,omitempty"`
	Path         string            `json:"path"`
	RawPath      string            `json:"rawPath"`
	Template     string            `json:"template,omitempty"`
	SortNumber   *uint64           `json:"sortNumber,omitempty"`
	Title        string            `json:"title,omitempty"`
	UUID         string            `json:"uuid,omitempty"`
	Draft        bool              `json:"draft"`
	Listed       bool              `json:"listed"`
	LastModified time.Time         `json:"lastModified"`
	Fields       map[string]string `json:"fields"`
}

// View json representation
func (m *Model) View() ModelView {
	v := ModelView{
		Kind:         m.kind,
		Language:     m.language,
		Path:         m.Path(),
		RawPath:      m.rawPath,
		Template:     m.Template(),
		Title:        m.Title(),
		UUID:         m.UUID(),
		Draft:        m.IsDraft(),
		LastModified: m.lastModified,
		Fields:       m.content.Map(),
	}
	if num, ok := m.SortNumber(); ok {
		v.SortNumber = &num
		v.Listed = true
	}
	return v
}

func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.View())
}
