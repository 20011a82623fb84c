package quality

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

type Defect struct {
	ID   string `json:"id" form:"id"`
	Type string `json:"type" form:"type"`
	Size string `json:"size" form:"size"`
}

// Field names an editable defect attribute.
type Field string

const (
	FieldType Field = "type"
	FieldSize Field = "size"
)

// DefectList is the ordered, user-editable list of defects. Operations return
// a new list and never touch entries they do not target.
type DefectList []Defect

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewDefectID returns "defect_<unix millis>_<9 base36 chars>". Unique enough
// to key list rows, not meant to be unguessable.
var NewDefectID = func() string {
	var b strings.Builder
	for i := 0; i < 9; i++ {
		b.WriteByte(idAlphabet[rand.IntN(len(idAlphabet))])
	}
	return fmt.Sprintf("defect_%d_%s", time.Now().UnixMilli(), b.String())
}

func (l DefectList) has(id string) bool {
	for _, d := range l {
		if d.ID == id {
			return true
		}
	}
	return false
}

// Add appends d. A blank or already used id is replaced with a fresh one.
func (l DefectList) Add(d Defect) DefectList {
	d.ID = strings.TrimSpace(d.ID)
	for d.ID == "" || l.has(d.ID) {
		d.ID = NewDefectID()
	}
	out := make(DefectList, 0, len(l)+1)
	out = append(out, l...)
	return append(out, d)
}

// AddBlank appends an empty row, as the "add defect" button does.
func (l DefectList) AddBlank() DefectList {
	return l.Add(Defect{})
}

func (l DefectList) Remove(id string) DefectList {
	out := make(DefectList, 0, len(l))
	for _, d := range l {
		if d.ID != id {
			out = append(out, d)
		}
	}
	return out
}

// Update sets one field of the defect with the given id. Unknown ids and
// fields leave the list unchanged.
func (l DefectList) Update(id string, field Field, value string) DefectList {
	out := make(DefectList, len(l))
	copy(out, l)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		switch field {
		case FieldType:
			out[i].Type = value
		case FieldSize:
			out[i].Size = value
		}
	}
	return out
}

// Normalize rebuilds a list received from a client: order is kept, blank or
// repeated ids get fresh ones.
func Normalize(in []Defect) DefectList {
	var out DefectList
	for _, d := range in {
		out = out.Add(d)
	}
	return out
}

// Entry is a defect as sent to the assessment service.
type Entry struct {
	Type string `json:"type"`
	Size string `json:"size"`
}

// Entries keeps only defects with both type and size filled in.
func (l DefectList) Entries() []Entry {
	var out []Entry
	for _, d := range l {
		t, s := strings.TrimSpace(d.Type), strings.TrimSpace(d.Size)
		if t == "" || s == "" {
			continue
		}
		out = append(out, Entry{Type: t, Size: s})
	}
	return out
}
