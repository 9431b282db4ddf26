// Package views renders store state for the terminal, as plain text or as
// indented JSON.
package views

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ValidFormats lists the accepted --format values.
var ValidFormats = []Format{FormatText, FormatJSON}

// ParseFormat validates s.
func ParseFormat(s string) (Format, error) {
	for _, f := range ValidFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format %q: must be one of %v", s, ValidFormats)
}

// Renderer writes views to an output stream.
type Renderer struct {
	w      io.Writer
	format Format
}

// New returns a Renderer writing to w.
func New(w io.Writer, format Format) *Renderer {
	if format == "" {
		format = FormatText
	}
	return &Renderer{w: w, format: format}
}

// Format reports the configured format.
func (r *Renderer) Format() Format {
	return r.format
}

type listView[T any] struct {
	View       string            `json:"view,omitempty"`
	Total      int               `json:"total"`
	Pagination *types.Pagination `json:"pagination,omitempty"`
	Items      []T               `json:"items"`
	Error      string            `json:"error,omitempty"`
}

type boneDetailsView struct {
	View   string               `json:"view"`
	Specie *types.Specie        `json:"specie"`
	Bones  listView[types.Bone] `json:"bones"`
}

// SpeciesView renders the species page: the list with its total and paging.
func (r *Renderer) SpeciesView(st types.StoreState[types.Specie]) error {
	if r.format == FormatJSON {
		v := newListView(st)
		v.View = "species"
		return r.json(v)
	}
	var b strings.Builder
	writeSpeciesList(&b, st)
	return r.text(b.String())
}

// BoneDetailsView renders one specie followed by its bones.
func (r *Renderer) BoneDetailsView(specie *types.Specie, bones types.StoreState[types.Bone]) error {
	if r.format == FormatJSON {
		return r.json(boneDetailsView{
			View:   "bone-details",
			Specie: specie,
			Bones:  newListView(bones),
		})
	}
	var b strings.Builder
	if specie != nil {
		fmt.Fprintf(&b, "specie %s\n", specieLine(*specie))
	} else {
		b.WriteString("specie not loaded\n")
	}
	writeBonesList(&b, bones)
	return r.text(b.String())
}

// Species renders a species list without page context.
func (r *Renderer) Species(st types.StoreState[types.Specie]) error {
	if r.format == FormatJSON {
		return r.json(newListView(st))
	}
	var b strings.Builder
	writeSpeciesList(&b, st)
	return r.text(b.String())
}

// Bones renders a bones list.
func (r *Renderer) Bones(st types.StoreState[types.Bone]) error {
	if r.format == FormatJSON {
		return r.json(newListView(st))
	}
	var b strings.Builder
	writeBonesList(&b, st)
	return r.text(b.String())
}

// Specie renders one specie in detail.
func (r *Renderer) Specie(s *types.Specie) error {
	if r.format == FormatJSON {
		return r.json(s)
	}
	if s == nil {
		return r.text("no specie\n")
	}
	var b strings.Builder
	field(&b, "id", s.ID.String())
	field(&b, "name", s.Name)
	field(&b, "scientific name", s.ScientificName)
	field(&b, "description", s.Description)
	timeField(&b, "created", s.CreatedAt)
	timeField(&b, "updated", s.UpdatedAt)
	return r.text(b.String())
}

// Bone renders one bone in detail.
func (r *Renderer) Bone(bone *types.Bone) error {
	if r.format == FormatJSON {
		return r.json(bone)
	}
	if bone == nil {
		return r.text("no bone\n")
	}
	var b strings.Builder
	field(&b, "id", bone.ID.String())
	field(&b, "name", bone.Name)
	field(&b, "specie", bone.SpecieID.String())
	field(&b, "region", bone.Region)
	field(&b, "description", bone.Description)
	timeField(&b, "created", bone.CreatedAt)
	timeField(&b, "updated", bone.UpdatedAt)
	return r.text(b.String())
}

// Message renders a one-line outcome such as a delete confirmation.
func (r *Renderer) Message(msg string) error {
	if r.format == FormatJSON {
		return r.json(struct {
			Message string `json:"message"`
		}{msg})
	}
	return r.text(msg + "\n")
}

func newListView[T any](st types.StoreState[T]) listView[T] {
	v := listView[T]{
		Total:      st.Total,
		Pagination: st.Pagination,
		Items:      st.List,
	}
	if v.Items == nil {
		v.Items = []T{}
	}
	if st.Err != nil {
		v.Error = st.Err.Error()
	}
	return v
}

func writeSpeciesList(b *strings.Builder, st types.StoreState[types.Specie]) {
	fmt.Fprintf(b, "species (total %d)\n", st.Total)
	if len(st.List) == 0 {
		b.WriteString("  none\n")
	}
	for _, s := range st.List {
		fmt.Fprintf(b, "- %s\n", specieLine(s))
	}
	writeFooter(b, st.Pagination, st.Err)
}

func writeBonesList(b *strings.Builder, st types.StoreState[types.Bone]) {
	fmt.Fprintf(b, "bones (total %d)\n", st.Total)
	if len(st.List) == 0 {
		b.WriteString("  none\n")
	}
	for _, bone := range st.List {
		fmt.Fprintf(b, "- %s\n", boneLine(bone))
	}
	writeFooter(b, st.Pagination, st.Err)
}

func writeFooter(b *strings.Builder, p *types.Pagination, err error) {
	if p != nil {
		fmt.Fprintf(b, "page %d of %d", p.Page, p.TotalPages)
		var more []string
		if p.HasPrev {
			more = append(more, "prev")
		}
		if p.HasNext {
			more = append(more, "next")
		}
		if len(more) > 0 {
			fmt.Fprintf(b, " (%s)", strings.Join(more, ", "))
		}
		b.WriteString("\n")
	}
	if err != nil {
		fmt.Fprintf(b, "error: %s\n", err)
	}
}

func specieLine(s types.Specie) string {
	line := fmt.Sprintf("[%s] %s", s.ID, s.Name)
	if s.ScientificName != "" {
		line += fmt.Sprintf(" (%s)", s.ScientificName)
	}
	return line
}

func boneLine(b types.Bone) string {
	line := fmt.Sprintf("[%s] %s", b.ID, b.Name)
	if b.Region != "" {
		line += ", " + b.Region
	}
	return line
}

func field(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", name, value)
}

func timeField(b *strings.Builder, name string, t *time.Time) {
	if t == nil {
		return
	}
	field(b, name, t.UTC().Format(time.RFC3339))
}

func (r *Renderer) text(s string) error {
	_, err := io.WriteString(r.w, s)
	return err
}

func (r *Renderer) json(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// SnapshotSummary describes one stored store snapshot.
type SnapshotSummary struct {
	Key     string `json:"key"`
	Stored  bool   `json:"stored"`
	Items   int    `json:"items"`
	Total   int    `json:"total"`
	Current string `json:"current,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Snapshots renders the persisted state of every store.
func (r *Renderer) Snapshots(snaps []SnapshotSummary) error {
	if r.format == FormatJSON {
		if snaps == nil {
			snaps = []SnapshotSummary{}
		}
		return r.json(snaps)
	}
	var b strings.Builder
	for _, s := range snaps {
		if !s.Stored {
			fmt.Fprintf(&b, "%s: empty\n", s.Key)
			continue
		}
		fmt.Fprintf(&b, "%s: %d items (total %d)", s.Key, s.Items, s.Total)
		if s.Current != "" {
			fmt.Fprintf(&b, ", current %s", s.Current)
		}
		b.WriteString("\n")
		if s.Error != "" {
			fmt.Fprintf(&b, "  error: %s\n", s.Error)
		}
	}
	return r.text(b.String())
}
