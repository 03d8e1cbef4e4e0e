package content

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidRecord = errors.New("invalid record")

type Kind string

const (
	KindWork      Kind = "work"
	KindEducation Kind = "education"
	KindProject   Kind = "project"
)

func (k Kind) Valid() bool {
	switch k {
	case KindWork, KindEducation, KindProject:
		return true
	default:
		return false
	}
}

// Record is implemented by the value types of every content domain. Methods
// return modified copies so lists can be transformed without aliasing.
type Record[T any] interface {
	RecordID() string
	WithID(id string) T
	Normalize() T
	Validate() error
}

type WorkEntry struct {
	ID               string   `json:"id" yaml:"id"`
	Position         string   `json:"position" yaml:"position"`
	Organization     string   `json:"organization" yaml:"organization"`
	Period           string   `json:"period" yaml:"period"`
	Responsibilities []string `json:"responsibilities" yaml:"responsibilities"`
	Skills           []string `json:"skills" yaml:"skills"`
	Kind             Kind     `json:"kind" yaml:"kind"`
}

func (w WorkEntry) RecordID() string { return w.ID }

func (w WorkEntry) WithID(id string) WorkEntry {
	w.ID = id
	return w
}

func (w WorkEntry) Normalize() WorkEntry {
	w.ID = strings.TrimSpace(w.ID)
	w.Position = strings.TrimSpace(w.Position)
	w.Organization = strings.TrimSpace(w.Organization)
	w.Period = strings.TrimSpace(w.Period)
	w.Responsibilities = cleanList(w.Responsibilities)
	w.Skills = cleanList(w.Skills)
	w.Kind = Kind(strings.ToLower(strings.TrimSpace(string(w.Kind))))
	if w.Kind == "" {
		w.Kind = KindWork
	}
	return w
}

func (w WorkEntry) Validate() error {
	if w.Position == "" {
		return fmt.Errorf("%w: position is required", ErrInvalidRecord)
	}
	if w.Organization == "" {
		return fmt.Errorf("%w: organization is required", ErrInvalidRecord)
	}
	if !w.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRecord, w.Kind)
	}
	return nil
}

type Certificate struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Issuer      string `json:"issuer" yaml:"issuer"`
	Date        string `json:"date" yaml:"date"`
	Link        string `json:"link" yaml:"link"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

func (c Certificate) RecordID() string { return c.ID }

func (c Certificate) WithID(id string) Certificate {
	c.ID = id
	return c
}

func (c Certificate) Normalize() Certificate {
	c.ID = strings.TrimSpace(c.ID)
	c.Title = strings.TrimSpace(c.Title)
	c.Issuer = strings.TrimSpace(c.Issuer)
	c.Date = strings.TrimSpace(c.Date)
	c.Link = strings.TrimSpace(c.Link)
	c.Description = strings.TrimSpace(c.Description)
	return c
}

func (c Certificate) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRecord)
	}
	if c.Issuer == "" {
		return fmt.Errorf("%w: issuer is required", ErrInvalidRecord)
	}
	return nil
}

type Project struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description" yaml:"description"`
	Image        string   `json:"image" yaml:"image"`
	Link         string   `json:"link" yaml:"link"`
	Technologies []string `json:"technologies" yaml:"technologies"`
	Featured     bool     `json:"featured" yaml:"featured"`
}

func (p Project) RecordID() string { return p.ID }

func (p Project) WithID(id string) Project {
	p.ID = id
	return p
}

func (p Project) Normalize() Project {
	p.ID = strings.TrimSpace(p.ID)
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Image = strings.TrimSpace(p.Image)
	p.Link = strings.TrimSpace(p.Link)
	p.Technologies = cleanList(p.Technologies)
	return p
}

func (p Project) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRecord)
	}
	return nil
}

// cleanList trims every entry and drops the empty ones. The result is never
// nil so it encodes as [] rather than null.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
