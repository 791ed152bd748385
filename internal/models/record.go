package models

import "fmt"

// Category is the classification outcome for one roster line.
type Category int

const (
	Faculty Category = iota
	Student
	Other
)

// Categories lists every category in export order.
var Categories = []Category{Faculty, Student, Other}

func (c Category) String() string {
	switch c {
	case Faculty:
		return "faculty"
	case Student:
		return "student"
	case Other:
		return "other"
	default:
		return ""
	}
}

// ParseCategory resolves the string form produced by [Category.String].
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if c.String() == s {
			return c, nil
		}
	}
	return Other, fmt.Errorf("unknown category %q", s)
}

// Record is a normalized person. NationalIDCode is always six ASCII digits.
type Record struct {
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	NationalIDCode string `json:"cpf"`
}

// Batch groups records by category. Each sequence keeps input order and may contain duplicates.
type Batch struct {
	Faculty []Record `json:"faculty"`
	Student []Record `json:"student"`
	Other   []Record `json:"other"`
}

// NewBatch returns a batch with empty, non-nil sequences.
func NewBatch() *Batch {
	return &Batch{
		Faculty: []Record{},
		Student: []Record{},
		Other:   []Record{},
	}
}

// Add appends r to the sequence for c.
func (b *Batch) Add(c Category, r Record) {
	switch c {
	case Faculty:
		b.Faculty = append(b.Faculty, r)
	case Student:
		b.Student = append(b.Student, r)
	default:
		b.Other = append(b.Other, r)
	}
}

// Records returns the sequence for c.
func (b *Batch) Records(c Category) []Record {
	switch c {
	case Faculty:
		return b.Faculty
	case Student:
		return b.Student
	default:
		return b.Other
	}
}

// Len is the total number of records across all categories.
func (b *Batch) Len() int {
	return len(b.Faculty) + len(b.Student) + len(b.Other)
}
