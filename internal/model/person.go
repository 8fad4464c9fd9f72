package model

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Person struct {
	ID     uint   `gorm:"primaryKey"`
	Name   string `gorm:"index;not null"`
	Title  string
	Phone  string
	Email  string
	Unit   string
	Active bool `gorm:"default:true"`

	Invitations []*Invitation `gorm:"foreignKey:PersonID"`
}

type PersonDTO struct {
	ID    uint   `json:"ID"`
	Name  string `json:"Nombre"`
	Title string `json:"Cargo"`
	Phone string `json:"Teléfono"`
	Email string `json:"Correo"`
	Unit  string `json:"Unidad/Región"`
}

func (p *Person) DTO() *PersonDTO {
	return &PersonDTO{
		ID:    p.ID,
		Name:  p.Name,
		Title: p.Title,
		Phone: p.Phone,
		Email: p.Email,
		Unit:  p.Unit,
	}
}

// PersonInput is the create/update payload for catalog mutations. It is
// validated before any network call or database write.
type PersonInput struct {
	ID    uint   `json:"ID,omitempty"`
	Name  string `json:"Nombre" validate:"required"`
	Title string `json:"Cargo" validate:"required"`
	Phone string `json:"Teléfono" validate:"omitempty,min=7,max=20"`
	Email string `json:"Correo" validate:"omitempty,email"`
	Unit  string `json:"Unidad/Región"`
}

func (in *PersonInput) Trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Title = strings.TrimSpace(in.Title)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Unit = strings.TrimSpace(in.Unit)
}

func (in *PersonInput) Validate() error {
	in.Trim()

	return validate.Struct(in)
}

func (in *PersonInput) ToPerson() *Person {
	return &Person{
		ID:     in.ID,
		Name:   in.Name,
		Title:  in.Title,
		Phone:  in.Phone,
		Email:  in.Email,
		Unit:   in.Unit,
		Active: true,
	}
}
