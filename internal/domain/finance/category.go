package finance

import (
	"strings"

	"github.com/clubhub/backend/internal/domain/shared"
)

// Category is an admin-defined bucket that every transaction references by name
type Category struct {
	ID   string
	Nome string
	Tipo Tipo
}

// NewCategory validates the name and tipo of a new category
func NewCategory(nome, tipo string) (*Category, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return nil, shared.InvalidArgument("Nome da categoria obrigatório")
	}
	t, err := ParseTipo(tipo)
	if err != nil {
		return nil, err
	}
	return &Category{Nome: nome, Tipo: t}, nil
}

// CategoriesByTipo groups categories into their tipo buckets
type CategoriesByTipo struct {
	Entrada []Category `json:"entrada"`
	Saida   []Category `json:"saida"`
}

// FindByName returns the first category in list with the given name
func FindByName(list []Category, nome string) (*Category, bool) {
	for i := range list {
		if list[i].Nome == nome {
			return &list[i], true
		}
	}
	return nil, false
}
