package domain

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	ProjectIDPrefix  = "prj"
	TemplateIDPrefix = "tpl"

	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 16
)

// NewID generates a prefixed random identifier, e.g. "prj_3k9x0c1m2n4b5v6z".
func NewID(prefix string) (string, error) {
	id, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return prefix + "_" + id, nil
}
